package swarm

import (
	"testing"

	"tarun-kavipurapu/swarm-sim/pkg/config"
)

func TestNewDistribution(t *testing.T) {
	d := New(explicitConfig(t, 3, 4, 2, config.Speeds{Fast: 2, Medium: 2, Slow: 1}, "s"))

	if len(d.File.Chunks) != 3 || len(d.Peers) != 4 || d.Seeds != 2 || d.ChunkSize != 2 {
		t.Fatalf("unexpected shape: %d chunks %d peers %d seeds size %d", len(d.File.Chunks), len(d.Peers), d.Seeds, d.ChunkSize)
	}
	for _, c := range d.File.Chunks {
		if c.PossessingPeers != 2 || c.IsComplete() {
			t.Errorf("chunk %d should start with the seeds only: %+v", c.Index, c)
		}
	}
	for i, p := range d.Peers {
		seed := i < 2
		if p.Seed != seed || p.IsComplete() != seed || (p.PossessedCount() == 3) != seed {
			t.Errorf("peer %d: seed=%v complete=%v possessed=%d", i, p.Seed, p.IsComplete(), p.PossessedCount())
		}
	}
	if d.Peers[0].State() != PeerSeeding || d.Peers[2].State() != PeerIdle {
		t.Errorf("unexpected states %s %s", d.Peers[0].State(), d.Peers[2].State())
	}
	if d.Peers[2].Cooperation != config.Selfish || d.Peers[3].Speed != 1 {
		t.Errorf("descriptors not applied: %s speed %d", d.Peers[2].Cooperation, d.Peers[3].Speed)
	}
}

func TestNewPanicsOnInconsistentConfig(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	New(&config.Config{Chunks: 1, Peers: 2, Seeds: 1, ChunkSize: 1})
}

func TestResidualCapacity(t *testing.T) {
	p := newPeer(0, 2, true, config.Altruistic, config.RarestFirst, 5)
	p.commit(Transfer{Chunk: 0, Source: 0, Target: 1, Delivered: 2, Current: 2})
	p.commit(Transfer{Chunk: 1, Source: 0, Target: 2, Delivered: 1, Current: 1})

	if got := p.residual(3); got != 2 {
		t.Errorf("new target: want 2, got %d", got)
	}
	if got := p.residual(1); got != 4 {
		t.Errorf("existing target excludes its own share: want 4, got %d", got)
	}

	p.commit(Transfer{Chunk: 0, Source: 0, Target: 1, Delivered: 5, Current: 3})
	if len(p.outbound) != 2 || p.residual(3) != 1 {
		t.Errorf("commit must replace the (chunk, target) record: %v", p.outbound)
	}

	p.finishUpload(0, 1)
	if p.Uploads != 1 || len(p.outbound) != 1 || p.residual(3) != 4 {
		t.Errorf("finished upload should free capacity: uploads=%d outbound=%v", p.Uploads, p.outbound)
	}
	p.finishUpload(0, 9)
	if p.Uploads != 1 {
		t.Errorf("unknown upload must not be credited")
	}
}

func TestUploadCapacityByPolicy(t *testing.T) {
	for _, test := range []struct {
		coop     config.Cooperation
		complete bool
		want     int
	}{
		{config.Altruistic, false, 3},
		{config.Altruistic, true, 3},
		{config.Selfish, false, 3},
		{config.Selfish, true, 0},
		{config.Freerider, false, 0},
	} {
		p := newPeer(1, 1, false, test.coop, config.RarestFirst, 3)
		p.Possessed[0] = true
		if test.complete {
			p.CompletionRound = 4
		}
		if got := p.uploadCapacity(0, 2); got != test.want {
			t.Errorf("%s complete=%v: want %d got %d", test.coop, test.complete, test.want, got)
		}
	}

	p := newPeer(1, 2, false, config.Altruistic, config.RarestFirst, 3)
	if p.uploadCapacity(1, 2) != 0 {
		t.Error("peer without the chunk must have no capacity for it")
	}
}

func TestTakeCompleted(t *testing.T) {
	p := newPeer(1, 2, false, config.Altruistic, config.RarestFirst, 1)
	if _, ok := p.takeCompleted(2); ok {
		t.Fatal("no download in progress")
	}

	p.inbound, p.downloading = Transfer{Chunk: 1, Source: 0, Target: 1, Delivered: 1, Current: 1}, true
	if p.State() != PeerDownloading {
		t.Errorf("want downloading, got %s", p.State())
	}
	if _, ok := p.takeCompleted(2); ok {
		t.Fatal("partial download must not complete")
	}

	p.inbound.Delivered = 2
	got, ok := p.takeCompleted(2)
	if !ok || got.Chunk != 1 || !p.Possessed[1] || p.downloading {
		t.Fatalf("completed download not applied: %+v ok=%v", got, ok)
	}
}
