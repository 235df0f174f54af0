package report

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"tarun-kavipurapu/swarm-sim/pkg/config"
	"tarun-kavipurapu/swarm-sim/pkg/monitor"
	"tarun-kavipurapu/swarm-sim/swarm"
)

func buildReport(t *testing.T) *Report {
	t.Helper()
	descriptors := make([]config.PeerDescriptor, 0, 6)
	for _, s := range []string{"amf", "srs", "fuf", "ars", "sms", "f"} {
		descriptors = append(descriptors, config.ParseDescriptor(s))
	}
	cfg, err := config.NewExplicit(config.Params{Chunks: 6, Peers: 8, Seeds: 2, Speeds: config.Speeds{Fast: 4, Medium: 2, Slow: 1}}, descriptors)
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	d := swarm.New(cfg)
	c := NewCollector(cfg.Peers)
	rounds := d.Run(c, swarm.WithSeed(77))
	return Build(d, c, rounds)
}

func TestBuild(t *testing.T) {
	r := buildReport(t)

	if r.Seed != 77 || r.ChunkSize != 4 || r.Chunks != 6 || r.Peers != 8 || r.Seeds != 2 {
		t.Fatalf("configuration not echoed: %+v", r)
	}
	if !strings.HasPrefix(r.ID, "77-") {
		t.Errorf("id should start with the seed, got %s", r.ID)
	}
	if r.Totals != monitor.Summarize(r.Rounds) {
		t.Errorf("totals do not match rounds")
	}
	if len(r.PeerStats) != 8 || len(r.ChunkStats) != 6 {
		t.Fatalf("want 8 peer and 6 chunk stats, got %d and %d", len(r.PeerStats), len(r.ChunkStats))
	}

	var up, down int64
	for _, p := range r.PeerStats {
		up += p.UploadedUnits
		down += p.DownloadedUnits
		want := "complete"
		if p.Seed {
			want = "seeding"
		}
		if p.State != want {
			t.Errorf("peer %d: want state %s, got %s", p.Index, want, p.State)
		}
		switch {
		case p.Seed:
			if p.DownloadedUnits != 0 || p.CompletionRound != 0 {
				t.Errorf("seed %d: %+v", p.Index, p)
			}
		case p.DownloadedUnits < int64(r.Chunks*r.ChunkSize):
			t.Errorf("peer %d downloaded only %d units", p.Index, p.DownloadedUnits)
		}
		if p.Cooperation == "freerider" && (p.UploadedUnits != 0 || p.Uploads != 0) {
			t.Errorf("freerider %d uploaded: %+v", p.Index, p)
		}
		if p.CompletionRound < 0 || p.CompletionRound > r.Totals.Rounds {
			t.Errorf("peer %d completion round %d outside run", p.Index, p.CompletionRound)
		}
	}
	if up != down {
		t.Errorf("uploaded %d units but downloaded %d", up, down)
	}
	if r.PeerStats[3].Cooperation != "selfish" || r.PeerStats[3].Speed != 1 || r.PeerStats[4].Strategy != "uniform" {
		t.Errorf("descriptors not reflected: %+v %+v", r.PeerStats[3], r.PeerStats[4])
	}
}

func TestEncodeDecode(t *testing.T) {
	want := buildReport(t)

	for _, format := range []Format{JSON, Bencode} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, want, format); err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := Decode(&buf, format)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}

			if got.ID != want.ID || got.Seed != want.Seed || !got.CreatedAt.Equal(want.CreatedAt) {
				t.Errorf("header mismatch: %s %d %s", got.ID, got.Seed, got.CreatedAt)
			}
			if !reflect.DeepEqual(got.Rounds, want.Rounds) {
				t.Errorf("rounds mismatch")
			}
			if !reflect.DeepEqual(got.PeerStats, want.PeerStats) || !reflect.DeepEqual(got.ChunkStats, want.ChunkStats) {
				t.Errorf("stats mismatch")
			}
			if got.Totals != want.Totals {
				t.Errorf("totals mismatch: %+v vs %+v", got.Totals, want.Totals)
			}
		})
	}
}

func TestJSONKeysAreSnakeCase(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleReport(), JSON); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := buf.String()
	for _, key := range []string{`"completed_peers"`, `"exchanged_chunks"`, `"execution_time"`, `"rounds"`, `"state"`} {
		if !strings.Contains(out, key) {
			t.Errorf("missing key %s", key)
		}
	}
	for _, key := range []string{"CompletedPeers", "ExchangedChunks", "ExecutionTime"} {
		if strings.Contains(out, key) {
			t.Errorf("unexpected key %s", key)
		}
	}
}

func TestEncodeBencodeUnfinishedRun(t *testing.T) {
	r := &Report{
		ID:         "3-9",
		Seed:       3,
		PeerStats:  []PeerStat{{Index: 1, State: "idle", CompletionRound: swarm.NotCompleted}},
		ChunkStats: []ChunkStat{{Index: 0, CompletionRound: swarm.NotCompleted}},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, r, Bencode); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(&buf, Bencode)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.PeerStats[0].CompletionRound != swarm.NotCompleted || got.PeerStats[0].State != "idle" || got.ChunkStats[0].CompletionRound != swarm.NotCompleted {
		t.Errorf("unfinished outcomes not preserved: %+v %+v", got.PeerStats, got.ChunkStats)
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, &Report{}, Format("xml")); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := Decode(strings.NewReader("{}"), Format("xml")); err == nil {
		t.Error("expected error for unknown format")
	}

	var f Format
	if err := f.Set("yaml"); err == nil {
		t.Error("expected error for yaml")
	}
	if err := f.Set("bencode"); err != nil || f != Bencode {
		t.Errorf("set bencode: %v %s", err, f)
	}
}

func sampleReport() *Report {
	rounds := []swarm.Round{
		{CompletedPeers: 1},
		{CompletedPeers: 1, ExchangedChunks: 2, ExecutionTime: time.Millisecond},
		{CompletedPeers: 3, CompletedChunks: 1, ExchangedChunks: 1, ExecutionTime: time.Millisecond},
		{CompletedPeers: 4, CompletedChunks: 2, ExchangedChunks: 1, ExecutionTime: time.Millisecond},
	}
	return &Report{
		ID:        "7-1",
		Seed:      7,
		ChunkSize: 2,
		Chunks:    2,
		Peers:     4,
		Seeds:     1,
		Rounds:    rounds,
		PeerStats: []PeerStat{
			{Index: 0, Seed: true, Cooperation: "altruistic", Strategy: "rarest-first", State: "seeding", Speed: 2, Uploads: 3, UploadedUnits: 6},
			{Index: 1, State: "complete", Cooperation: "altruistic", Strategy: "rarest-first", Speed: 2, CompletionRound: 2, Uploads: 1, UploadedUnits: 2, DownloadedUnits: 4},
			{Index: 2, State: "complete", Cooperation: "selfish", Strategy: "uniform", Speed: 2, CompletionRound: 3, Uploads: 2, UploadedUnits: 4, DownloadedUnits: 4},
			{Index: 3, State: "complete", Cooperation: "freerider", Strategy: "rarest-first", Speed: 1, CompletionRound: 2, DownloadedUnits: 4},
		},
		ChunkStats: []ChunkStat{{Index: 0, CompletionRound: 2}, {Index: 1, CompletionRound: 3}},
		Totals:     monitor.Summarize(rounds),
	}
}

func TestQuery(t *testing.T) {
	r := sampleReport()

	for _, test := range []struct {
		line string
		want string
	}{
		{"summary", "run 7-1\nseed=7 chunk size=2 chunks=2 peers=4 seeds=1\nrounds=3 exchanged=4 time=3ms"},
		{"round 2", "round 2: peers=3 chunks=1 exchanged=1 time=1ms"},
		{"peer 0", "⇅ seed 0: altruistic rarest-first speed=2 completed=0 uploads=3 uploaded=6 downloaded=0"},
		{"chunk 1", "chunk 1: fully distributed in round 3"},
		{"slowest 1", "✓ peer 2: selfish uniform speed=2 completed=3 uploads=2 uploaded=4 downloaded=4"},
		{"uploaders 2", "✓ peer 2: selfish uniform speed=2 completed=3 uploads=2 uploaded=4 downloaded=4\n" +
			"✓ peer 1: altruistic rarest-first speed=2 completed=2 uploads=1 uploaded=2 downloaded=4"},
		{"policies", "altruistic: peers=1 avg completion=2.00 uploads=1\n" +
			"freerider: peers=1 avg completion=2.00 uploads=0\n" +
			"selfish: peers=1 avg completion=3.00 uploads=2"},
		{"policy Freerider", "✓ peer 3: freerider rarest-first speed=1 completed=2 uploads=0 uploaded=0 downloaded=4"},
	} {
		got, err := Query(r, test.line)
		if err != nil {
			t.Errorf("%q: %v", test.line, err)
			continue
		}
		if got != test.want {
			t.Errorf("%q:\nwant %q\ngot  %q", test.line, test.want, got)
		}
	}

	slowest, err := Query(r, "slowest")
	if err != nil || strings.Count(slowest, "\n") != 2 {
		t.Errorf("slowest should list all 3 downloaders by default: %q %v", slowest, err)
	}
}

func TestQueryErrors(t *testing.T) {
	r := sampleReport()
	for _, line := range []string{"", "dance", "round", "round x", "round 4", "peer -1", "chunk 2", "slowest 0", "policy", "policy generous"} {
		if _, err := Query(r, line); err == nil {
			t.Errorf("%q: expected error", line)
		}
	}
	if got := stateIcon("lost"); got != "?" {
		t.Errorf("unknown state icon: %q", got)
	}
	if _, err := Query(r, "  "); err != ErrEmptyQuery {
		t.Errorf("blank line: want ErrEmptyQuery, got %v", err)
	}
}
