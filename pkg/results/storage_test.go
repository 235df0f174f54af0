package results

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"tarun-kavipurapu/swarm-sim/pkg/monitor"
	"tarun-kavipurapu/swarm-sim/pkg/report"
	"tarun-kavipurapu/swarm-sim/swarm"
)

func testReport(seed uint64, created time.Time) *report.Report {
	rounds := []swarm.Round{
		{CompletedPeers: 1},
		{CompletedPeers: 2, CompletedChunks: 1, ExchangedChunks: 1, ExecutionTime: time.Microsecond},
	}
	return &report.Report{
		ID:        fmt.Sprintf("%d-%d", seed, created.UnixNano()),
		CreatedAt: created,
		Seed:      seed,
		ChunkSize: 1,
		Chunks:    1,
		Peers:     2,
		Seeds:     1,
		Rounds:    rounds,
		PeerStats: []report.PeerStat{
			{Index: 0, Seed: true, Cooperation: "altruistic", Strategy: "rarest-first", Speed: 1, Uploads: 1, UploadedUnits: 1},
			{Index: 1, Cooperation: "altruistic", Strategy: "rarest-first", Speed: 1, CompletionRound: 1, DownloadedUnits: 1},
		},
		ChunkStats: []report.ChunkStat{{Index: 0, CompletionRound: 1}},
		Totals:     monitor.Summarize(rounds),
	}
}

// exerciseStorage runs the behaviour every Storage must share.
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	base := time.Now().Truncate(time.Second)
	older := testReport(1, base.Add(-time.Hour))
	newer := testReport(2, base)

	for _, r := range []*report.Report{older, newer} {
		if err := s.SaveRun(r); err != nil {
			t.Fatalf("save %s: %v", r.ID, err)
		}
	}

	got, err := s.GetRun(newer.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Seed != 2 || got.Totals != newer.Totals || len(got.PeerStats) != 2 {
		t.Errorf("unexpected run %+v", got)
	}

	if _, err := s.GetRun("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}

	infos, err := s.ListRuns(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) < 2 || infos[0].ID != newer.ID {
		t.Fatalf("want newest first, got %+v", infos)
	}
	if infos[0].Rounds != 1 || infos[0].ExchangedChunks != 1 || infos[0].Peers != 2 || infos[0].Seed != 2 {
		t.Errorf("unexpected listing %+v", infos[0])
	}

	limited, err := s.ListRuns(1)
	if err != nil || len(limited) != 1 {
		t.Errorf("limit 1: %v %v", limited, err)
	}
}

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	exerciseStorage(t, s)

	if err := s.SaveRun(&report.Report{}); err == nil {
		t.Error("run without id should be rejected")
	}
}

func TestRedisStorage(t *testing.T) {
	addr := os.Getenv("SIM_REDIS_ADDR")
	if addr == "" || testing.Short() {
		t.Skip("SIM_REDIS_ADDR not set")
	}

	s, err := NewRedisStorage(context.Background(), addr, "", 15, time.Minute)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()

	exerciseStorage(t, s)
}

func TestRedisStorageUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("dials the network")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewRedisStorage(ctx, "127.0.0.1:1", "", 0, 0); err == nil {
		t.Error("expected connection error")
	}
}
