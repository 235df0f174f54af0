package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tarun-kavipurapu/swarm-sim/pkg/config"
	"tarun-kavipurapu/swarm-sim/pkg/report"
	"tarun-kavipurapu/swarm-sim/pkg/results"
)

func setFlags(t *testing.T, peerFile string) {
	t.Helper()
	numChunks, numPeers, numSeeds = 4, 6, 1
	numSelfish, numFreeriders = 1, 1
	strategy = config.MostCommonFirst
	speedFast, speedMedium, speedSlow = 4, 2, 1
	peerConfig = peerFile
	t.Cleanup(func() { peerConfig = "" })
}

func TestBuildConfigUniform(t *testing.T) {
	setFlags(t, "")
	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if cfg.ChunkSize != 4 || cfg.Cooperation[4] != config.Selfish || cfg.Cooperation[5] != config.Freerider || cfg.Strategies[1] != config.MostCommonFirst {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestBuildConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peers.txt")
	if err := os.WriteFile(path, []byte("# two peers\nsms fuf\n"), 0644); err != nil {
		t.Fatal(err)
	}
	setFlags(t, path)

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if cfg.Cooperation[1] != config.Selfish || cfg.PeerSpeeds[1] != 1 || cfg.Strategies[2] != config.Uniform || cfg.PeerSpeeds[3] != 1 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestBuildConfigErrors(t *testing.T) {
	setFlags(t, filepath.Join(t.TempDir(), "missing.txt"))
	if _, err := buildConfig(); err == nil {
		t.Error("missing peer config should fail")
	}

	setFlags(t, "")
	numSeeds = 6
	if _, err := buildConfig(); err == nil {
		t.Error("seeds equal to peers should fail")
	}
}

func TestExportReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.bencode")
	rep := &report.Report{ID: "1-2", Seed: 1}
	if err := exportReport(rep, path, report.Bencode); err != nil {
		t.Fatalf("export: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	got, err := report.Decode(file, report.Bencode)
	if err != nil || got.ID != "1-2" || got.Seed != 1 {
		t.Fatalf("decode: %+v %v", got, err)
	}
}

func TestRunStoreWithoutRedis(t *testing.T) {
	redisAddr = ""
	store, err := openRunStore(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*results.MemoryStorage); !ok {
		t.Fatalf("want memory storage, got %T", store)
	}
	rep := &report.Report{ID: "5-6", Seed: 5}
	if err := store.SaveRun(rep); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got, err := store.GetRun("5-6"); err != nil || got.Seed != 5 {
		t.Fatalf("get: %+v %v", got, err)
	}
}
