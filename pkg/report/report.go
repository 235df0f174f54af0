package report

import (
	"fmt"
	"time"

	"tarun-kavipurapu/swarm-sim/pkg/monitor"
	"tarun-kavipurapu/swarm-sim/swarm"
)

// PeerStat is the outcome of one peer.
type PeerStat struct {
	Index           int    `json:"index"`
	Seed            bool   `json:"seed"`
	Cooperation     string `json:"cooperation"`
	Strategy        string `json:"strategy"`
	State           string `json:"state"`
	Speed           int    `json:"speed"`
	CompletionRound int    `json:"completion_round"`
	Uploads         int    `json:"uploads"`
	UploadedUnits   int64  `json:"uploaded_units"`
	DownloadedUnits int64  `json:"downloaded_units"`
}

// ChunkStat is the outcome of one chunk.
type ChunkStat struct {
	Index           int `json:"index"`
	CompletionRound int `json:"completion_round"`
}

// Report is the full record of a finished run.
type Report struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Seed      uint64 `json:"seed"`
	ChunkSize int    `json:"chunk_size"`
	Chunks    int    `json:"chunks"`
	Peers     int    `json:"peers"`
	Seeds     int    `json:"seeds"`

	Rounds     []swarm.Round  `json:"rounds"`
	PeerStats  []PeerStat     `json:"peer_stats"`
	ChunkStats []ChunkStat    `json:"chunk_stats"`
	Totals     monitor.Totals `json:"totals"`
}

// Collector records the per-peer transfer volume of a run.
type Collector struct {
	swarm.NopObserver

	Seed       uint64
	uploaded   []int64
	downloaded []int64
}

// NewCollector creates a collector for a swarm of the given size.
func NewCollector(peers int) *Collector {
	return &Collector{
		uploaded:   make([]int64, peers),
		downloaded: make([]int64, peers),
	}
}

func (c *Collector) RandomSeed(seed uint64) {
	c.Seed = seed
}

func (c *Collector) ChunkTransfer(_, size, source, target int) {
	c.uploaded[source] += int64(size)
	c.downloaded[target] += int64(size)
}

// Build assembles the report of a finished run of d.
func Build(d *swarm.Distribution, c *Collector, rounds []swarm.Round) *Report {
	created := time.Now()
	r := &Report{
		ID:        fmt.Sprintf("%d-%d", c.Seed, created.UnixNano()),
		CreatedAt: created,
		Seed:      c.Seed,
		ChunkSize: d.ChunkSize,
		Chunks:    len(d.File.Chunks),
		Peers:     len(d.Peers),
		Seeds:     d.Seeds,
		Rounds:    rounds,
		Totals:    monitor.Summarize(rounds),
	}

	r.PeerStats = make([]PeerStat, len(d.Peers))
	for i, p := range d.Peers {
		r.PeerStats[i] = PeerStat{
			Index:           p.Index,
			Seed:            p.Seed,
			Cooperation:     p.Cooperation.String(),
			Strategy:        p.Strategy.String(),
			State:           p.State().String(),
			Speed:           p.Speed,
			CompletionRound: p.CompletionRound,
			Uploads:         p.Uploads,
			UploadedUnits:   c.uploaded[i],
			DownloadedUnits: c.downloaded[i],
		}
	}

	r.ChunkStats = make([]ChunkStat, len(d.File.Chunks))
	for i, ch := range d.File.Chunks {
		r.ChunkStats[i] = ChunkStat{Index: ch.Index, CompletionRound: ch.CompletionRound}
	}
	return r
}
