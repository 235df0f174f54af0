package swarm

import (
	"fmt"
	"time"

	"tarun-kavipurapu/swarm-sim/pkg/config"
	"tarun-kavipurapu/swarm-sim/pkg/logger"
)

// Distribution owns the file and every peer for the lifetime of one run.
// Peers with Index < Seeds are seeds.
type Distribution struct {
	File      File
	Peers     []*Peer
	Seeds     int
	ChunkSize int
}

// New builds the initial state described by cfg. cfg must come from
// config.NewUniform or config.NewExplicit; inconsistent input panics.
func New(cfg *config.Config) *Distribution {
	if cfg == nil {
		panic("swarm: nil config")
	}
	if len(cfg.Cooperation) != cfg.Peers || len(cfg.Strategies) != cfg.Peers || len(cfg.PeerSpeeds) != cfg.Peers {
		panic(fmt.Sprintf("swarm: config has %d peers but %d/%d/%d attributes",
			cfg.Peers, len(cfg.Cooperation), len(cfg.Strategies), len(cfg.PeerSpeeds)))
	}
	if cfg.Chunks <= 0 || cfg.Seeds <= 0 || cfg.Peers <= cfg.Seeds || cfg.ChunkSize <= 0 {
		panic(fmt.Sprintf("swarm: invalid config chunks=%d peers=%d seeds=%d chunk size=%d",
			cfg.Chunks, cfg.Peers, cfg.Seeds, cfg.ChunkSize))
	}

	chunks := make([]Chunk, cfg.Chunks)
	for i := range chunks {
		chunks[i] = newChunk(i, cfg.Seeds)
	}

	peers := make([]*Peer, cfg.Peers)
	for i := range peers {
		peers[i] = newPeer(i, cfg.Chunks, i < cfg.Seeds, cfg.Cooperation[i], cfg.Strategies[i], cfg.PeerSpeeds[i])
	}

	return &Distribution{
		File:      File{Chunks: chunks},
		Peers:     peers,
		Seeds:     cfg.Seeds,
		ChunkSize: cfg.ChunkSize,
	}
}

type runOptions struct {
	seed    uint64
	seedSet bool
}

// RunOption customizes a run.
type RunOption func(*runOptions)

// WithSeed fixes the random seed. Without it the seed is derived from the
// wall clock and reported through Observer.RandomSeed.
func WithSeed(seed uint64) RunOption {
	return func(o *runOptions) {
		o.seed = seed
		o.seedSet = true
	}
}

// Run steps rounds until every peer is complete and returns one snapshot
// per round boundary, starting with the pre-simulation snapshot.
func (d *Distribution) Run(obs Observer, opts ...RunOption) []Round {
	if obs == nil {
		obs = NopObserver{}
	}
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}
	seed := o.seed
	if !o.seedSet {
		seed = uint64(time.Now().Unix())
	}

	obs.RandomSeed(seed)
	obs.ChunkSize(d.ChunkSize)

	logger.Sugar.Infof("[Distribution] starting run: peers=%d seeds=%d chunks=%d chunk size=%d seed=%d",
		len(d.Peers), d.Seeds, len(d.File.Chunks), d.ChunkSize, seed)

	e := newEngine(d, seed, obs)
	current := Round{
		CompletedPeers:  d.completedPeers(),
		CompletedChunks: d.completedChunks(),
	}
	rounds := []Round{current}

	for current.CompletedPeers < len(d.Peers) {
		number := len(rounds)
		obs.RoundStart(number)

		start := time.Now()
		current = e.step(number, current.next())
		current.ExecutionTime = time.Since(start)

		logger.Sugar.Debugf("[Distribution] round %d: %s", number, current)
		obs.RoundEnd(number, current)
		rounds = append(rounds, current)
	}

	logger.Sugar.Infof("[Distribution] run finished after %d rounds", len(rounds)-1)
	return rounds
}

func (d *Distribution) completedPeers() int {
	n := 0
	for _, p := range d.Peers {
		if p.IsComplete() {
			n++
		}
	}
	return n
}

func (d *Distribution) completedChunks() int {
	n := 0
	for i := range d.File.Chunks {
		if d.File.Chunks[i].IsComplete() {
			n++
		}
	}
	return n
}

// capacity is the amount target can receive of chunk from source this
// round: the source's upload capacity capped by the target's speed.
func (d *Distribution) capacity(chunk, source, target int) int {
	return min(d.Peers[target].Speed, d.Peers[source].uploadCapacity(chunk, target))
}
