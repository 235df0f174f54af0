package swarm

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"slices"

	"tarun-kavipurapu/swarm-sim/pkg/config"
	"tarun-kavipurapu/swarm-sim/pkg/logger"
)

// engine carries the per-run scheduling state. All decisions in a round
// are made against possession as it stood at the start of the round;
// completions are applied in the sweep at the end.
type engine struct {
	d   *Distribution
	rng *rand.Rand
	obs Observer

	// peerOrder is reshuffled every round: seeds within [0, Seeds),
	// downloaders within [Seeds, len).
	peerOrder []int
	// chunkOrder is sorted by rarity every round and kept between rounds
	// so the stable sort starts from the previous ordering.
	chunkOrder []int
	scratch    []int
}

func newEngine(d *Distribution, seed uint64, obs Observer) *engine {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)

	peerOrder := make([]int, len(d.Peers))
	for i := range peerOrder {
		peerOrder[i] = i
	}
	chunkOrder := make([]int, len(d.File.Chunks))
	for i := range chunkOrder {
		chunkOrder[i] = i
	}

	return &engine{
		d:          d,
		rng:        rand.New(rand.NewChaCha8(key)),
		obs:        obs,
		peerOrder:  peerOrder,
		chunkOrder: chunkOrder,
		scratch:    make([]int, len(d.File.Chunks)),
	}
}

// step executes one round and returns its snapshot (without timing).
func (e *engine) step(round int, next Round) Round {
	d := e.d

	e.shufflePeers()
	e.rankChunks()

	for _, index := range e.peerOrder[d.Seeds:] {
		peer := d.Peers[index]
		if peer.IsComplete() {
			continue
		}
		if peer.downloading {
			e.continueTransfer(peer)
			continue
		}
		if e.startTransfer(peer) {
			next.ExchangedChunks++
		}
	}

	finished := e.sweep(round, &next)
	e.settle(finished, round)
	return next
}

func (e *engine) shufflePeers() {
	seeds := e.peerOrder[:e.d.Seeds]
	e.rng.Shuffle(len(seeds), func(i, j int) { seeds[i], seeds[j] = seeds[j], seeds[i] })
	rest := e.peerOrder[e.d.Seeds:]
	e.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
}

func (e *engine) rankChunks() {
	chunks := e.d.File.Chunks
	slices.SortStableFunc(e.chunkOrder, func(a, b int) int {
		return cmp.Compare(chunks[a].PossessingPeers, chunks[b].PossessingPeers)
	})
}

// shuffleTies permutes every maximal run of chunks with equal possession
// counts, leaving the ascending rarity order intact.
func (e *engine) shuffleTies() {
	chunks := e.d.File.Chunks
	order := e.chunkOrder
	count := func(i int) int { return chunks[order[i]].PossessingPeers }

	for i := 0; i+1 < len(order); {
		j := i + 1
		for j < len(order) && count(j) == count(i) {
			j++
		}
		if j-i > 1 {
			run := order[i:j]
			e.rng.Shuffle(len(run), func(a, b int) { run[a], run[b] = run[b], run[a] })
		}
		i = j
	}
}

// candidates returns the chunk order a peer with the given strategy scans.
// The returned slice is only valid until the next call.
func (e *engine) candidates(strategy config.Strategy) []int {
	e.shuffleTies()

	switch strategy {
	case config.MostCommonFirst:
		n := len(e.chunkOrder)
		for i, c := range e.chunkOrder {
			e.scratch[n-1-i] = c
		}
		return e.scratch
	case config.Uniform:
		copy(e.scratch, e.chunkOrder)
		e.rng.Shuffle(len(e.scratch), func(a, b int) { e.scratch[a], e.scratch[b] = e.scratch[b], e.scratch[a] })
		return e.scratch
	default:
		return e.chunkOrder
	}
}

// continueTransfer advances the peer's active download by as much as the
// source and the peer can carry this round.
func (e *engine) continueTransfer(peer *Peer) {
	d := e.d
	t := peer.inbound

	size := min(d.capacity(t.Chunk, t.Source, peer.Index), d.ChunkSize-t.Delivered)
	if size <= 0 {
		panic(fmt.Sprintf("swarm: peer %d holds transfer of chunk %d from peer %d with no capacity (delivered %d of %d)",
			peer.Index, t.Chunk, t.Source, t.Delivered, d.ChunkSize))
	}

	e.obs.ChunkTransfer(t.Chunk, size, t.Source, t.Target)
	t.Current = size
	t.Delivered += size
	peer.inbound = t
	d.Peers[t.Source].commit(t)
}

// startTransfer commits the first eligible (chunk, source) pair, scanning
// chunks in strategy order and sources downloaders first, then seeds.
func (e *engine) startTransfer(peer *Peer) bool {
	d := e.d
	n := len(d.Peers)

	for _, chunk := range e.candidates(peer.Strategy) {
		if peer.Possessed[chunk] {
			continue
		}
		for k := 0; k < n; k++ {
			source := e.peerOrder[(d.Seeds+k)%n]
			size := min(d.capacity(chunk, source, peer.Index), d.ChunkSize)
			if size == 0 {
				continue
			}

			e.obs.ChunkTransfer(chunk, size, source, peer.Index)
			t := Transfer{
				Chunk:     chunk,
				Source:    source,
				Target:    peer.Index,
				Delivered: size,
				Current:   size,
			}
			peer.inbound = t
			peer.downloading = true
			d.Peers[source].commit(t)
			return true
		}
	}
	return false
}

// sweep applies every finished download: possession, chunk counts and
// completion rounds. Targets are visited in index order.
func (e *engine) sweep(round int, next *Round) []Transfer {
	d := e.d
	var finished []Transfer

	for _, peer := range d.Peers {
		t, ok := peer.takeCompleted(d.ChunkSize)
		if !ok {
			continue
		}

		chunk := &d.File.Chunks[t.Chunk]
		chunk.PossessingPeers++
		if chunk.PossessingPeers == len(d.Peers) {
			e.obs.ChunkCompleted(chunk.Index)
			chunk.CompletionRound = round
			next.CompletedChunks++
		}
		if peer.hasAll() {
			e.obs.PeerCompleted(peer.Index)
			peer.CompletionRound = round
			next.CompletedPeers++
		}
		finished = append(finished, t)
	}
	return finished
}

// settle credits sources for finished transfers and frees their capacity.
// A selfish peer that completed this round stops serving: its remaining
// uploads are dropped and their targets search again next round.
func (e *engine) settle(finished []Transfer, round int) {
	d := e.d
	for _, t := range finished {
		d.Peers[t.Source].finishUpload(t.Chunk, t.Target)
	}

	for _, t := range finished {
		peer := d.Peers[t.Target]
		if peer.Cooperation != config.Selfish || peer.CompletionRound != round || len(peer.outbound) == 0 {
			continue
		}
		for _, up := range peer.outbound {
			target := d.Peers[up.Target]
			target.inbound = Transfer{}
			target.downloading = false
			logger.Sugar.Debugf("[Distribution] round %d: selfish peer %d dropped chunk %d to peer %d after %d units",
				round, peer.Index, up.Chunk, up.Target, up.Delivered)
		}
		peer.outbound = nil
	}
}
