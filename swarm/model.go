package swarm

import (
	"tarun-kavipurapu/swarm-sim/pkg/config"
)

// NotCompleted marks a completion round that has not been reached yet.
const NotCompleted = -1

// Chunk is one indivisible unit of the distributed file.
type Chunk struct {
	Index int
	// CompletionRound is the round in which the last peer received the
	// chunk, or NotCompleted.
	CompletionRound int
	// PossessingPeers counts the peers whose possession bit is set.
	PossessingPeers int
}

func newChunk(index, seeds int) Chunk {
	return Chunk{
		Index:           index,
		CompletionRound: NotCompleted,
		PossessingPeers: seeds,
	}
}

// IsComplete returns true once every peer holds the chunk.
func (c *Chunk) IsComplete() bool {
	return c.CompletionRound != NotCompleted
}

// File is the fixed, ordered set of chunks being distributed.
type File struct {
	Chunks []Chunk
}

// Transfer is an in-flight chunk download. It is referenced by value from
// both its source (outbound set) and its target (single inbound slot).
type Transfer struct {
	Chunk  int
	Source int
	Target int
	// Delivered is the cumulative amount received so far.
	Delivered int
	// Current is the amount delivered in the most recent round.
	Current int
}

// PeerState is the position of a peer in its download lifecycle.
type PeerState int

const (
	PeerSeeding PeerState = iota
	PeerIdle
	PeerDownloading
	PeerComplete
)

func (s PeerState) String() string {
	switch s {
	case PeerSeeding:
		return "seeding"
	case PeerIdle:
		return "idle"
	case PeerDownloading:
		return "downloading"
	case PeerComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Icon returns an icon representation of the peer state
func (s PeerState) Icon() string {
	switch s {
	case PeerSeeding:
		return "⇅"
	case PeerIdle:
		return "⏳"
	case PeerDownloading:
		return "↓"
	case PeerComplete:
		return "✓"
	default:
		return "?"
	}
}

// Peer is a swarm member. Seeds start with every chunk and a completion
// round of zero.
type Peer struct {
	Index       int
	Seed        bool
	Cooperation config.Cooperation
	Strategy    config.Strategy
	Speed       int

	CompletionRound int
	Possessed       []bool
	// Uploads counts chunks this peer finished sending.
	Uploads int

	outbound    []Transfer
	inbound     Transfer
	downloading bool
}

func newPeer(index int, chunks int, seed bool, coop config.Cooperation, strategy config.Strategy, speed int) *Peer {
	if seed && coop != config.Altruistic {
		panic("swarm: seeds must be altruistic")
	}
	if speed <= 0 {
		panic("swarm: peer speed must be positive")
	}

	possessed := make([]bool, chunks)
	completion := NotCompleted
	if seed {
		for i := range possessed {
			possessed[i] = true
		}
		completion = 0
	}

	return &Peer{
		Index:           index,
		Seed:            seed,
		Cooperation:     coop,
		Strategy:        strategy,
		Speed:           speed,
		CompletionRound: completion,
		Possessed:       possessed,
	}
}

// IsComplete returns true once the peer owns every chunk.
func (p *Peer) IsComplete() bool {
	return p.CompletionRound != NotCompleted
}

// State derives the lifecycle state from the peer's fields.
func (p *Peer) State() PeerState {
	switch {
	case p.Seed:
		return PeerSeeding
	case p.IsComplete():
		return PeerComplete
	case p.downloading:
		return PeerDownloading
	default:
		return PeerIdle
	}
}

// Download returns the active inbound transfer, if any.
func (p *Peer) Download() (Transfer, bool) {
	return p.inbound, p.downloading
}

// PossessedCount returns the number of chunks the peer holds.
func (p *Peer) PossessedCount() int {
	n := 0
	for _, has := range p.Possessed {
		if has {
			n++
		}
	}
	return n
}

func (p *Peer) hasAll() bool {
	for _, has := range p.Possessed {
		if !has {
			return false
		}
	}
	return true
}

func (p *Peer) canServe() bool {
	switch p.Cooperation {
	case config.Altruistic:
		return true
	case config.Selfish:
		return !p.IsComplete()
	default:
		return false
	}
}

// residual is the bandwidth left after the amounts committed to targets
// other than target.
func (p *Peer) residual(target int) int {
	used := 0
	for _, t := range p.outbound {
		if t.Target != target {
			used += t.Current
		}
	}
	if used > p.Speed {
		return 0
	}
	return p.Speed - used
}

// uploadCapacity is the amount this peer may send of chunk to target in
// the current round; zero when policy or possession forbid it.
func (p *Peer) uploadCapacity(chunk, target int) int {
	if !p.canServe() || !p.Possessed[chunk] {
		return 0
	}
	return p.residual(target)
}

func (p *Peer) uploadIndex(chunk, target int) int {
	for i, t := range p.outbound {
		if t.Chunk == chunk && t.Target == target {
			return i
		}
	}
	return -1
}

// commit records t in the outbound set, replacing the previous record of
// the same (chunk, target) pair.
func (p *Peer) commit(t Transfer) {
	if i := p.uploadIndex(t.Chunk, t.Target); i >= 0 {
		p.outbound[i] = t
		return
	}
	p.outbound = append(p.outbound, t)
}

func (p *Peer) finishUpload(chunk, target int) {
	if i := p.uploadIndex(chunk, target); i >= 0 {
		p.Uploads++
		p.outbound = append(p.outbound[:i], p.outbound[i+1:]...)
	}
}

// takeCompleted consumes the inbound transfer once chunkSize units have
// arrived and marks the chunk possessed.
func (p *Peer) takeCompleted(chunkSize int) (Transfer, bool) {
	if !p.downloading || p.inbound.Delivered < chunkSize {
		return Transfer{}, false
	}
	t := p.inbound
	p.Possessed[t.Chunk] = true
	p.inbound = Transfer{}
	p.downloading = false
	return t, true
}
