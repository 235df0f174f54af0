package swarm

import (
	"fmt"
	"io"
)

// Observer receives engine events synchronously, in the order they occur.
// Implementations may perform I/O but must not modify the Distribution.
// Embed NopObserver to implement only the events of interest.
type Observer interface {
	RandomSeed(seed uint64)
	ChunkSize(size int)
	RoundStart(round int)
	ChunkTransfer(chunk, size, source, target int)
	PeerCompleted(peer int)
	ChunkCompleted(chunk int)
	RoundEnd(round int, r Round)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) RandomSeed(uint64) {}
func (NopObserver) ChunkSize(int) {}
func (NopObserver) RoundStart(int) {}
func (NopObserver) ChunkTransfer(int, int, int, int) {}
func (NopObserver) PeerCompleted(int) {}
func (NopObserver) ChunkCompleted(int) {}
func (NopObserver) RoundEnd(int, Round) {}

// Silent reports nothing.
type Silent struct {
	NopObserver
}

// Verbose prints every event.
type Verbose struct {
	NopObserver
	w io.Writer
}

func NewVerbose(w io.Writer) *Verbose {
	return &Verbose{w: w}
}

func (v *Verbose) RandomSeed(seed uint64) {
	fmt.Fprintf(v.w, "Random seed: %d\n", seed)
}

func (v *Verbose) ChunkSize(size int) {
	fmt.Fprintf(v.w, "Chunk size: %d\n", size)
}

func (v *Verbose) RoundStart(round int) {
	fmt.Fprintf(v.w, "Start round %d\n", round)
}

func (v *Verbose) ChunkTransfer(chunk, size, source, target int) {
	fmt.Fprintf(v.w, "Transfer size %d of chunk %d from %d to %d\n", size, chunk, source, target)
}

func (v *Verbose) PeerCompleted(peer int) {
	fmt.Fprintf(v.w, "Peer %d completed\n", peer)
}

func (v *Verbose) ChunkCompleted(chunk int) {
	fmt.Fprintf(v.w, "Chunk %d fully distributed\n", chunk)
}

func (v *Verbose) RoundEnd(round int, r Round) {
	fmt.Fprintf(v.w, "End round %d time %s\n", round, r.ExecutionTime)
}

// Summary prints the random seed and one line per finished round.
type Summary struct {
	NopObserver
	w io.Writer
}

func NewSummary(w io.Writer) *Summary {
	return &Summary{w: w}
}

func (s *Summary) RandomSeed(seed uint64) {
	fmt.Fprintf(s.w, "Random seed: %d\n", seed)
}

func (s *Summary) RoundEnd(round int, r Round) {
	fmt.Fprintf(s.w, "Round %d: %s\n", round, r)
}

// Multi forwards each event to every observer in order.
type Multi []Observer

func (m Multi) RandomSeed(seed uint64) {
	for _, o := range m {
		o.RandomSeed(seed)
	}
}

func (m Multi) ChunkSize(size int) {
	for _, o := range m {
		o.ChunkSize(size)
	}
}

func (m Multi) RoundStart(round int) {
	for _, o := range m {
		o.RoundStart(round)
	}
}

func (m Multi) ChunkTransfer(chunk, size, source, target int) {
	for _, o := range m {
		o.ChunkTransfer(chunk, size, source, target)
	}
}

func (m Multi) PeerCompleted(peer int) {
	for _, o := range m {
		o.PeerCompleted(peer)
	}
}

func (m Multi) ChunkCompleted(chunk int) {
	for _, o := range m {
		o.ChunkCompleted(chunk)
	}
}

func (m Multi) RoundEnd(round int, r Round) {
	for _, o := range m {
		o.RoundEnd(round, r)
	}
}
