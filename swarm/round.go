package swarm

import (
	"fmt"
	"time"
)

// Round is the snapshot taken at a round boundary. Completion counters are
// cumulative; ExchangedChunks counts transfers started in this round only.
type Round struct {
	CompletedPeers  int `json:"completed_peers"`
	CompletedChunks int `json:"completed_chunks"`
	ExchangedChunks int `json:"exchanged_chunks"`
	// ExecutionTime is the wall-clock cost of computing the round.
	ExecutionTime time.Duration `json:"execution_time"`
}

// next starts a snapshot that carries the cumulative counters forward.
func (r Round) next() Round {
	return Round{
		CompletedPeers:  r.CompletedPeers,
		CompletedChunks: r.CompletedChunks,
	}
}

// Equal compares the simulated fields, ignoring execution time.
func (r Round) Equal(o Round) bool {
	return r.CompletedPeers == o.CompletedPeers &&
		r.CompletedChunks == o.CompletedChunks &&
		r.ExchangedChunks == o.ExchangedChunks
}

func (r Round) String() string {
	return fmt.Sprintf("peers=%d chunks=%d exchanged=%d time=%s",
		r.CompletedPeers, r.CompletedChunks, r.ExchangedChunks, r.ExecutionTime)
}
