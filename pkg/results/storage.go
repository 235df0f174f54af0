package results

import (
	"errors"
	"time"

	"tarun-kavipurapu/swarm-sim/pkg/report"
)

// ErrNotFound is returned when no run has the requested ID.
var ErrNotFound = errors.New("run not found")

// RunInfo is the listing entry of a stored run.
type RunInfo struct {
	ID              string
	CreatedAt       time.Time
	Seed            uint64
	Peers           int
	Chunks          int
	Rounds          int
	ExchangedChunks int
}

func infoOf(r *report.Report) RunInfo {
	return RunInfo{
		ID:              r.ID,
		CreatedAt:       r.CreatedAt,
		Seed:            r.Seed,
		Peers:           r.Peers,
		Chunks:          r.Chunks,
		Rounds:          r.Totals.Rounds,
		ExchangedChunks: r.Totals.ExchangedChunks,
	}
}

// Storage persists run reports.
type Storage interface {
	SaveRun(r *report.Report) error
	GetRun(id string) (*report.Report, error)
	// ListRuns returns up to limit runs, newest first.
	ListRuns(limit int) ([]RunInfo, error)
	Close() error
}
