package monitor

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"tarun-kavipurapu/swarm-sim/pkg/logger"
	"tarun-kavipurapu/swarm-sim/swarm"
)

// Totals are the run-level figures derived from the round sequence.
type Totals struct {
	Rounds          int           `json:"rounds"`
	ExchangedChunks int           `json:"exchanged_chunks"`
	ExecutionTime   time.Duration `json:"execution_time"`
}

// Summarize folds the per-round snapshots into run totals. The first
// snapshot is the initial state and is not counted as a round.
func Summarize(rounds []swarm.Round) Totals {
	var t Totals
	if len(rounds) == 0 {
		return t
	}
	t.Rounds = len(rounds) - 1
	for _, r := range rounds {
		t.ExchangedChunks += r.ExchangedChunks
		t.ExecutionTime += r.ExecutionTime
	}
	return t
}

// Metrics counts transfer activity while a run is in progress. It is safe
// to read from another goroutine.
type Metrics struct {
	swarm.NopObserver

	// Total transfer units moved
	TransferUnits int64
	// Number of transfer events
	TransferCount int64
	// Rounds finished so far
	RoundCount int64
	// Run start time
	RunStart time.Time
}

// NewMetrics creates a metrics observer starting now.
func NewMetrics() *Metrics {
	return &Metrics{RunStart: time.Now()}
}

func (m *Metrics) ChunkTransfer(_, size, _, _ int) {
	atomic.AddInt64(&m.TransferUnits, int64(size))
	atomic.AddInt64(&m.TransferCount, 1)
}

func (m *Metrics) RoundEnd(int, swarm.Round) {
	atomic.AddInt64(&m.RoundCount, 1)
}

// Throughput returns transfer units per second of wall time.
func (m *Metrics) Throughput() float64 {
	elapsed := time.Since(m.RunStart).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&m.TransferUnits)) / elapsed
}

// LogPeriodic logs runtime metrics at the specified interval until ctx is
// done.
func (m *Metrics) LogPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)

			logger.Sugar.Infof("[Metrics] Goroutines=%d | HeapAlloc=%dMB | HeapSys=%dMB | Rounds=%d | Transfers=%d | Throughput=%.0f units/s",
				runtime.NumGoroutine(),
				ms.HeapAlloc/1024/1024,
				ms.HeapSys/1024/1024,
				atomic.LoadInt64(&m.RoundCount),
				atomic.LoadInt64(&m.TransferCount),
				m.Throughput(),
			)
		}
	}
}

// LogRun records the totals of a finished run.
func (m *Metrics) LogRun(t Totals) {
	var perRound time.Duration
	if t.Rounds > 0 {
		perRound = t.ExecutionTime / time.Duration(t.Rounds)
	}

	logger.Sugar.Infof("[Run] Rounds=%d | Exchanged=%d | Units=%d | Compute=%s | PerRound=%s",
		t.Rounds, t.ExchangedChunks, atomic.LoadInt64(&m.TransferUnits), t.ExecutionTime, perRound)
}
