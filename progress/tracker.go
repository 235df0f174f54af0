package progress

import (
	"sync"
	"time"

	"tarun-kavipurapu/swarm-sim/swarm"
)

// Tracker follows a whole-swarm run from observer events. Rendering runs
// on its own goroutine, so every accessor takes the lock.
type Tracker struct {
	swarm.NopObserver

	mu          sync.RWMutex
	peers       int
	seeds       int
	chunks      int
	chunkSize   int
	seed        uint64
	round       int
	active      int // transfers reported in the current round
	lastActive  int // transfers reported in the previous round
	units       int64
	completed   int // peers
	distributed int // chunks
	StartTime   time.Time
	EndTime     time.Time
}

// NewTracker creates a tracker for a swarm with the given shape. seeds are
// counted as complete from the start.
func NewTracker(peers, seeds, chunks int) *Tracker {
	return &Tracker{
		peers:     peers,
		seeds:     seeds,
		chunks:    chunks,
		completed: seeds,
		StartTime: time.Now(),
	}
}

func (t *Tracker) RandomSeed(seed uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seed = seed
}

func (t *Tracker) ChunkSize(size int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chunkSize = size
}

func (t *Tracker) RoundStart(round int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.round = round
	t.active = 0
}

func (t *Tracker) ChunkTransfer(_, size, _, _ int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active++
	t.units += int64(size)
}

func (t *Tracker) PeerCompleted(int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed++
}

func (t *Tracker) ChunkCompleted(int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.distributed++
}

func (t *Tracker) RoundEnd(int, swarm.Round) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastActive = t.active
	if t.completed >= t.peers {
		t.EndTime = time.Now()
	}
}

// Snapshot is a consistent copy of the tracker counters.
type Snapshot struct {
	Seed            uint64
	Round           int
	CompletedPeers  int
	TotalPeers      int
	CompletedChunks int
	TotalChunks     int
	ActiveTransfers int
	// Units is the transfer volume moved so far, dropped partial transfers
	// included. TotalUnits is the volume every downloader needs.
	Units      int64
	TotalUnits int64
}

// Percent is the share of the total transfer volume delivered so far.
func (s Snapshot) Percent() float64 {
	if s.TotalUnits == 0 {
		return 0
	}
	p := float64(s.Units) / float64(s.TotalUnits) * 100
	if p > 100 {
		return 100
	}
	return p
}

// GetProgress returns the current counters.
func (t *Tracker) GetProgress() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	active := t.active
	if active == 0 {
		active = t.lastActive
	}
	return Snapshot{
		Seed:            t.seed,
		Round:           t.round,
		CompletedPeers:  t.completed,
		TotalPeers:      t.peers,
		CompletedChunks: t.distributed,
		TotalChunks:     t.chunks,
		ActiveTransfers: active,
		Units:           t.units,
		TotalUnits:      t.totalUnits(),
	}
}

func (t *Tracker) totalUnits() int64 {
	return int64(t.chunks) * int64(t.chunkSize) * int64(t.peers-t.seeds)
}

// IsComplete returns true once every peer holds the file.
func (t *Tracker) IsComplete() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.completed >= t.peers
}

// GetElapsedTime returns the time since the tracker was created, frozen
// once the run completes.
func (t *Tracker) GetElapsedTime() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.EndTime.IsZero() {
		return t.EndTime.Sub(t.StartTime)
	}
	return time.Since(t.StartTime)
}
