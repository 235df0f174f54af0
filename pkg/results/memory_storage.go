package results

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"tarun-kavipurapu/swarm-sim/pkg/report"
)

type MemoryStorage struct {
	mu   sync.RWMutex
	runs map[string]*report.Report
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		runs: make(map[string]*report.Report),
	}
}

func (m *MemoryStorage) Close() error {
	return nil
}

func (m *MemoryStorage) SaveRun(r *report.Report) error {
	if r.ID == "" {
		return fmt.Errorf("run has no id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs[r.ID] = r
	return nil
}

func (m *MemoryStorage) GetRun(id string) (*report.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, nil
}

func (m *MemoryStorage) ListRuns(limit int) ([]RunInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]RunInfo, 0, len(m.runs))
	for _, r := range m.runs {
		infos = append(infos, infoOf(r))
	}
	slices.SortFunc(infos, func(a, b RunInfo) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if limit > 0 && len(infos) > limit {
		infos = infos[:limit]
	}
	return infos, nil
}
