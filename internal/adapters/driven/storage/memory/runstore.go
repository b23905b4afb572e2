package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu       sync.RWMutex
	runs     map[string]domain.Run
	verdicts map[string][]domain.Verdict
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs:     make(map[string]domain.Run),
		verdicts: make(map[string][]domain.Verdict),
	}
}

// SaveRun stores a run together with its verdicts.
func (s *RunStore) SaveRun(_ context.Context, run *domain.Run, verdicts []domain.Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	cp := make([]domain.Verdict, len(verdicts))
	copy(cp, verdicts)
	s.verdicts[run.ID] = cp
	return nil
}

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(_ context.Context, id string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// ListRuns returns all runs, newest first.
func (s *RunStore) ListRuns(_ context.Context) ([]domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Run, 0, len(s.runs))
	for _, run := range s.runs {
		result = append(result, run)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].StartedAt.After(result[j].StartedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// GetVerdicts returns a run's verdicts in population order.
func (s *RunStore) GetVerdicts(_ context.Context, runID string) ([]domain.Verdict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	verdicts, ok := s.verdicts[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := make([]domain.Verdict, len(verdicts))
	copy(cp, verdicts)
	return cp, nil
}

// DeleteRun removes a run and its verdicts.
func (s *RunStore) DeleteRun(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
	delete(s.verdicts, id)
	return nil
}
