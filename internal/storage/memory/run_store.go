package memory

import (
	"context"
	"sort"
	"sync"

	"sales-analytics/internal/domain"
	"sales-analytics/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PipelineRun // keyed by run_id
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.PipelineRun),
	}
}

// Insert adds a run record. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(_ context.Context, r *domain.PipelineRun) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	runCopy := *r
	s.data[r.RunID] = &runCopy
	return nil
}

// GetByID retrieves a run. Returns ErrNotFound if absent.
func (s *RunStore) GetByID(_ context.Context, runID string) (*domain.PipelineRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	runCopy := *r
	return &runCopy, nil
}

// GetAll retrieves all runs ordered by started_at ASC, run_id ASC.
func (s *RunStore) GetAll(_ context.Context) ([]*domain.PipelineRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.PipelineRun, 0, len(s.data))
	for _, r := range s.data {
		runCopy := *r
		result = append(result, &runCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].StartedAt.Before(result[j].StartedAt)
		}
		return result[i].RunID < result[j].RunID
	})
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.RunStore = (*RunStore)(nil)
