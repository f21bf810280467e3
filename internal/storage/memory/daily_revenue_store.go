package memory

import (
	"context"
	"sort"
	"sync"

	"sales-analytics/internal/domain"
	"sales-analytics/internal/storage"
)

// DailyRevenueStore is an in-memory implementation of storage.DailyRevenueStore.
type DailyRevenueStore struct {
	mu   sync.RWMutex
	data map[string][]domain.DailyStats // keyed by run_id
}

// NewDailyRevenueStore creates a new in-memory daily revenue store.
func NewDailyRevenueStore() *DailyRevenueStore {
	return &DailyRevenueStore{
		data: make(map[string][]domain.DailyStats),
	}
}

// InsertBulk adds daily rows for a run.
func (s *DailyRevenueStore) InsertBulk(_ context.Context, runID string, days []domain.DailyStats) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[runID] = append(s.data[runID], days...)
	return nil
}

// GetByRun retrieves daily rows for a run ordered by date ASC.
func (s *DailyRevenueStore) GetByRun(_ context.Context, runID string) ([]domain.DailyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.DailyStats, len(s.data[runID]))
	copy(result, s.data[runID])

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.DailyRevenueStore = (*DailyRevenueStore)(nil)
