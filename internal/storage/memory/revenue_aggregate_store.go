package memory

import (
	"context"
	"sort"
	"sync"

	"sales-analytics/internal/storage"
)

// RevenueAggregateStore is an in-memory implementation of
// storage.RevenueAggregateStore.
type RevenueAggregateStore struct {
	mu   sync.RWMutex
	data []storage.RevenueAggregateRow
}

// NewRevenueAggregateStore creates a new in-memory aggregate store.
func NewRevenueAggregateStore() *RevenueAggregateStore {
	return &RevenueAggregateStore{}
}

// InsertBulk adds aggregate rows for a run.
func (s *RevenueAggregateStore) InsertBulk(_ context.Context, rows []storage.RevenueAggregateRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		if r.RunID == "" || r.Dimension == "" || r.Name == "" {
			return storage.ErrInvalidInput
		}
		s.data = append(s.data, r)
	}
	return nil
}

// GetByRunAndDimension retrieves rows for one run and dimension,
// ordered by revenue DESC, name ASC.
func (s *RevenueAggregateStore) GetByRunAndDimension(_ context.Context, runID, dimension string) ([]storage.RevenueAggregateRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []storage.RevenueAggregateRow
	for _, r := range s.data {
		if r.RunID == runID && r.Dimension == dimension {
			result = append(result, r)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Revenue.Equal(result[j].Revenue) {
			return result[i].Revenue.GreaterThan(result[j].Revenue)
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.RevenueAggregateStore = (*RevenueAggregateStore)(nil)
