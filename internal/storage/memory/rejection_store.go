package memory

import (
	"context"
	"sync"

	"sales-analytics/internal/domain"
	"sales-analytics/internal/storage"
)

// RejectionStore is an in-memory implementation of storage.RejectionStore.
// Rejections have no natural key, so insertion order is preserved.
type RejectionStore struct {
	mu   sync.RWMutex
	data []*domain.Rejection
}

// NewRejectionStore creates a new in-memory rejection store.
func NewRejectionStore() *RejectionStore {
	return &RejectionStore{}
}

// InsertBulk records rejections in order.
func (s *RejectionStore) InsertBulk(_ context.Context, rs []*domain.Rejection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rs {
		if r == nil || r.Reason == "" {
			return storage.ErrInvalidInput
		}
		rejCopy := *r
		s.data = append(s.data, &rejCopy)
	}
	return nil
}

// GetAll retrieves all rejections in insertion order.
func (s *RejectionStore) GetAll(_ context.Context) ([]*domain.Rejection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Rejection, len(s.data))
	for i, r := range s.data {
		rejCopy := *r
		result[i] = &rejCopy
	}
	return result, nil
}

// CountByReason returns rejection counts keyed by reason.
func (s *RejectionStore) CountByReason(_ context.Context) (map[domain.RejectionReason]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.RejectionReason]int)
	for _, r := range s.data {
		counts[r.Reason]++
	}
	return counts, nil
}

// Verify interface compliance at compile time.
var _ storage.RejectionStore = (*RejectionStore)(nil)
