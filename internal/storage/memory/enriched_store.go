package memory

import (
	"context"
	"sort"
	"sync"

	"sales-analytics/internal/domain"
	"sales-analytics/internal/storage"
)

// EnrichedStore is an in-memory implementation of storage.EnrichedStore.
type EnrichedStore struct {
	mu   sync.RWMutex
	data map[string]*domain.EnrichedTransaction // keyed by transaction_id
}

// NewEnrichedStore creates a new in-memory enriched-transaction store.
func NewEnrichedStore() *EnrichedStore {
	return &EnrichedStore{
		data: make(map[string]*domain.EnrichedTransaction),
	}
}

// InsertBulk records enriched transactions in order. Fails on first duplicate.
func (s *EnrichedStore) InsertBulk(_ context.Context, es []*domain.EnrichedTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range es {
		if e == nil || e.TransactionID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[e.TransactionID]; exists {
			return storage.ErrDuplicateKey
		}
		enrCopy := *e
		s.data[e.TransactionID] = &enrCopy
	}
	return nil
}

// GetAll retrieves all enriched transactions ordered by date ASC, then
// transaction_id ASC.
func (s *EnrichedStore) GetAll(_ context.Context) ([]*domain.EnrichedTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.EnrichedTransaction, 0, len(s.data))
	for _, e := range s.data {
		enrCopy := *e
		result = append(result, &enrCopy)
	}
	sortEnriched(result)
	return result, nil
}

// GetUnmatched retrieves enriched transactions without a catalog match.
func (s *EnrichedStore) GetUnmatched(_ context.Context) ([]*domain.EnrichedTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.EnrichedTransaction
	for _, e := range s.data {
		if !e.APIMatch {
			enrCopy := *e
			result = append(result, &enrCopy)
		}
	}
	sortEnriched(result)
	return result, nil
}

// sortEnriched orders by date ASC, transaction_id ASC.
func sortEnriched(es []*domain.EnrichedTransaction) {
	sort.Slice(es, func(i, j int) bool {
		if !es[i].Date.Equal(es[j].Date) {
			return es[i].Date.Before(es[j].Date)
		}
		return es[i].TransactionID < es[j].TransactionID
	})
}

// Verify interface compliance at compile time.
var _ storage.EnrichedStore = (*EnrichedStore)(nil)
