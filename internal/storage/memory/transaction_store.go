package memory

import (
	"context"
	"sort"
	"sync"

	"sales-analytics/internal/domain"
	"sales-analytics/internal/storage"
)

// TransactionStore is an in-memory implementation of storage.TransactionStore.
type TransactionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Transaction // keyed by transaction_id
}

// NewTransactionStore creates a new in-memory transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		data: make(map[string]*domain.Transaction),
	}
}

// Insert adds one transaction. Returns ErrDuplicateKey if the
// transaction_id already exists.
func (s *TransactionStore) Insert(_ context.Context, t *domain.Transaction) error {
	if t == nil || t.TransactionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TransactionID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	txCopy := *t
	s.data[t.TransactionID] = &txCopy
	return nil
}

// InsertBulk adds transactions in order. Fails on first duplicate.
func (s *TransactionStore) InsertBulk(ctx context.Context, ts []*domain.Transaction) error {
	for _, t := range ts {
		if err := s.Insert(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves one transaction. Returns ErrNotFound if absent.
func (s *TransactionStore) GetByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[transactionID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	txCopy := *t
	return &txCopy, nil
}

// GetAll retrieves all transactions ordered by date ASC, then
// transaction_id ASC.
func (s *TransactionStore) GetAll(_ context.Context) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Transaction, 0, len(s.data))
	for _, t := range s.data {
		txCopy := *t
		result = append(result, &txCopy)
	}
	sortTransactions(result)
	return result, nil
}

// GetByRegion retrieves transactions for one region, same order as GetAll.
func (s *TransactionStore) GetByRegion(_ context.Context, region string) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Transaction
	for _, t := range s.data {
		if t.Region == region {
			txCopy := *t
			result = append(result, &txCopy)
		}
	}
	sortTransactions(result)
	return result, nil
}

// sortTransactions orders by date ASC, transaction_id ASC.
func sortTransactions(ts []*domain.Transaction) {
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].Date.Equal(ts[j].Date) {
			return ts[i].Date.Before(ts[j].Date)
		}
		return ts[i].TransactionID < ts[j].TransactionID
	})
}

// Verify interface compliance at compile time.
var _ storage.TransactionStore = (*TransactionStore)(nil)
