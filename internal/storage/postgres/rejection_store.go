package postgres

import (
	"context"
	"fmt"

	"sales-analytics/internal/domain"
	"sales-analytics/internal/storage"
)

// RejectionStore implements storage.RejectionStore using PostgreSQL.
type RejectionStore struct {
	pool *Pool
}

// NewRejectionStore creates a new RejectionStore.
func NewRejectionStore(pool *Pool) *RejectionStore {
	return &RejectionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RejectionStore = (*RejectionStore)(nil)

// InsertBulk records rejections in order.
func (s *RejectionStore) InsertBulk(ctx context.Context, rs []*domain.Rejection) error {
	query := `INSERT INTO rejections (line, reason) VALUES ($1, $2)`

	for _, r := range rs {
		if r == nil || r.Reason == "" {
			return storage.ErrInvalidInput
		}
		if _, err := s.pool.Exec(ctx, query, r.Line, string(r.Reason)); err != nil {
			return fmt.Errorf("insert rejection: %w", err)
		}
	}
	return nil
}

// GetAll retrieves all rejections in insertion order.
func (s *RejectionStore) GetAll(ctx context.Context) ([]*domain.Rejection, error) {
	query := `SELECT line, reason FROM rejections ORDER BY id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all rejections: %w", err)
	}
	defer rows.Close()

	var result []*domain.Rejection
	for rows.Next() {
		var (
			r      domain.Rejection
			reason string
		)
		if err := rows.Scan(&r.Line, &reason); err != nil {
			return nil, fmt.Errorf("scan rejection: %w", err)
		}
		r.Reason = domain.RejectionReason(reason)
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rejections: %w", err)
	}
	return result, nil
}

// CountByReason returns rejection counts keyed by reason.
func (s *RejectionStore) CountByReason(ctx context.Context) (map[domain.RejectionReason]int, error) {
	query := `SELECT reason, COUNT(*) FROM rejections GROUP BY reason`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count rejections: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.RejectionReason]int)
	for rows.Next() {
		var (
			reason string
			count  int
		)
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, fmt.Errorf("scan rejection count: %w", err)
		}
		counts[domain.RejectionReason(reason)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rejection counts: %w", err)
	}
	return counts, nil
}
