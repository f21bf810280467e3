package clickhouse

import (
	"context"
	"fmt"
	"time"

	"sales-analytics/internal/storage"
)

// RevenueAggregateStore implements storage.RevenueAggregateStore using ClickHouse.
type RevenueAggregateStore struct {
	conn *Conn
}

// NewRevenueAggregateStore creates a new RevenueAggregateStore.
func NewRevenueAggregateStore(conn *Conn) *RevenueAggregateStore {
	return &RevenueAggregateStore{conn: conn}
}

// Compile-time interface check.
var _ storage.RevenueAggregateStore = (*RevenueAggregateStore)(nil)

// InsertBulk adds aggregate rows for a run.
func (s *RevenueAggregateStore) InsertBulk(ctx context.Context, rows []storage.RevenueAggregateRow) error {
	if len(rows) == 0 {
		return nil
	}
	for _, r := range rows {
		if r.RunID == "" || r.Dimension == "" || r.Name == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO revenue_aggregates (
			run_id, dimension, name, revenue, transaction_count, quantity
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.RunID, r.Dimension, r.Name, r.Revenue, uint64(r.Count), uint64(r.Quantity),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByRunAndDimension retrieves rows for one run and dimension,
// ordered by revenue DESC, name ASC.
func (s *RevenueAggregateStore) GetByRunAndDimension(ctx context.Context, runID, dimension string) ([]storage.RevenueAggregateRow, error) {
	query := `
		SELECT run_id, dimension, name, revenue, transaction_count, quantity, created_at
		FROM revenue_aggregates
		WHERE run_id = ? AND dimension = ?
		ORDER BY revenue DESC, name ASC
	`

	rows, err := s.conn.Query(ctx, query, runID, dimension)
	if err != nil {
		return nil, fmt.Errorf("query revenue aggregates: %w", err)
	}
	defer rows.Close()

	var result []storage.RevenueAggregateRow
	for rows.Next() {
		var (
			r         storage.RevenueAggregateRow
			count     uint64
			quantity  uint64
			createdAt time.Time
		)
		if err := rows.Scan(&r.RunID, &r.Dimension, &r.Name, &r.Revenue, &count, &quantity, &createdAt); err != nil {
			return nil, fmt.Errorf("scan revenue aggregate: %w", err)
		}
		r.Count = int64(count)
		r.Quantity = int64(quantity)
		r.CreatedAt = createdAt
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revenue aggregates: %w", err)
	}
	return result, nil
}
