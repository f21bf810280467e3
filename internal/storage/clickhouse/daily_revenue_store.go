package clickhouse

import (
	"context"
	"fmt"
	"time"

	"sales-analytics/internal/domain"
	"sales-analytics/internal/storage"
)

// DailyRevenueStore implements storage.DailyRevenueStore using ClickHouse.
type DailyRevenueStore struct {
	conn *Conn
}

// NewDailyRevenueStore creates a new DailyRevenueStore.
func NewDailyRevenueStore(conn *Conn) *DailyRevenueStore {
	return &DailyRevenueStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DailyRevenueStore = (*DailyRevenueStore)(nil)

// InsertBulk adds daily rows for a run.
func (s *DailyRevenueStore) InsertBulk(ctx context.Context, runID string, days []domain.DailyStats) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(days) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO daily_revenue (
			run_id, date, revenue, transaction_count, unique_customers
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, d := range days {
		err = batch.Append(
			runID, d.Date, d.Revenue, uint32(d.Count), uint32(d.UniqueCustomers),
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

// GetByRun retrieves daily rows for a run ordered by date ASC.
func (s *DailyRevenueStore) GetByRun(ctx context.Context, runID string) ([]domain.DailyStats, error) {
	query := `
		SELECT date, revenue, transaction_count, unique_customers
		FROM daily_revenue
		WHERE run_id = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query daily revenue: %w", err)
	}
	defer rows.Close()

	var result []domain.DailyStats
	for rows.Next() {
		var (
			d         domain.DailyStats
			date      time.Time
			count     uint32
			customers uint32
		)
		if err := rows.Scan(&date, &d.Revenue, &count, &customers); err != nil {
			return nil, fmt.Errorf("scan daily revenue: %w", err)
		}
		d.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		d.Count = int(count)
		d.UniqueCustomers = int(customers)
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily revenue: %w", err)
	}
	return result, nil
}
