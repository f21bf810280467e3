package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"sales-analytics/internal/domain"
	"sales-analytics/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a run record. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.PipelineRun) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO pipeline_runs (
			run_id, started_at, finished_at, status, input_lines, accepted,
			rejected, enriched, catalog_size, total_revenue, filter_applied
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::numeric, $11)
	`

	_, err := s.pool.Exec(ctx, query,
		r.RunID,
		r.StartedAt,
		r.FinishedAt,
		r.Status,
		r.InputLines,
		r.Accepted,
		r.Rejected,
		r.Enriched,
		r.CatalogSize,
		r.TotalRevenue.String(),
		r.FilterApplied,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert pipeline run: %w", err)
	}
	return nil
}

const runColumns = `
	run_id, started_at, finished_at, status, input_lines, accepted,
	rejected, enriched, catalog_size, total_revenue::text, filter_applied
`

// GetByID retrieves a run. Returns ErrNotFound if absent.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.PipelineRun, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs WHERE run_id = $1`

	row := s.pool.QueryRow(ctx, query, runID)
	r, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get run by id: %w", err)
	}
	return r, nil
}

// GetAll retrieves all runs ordered by started_at ASC, run_id ASC.
func (s *RunStore) GetAll(ctx context.Context) ([]*domain.PipelineRun, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs ORDER BY started_at ASC, run_id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all runs: %w", err)
	}
	defer rows.Close()

	var result []*domain.PipelineRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return result, nil
}

// scanRun scans one row in runColumns order.
func scanRun(row rowScanner) (*domain.PipelineRun, error) {
	var (
		r            domain.PipelineRun
		totalRevenue string
	)
	if err := row.Scan(
		&r.RunID,
		&r.StartedAt,
		&r.FinishedAt,
		&r.Status,
		&r.InputLines,
		&r.Accepted,
		&r.Rejected,
		&r.Enriched,
		&r.CatalogSize,
		&totalRevenue,
		&r.FilterApplied,
	); err != nil {
		return nil, err
	}

	var err error
	if r.TotalRevenue, err = decimal.NewFromString(totalRevenue); err != nil {
		return nil, fmt.Errorf("parse total_revenue: %w", err)
	}
	return &r, nil
}
