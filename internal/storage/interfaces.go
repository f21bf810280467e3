package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"sales-analytics/internal/domain"
)

// TransactionStore holds accepted transactions for a run.
type TransactionStore interface {
	// Insert adds one transaction. Returns ErrDuplicateKey if the
	// transaction_id already exists.
	Insert(ctx context.Context, t *domain.Transaction) error

	// InsertBulk adds transactions in order. Fails on first duplicate.
	InsertBulk(ctx context.Context, ts []*domain.Transaction) error

	// GetByID retrieves one transaction. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// GetAll retrieves all transactions ordered by date ASC, then
	// transaction_id ASC.
	GetAll(ctx context.Context) ([]*domain.Transaction, error)

	// GetByRegion retrieves transactions for one region, same order as GetAll.
	GetByRegion(ctx context.Context, region string) ([]*domain.Transaction, error)
}

// RejectionStore holds rejected lines with their reason codes.
type RejectionStore interface {
	// InsertBulk records rejections in order.
	InsertBulk(ctx context.Context, rs []*domain.Rejection) error

	// GetAll retrieves all rejections in insertion order.
	GetAll(ctx context.Context) ([]*domain.Rejection, error)

	// CountByReason returns rejection counts keyed by reason.
	CountByReason(ctx context.Context) (map[domain.RejectionReason]int, error)
}

// EnrichedStore holds catalog-enriched transactions.
type EnrichedStore interface {
	// InsertBulk records enriched transactions in order.
	InsertBulk(ctx context.Context, es []*domain.EnrichedTransaction) error

	// GetAll retrieves all enriched transactions ordered by date ASC,
	// then transaction_id ASC.
	GetAll(ctx context.Context) ([]*domain.EnrichedTransaction, error)

	// GetUnmatched retrieves enriched transactions without a catalog
	// match, same order as GetAll.
	GetUnmatched(ctx context.Context) ([]*domain.EnrichedTransaction, error)
}

// RunStore records pipeline executions.
type RunStore interface {
	// Insert adds a run record. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.PipelineRun) error

	// GetByID retrieves a run. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, runID string) (*domain.PipelineRun, error)

	// GetAll retrieves all runs ordered by started_at ASC, run_id ASC.
	GetAll(ctx context.Context) ([]*domain.PipelineRun, error)
}

// DailyRevenueStore holds the daily revenue trend of a run.
type DailyRevenueStore interface {
	// InsertBulk adds daily rows for a run.
	InsertBulk(ctx context.Context, runID string, days []domain.DailyStats) error

	// GetByRun retrieves daily rows for a run ordered by date ASC.
	GetByRun(ctx context.Context, runID string) ([]domain.DailyStats, error)
}

// RevenueAggregateRow is one grouped-revenue entry of a run, for the
// region, product, or customer dimension.
type RevenueAggregateRow struct {
	RunID     string
	Dimension string // "region" | "product" | "customer"
	Name      string
	Revenue   decimal.Decimal
	Count     int64
	Quantity  int64 // product dimension only, 0 otherwise
	CreatedAt time.Time
}

// RevenueAggregateStore holds grouped revenue rows of a run.
type RevenueAggregateStore interface {
	// InsertBulk adds aggregate rows for a run.
	InsertBulk(ctx context.Context, rows []RevenueAggregateRow) error

	// GetByRunAndDimension retrieves rows for one run and dimension,
	// ordered by revenue DESC, name ASC.
	GetByRunAndDimension(ctx context.Context, runID, dimension string) ([]RevenueAggregateRow, error)
}
