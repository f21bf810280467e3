package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"sales-analytics/internal/domain"
	"sales-analytics/internal/storage"
)

// EnrichedStore implements storage.EnrichedStore using PostgreSQL.
type EnrichedStore struct {
	pool *Pool
}

// NewEnrichedStore creates a new EnrichedStore.
func NewEnrichedStore(pool *Pool) *EnrichedStore {
	return &EnrichedStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EnrichedStore = (*EnrichedStore)(nil)

// InsertBulk records enriched transactions in order. Fails on first duplicate.
func (s *EnrichedStore) InsertBulk(ctx context.Context, es []*domain.EnrichedTransaction) error {
	query := `
		INSERT INTO enriched_transactions (
			transaction_id, date, region, customer, product, quantity,
			unit_price, line_total, api_category, api_brand, api_rating, api_match
		) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9, $10, $11, $12)
	`

	for _, e := range es {
		if e == nil || e.TransactionID == "" {
			return storage.ErrInvalidInput
		}
		_, err := s.pool.Exec(ctx, query,
			e.TransactionID,
			e.Date,
			e.Region,
			e.Customer,
			e.Product,
			e.Quantity,
			e.UnitPrice.String(),
			e.LineTotal.String(),
			e.APICategory,
			e.APIBrand,
			e.APIRating,
			e.APIMatch,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert enriched transaction: %w", err)
		}
	}
	return nil
}

const enrichedColumns = `
	transaction_id, date, region, customer, product, quantity,
	unit_price::text, line_total::text, api_category, api_brand, api_rating, api_match
`

// GetAll retrieves all enriched transactions ordered by date ASC, then
// transaction_id ASC.
func (s *EnrichedStore) GetAll(ctx context.Context) ([]*domain.EnrichedTransaction, error) {
	query := `SELECT ` + enrichedColumns + ` FROM enriched_transactions ORDER BY date ASC, transaction_id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all enriched transactions: %w", err)
	}
	defer rows.Close()

	return scanEnriched(rows)
}

// GetUnmatched retrieves enriched transactions without a catalog match.
func (s *EnrichedStore) GetUnmatched(ctx context.Context) ([]*domain.EnrichedTransaction, error) {
	query := `SELECT ` + enrichedColumns + ` FROM enriched_transactions WHERE NOT api_match ORDER BY date ASC, transaction_id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get unmatched enriched transactions: %w", err)
	}
	defer rows.Close()

	return scanEnriched(rows)
}

// scanEnriched scans all rows in enrichedColumns order.
func scanEnriched(rows pgx.Rows) ([]*domain.EnrichedTransaction, error) {
	var result []*domain.EnrichedTransaction
	for rows.Next() {
		var (
			e         domain.EnrichedTransaction
			date      time.Time
			unitPrice string
			lineTotal string
		)
		if err := rows.Scan(
			&e.TransactionID,
			&date,
			&e.Region,
			&e.Customer,
			&e.Product,
			&e.Quantity,
			&unitPrice,
			&lineTotal,
			&e.APICategory,
			&e.APIBrand,
			&e.APIRating,
			&e.APIMatch,
		); err != nil {
			return nil, fmt.Errorf("scan enriched transaction: %w", err)
		}

		e.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

		var err error
		if e.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("parse unit_price: %w", err)
		}
		if e.LineTotal, err = decimal.NewFromString(lineTotal); err != nil {
			return nil, fmt.Errorf("parse line_total: %w", err)
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enriched transactions: %w", err)
	}
	return result, nil
}
