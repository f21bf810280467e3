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

// TransactionStore implements storage.TransactionStore using PostgreSQL.
type TransactionStore struct {
	pool *Pool
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(pool *Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

// Insert adds one transaction. Returns ErrDuplicateKey if the
// transaction_id already exists.
func (s *TransactionStore) Insert(ctx context.Context, t *domain.Transaction) error {
	if t == nil || t.TransactionID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO transactions (
			transaction_id, date, region, customer, product, quantity, unit_price, line_total
		) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric)
	`

	_, err := s.pool.Exec(ctx, query,
		t.TransactionID,
		t.Date,
		t.Region,
		t.Customer,
		t.Product,
		t.Quantity,
		t.UnitPrice.String(),
		t.LineTotal.String(),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
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

const transactionColumns = `
	transaction_id, date, region, customer, product, quantity, unit_price::text, line_total::text
`

// GetByID retrieves one transaction. Returns ErrNotFound if absent.
func (s *TransactionStore) GetByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`

	row := s.pool.QueryRow(ctx, query, transactionID)
	t, err := scanTransaction(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

// GetAll retrieves all transactions ordered by date ASC, then
// transaction_id ASC.
func (s *TransactionStore) GetAll(ctx context.Context) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY date ASC, transaction_id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetByRegion retrieves transactions for one region, same order as GetAll.
func (s *TransactionStore) GetByRegion(ctx context.Context, region string) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE region = $1 ORDER BY date ASC, transaction_id ASC`

	rows, err := s.pool.Query(ctx, query, region)
	if err != nil {
		return nil, fmt.Errorf("get transactions by region: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// rowScanner abstracts pgx.Row and pgx.Rows for scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTransaction scans one row in transactionColumns order.
// Numerics travel as text to keep decimal values exact.
func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		t         domain.Transaction
		date      time.Time
		unitPrice string
		lineTotal string
	)

	if err := row.Scan(
		&t.TransactionID,
		&date,
		&t.Region,
		&t.Customer,
		&t.Product,
		&t.Quantity,
		&unitPrice,
		&lineTotal,
	); err != nil {
		return nil, err
	}

	t.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	var err error
	if t.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
		return nil, fmt.Errorf("parse unit_price: %w", err)
	}
	if t.LineTotal, err = decimal.NewFromString(lineTotal); err != nil {
		return nil, fmt.Errorf("parse line_total: %w", err)
	}
	return &t, nil
}

// scanTransactions scans all rows.
func scanTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var result []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return result, nil
}
