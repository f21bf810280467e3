package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candidate is a raw parsed record before validation.
// All fields are still in string form exactly as they appeared on the
// input line; the Validator owns cleaning and type coercion.
type Candidate struct {
	Line          string // original raw line, kept for rejection reporting
	TransactionID string
	Date          string
	Region        string
	Customer      string
	Product       string
	Quantity      string
	UnitPrice     string
	LineTotal     string
}

// Transaction represents a fully validated sales record.
// Immutable after creation; LineTotal is always recomputed as
// round(Quantity * UnitPrice, 2) and never taken from the input.
type Transaction struct {
	TransactionID string
	Date          time.Time // calendar date, UTC midnight
	Region        string
	Customer      string
	Product       string // embedded commas rewritten to spaces
	Quantity      int64
	UnitPrice     decimal.Decimal
	LineTotal     decimal.Decimal
}

// EnrichedTransaction is a Transaction plus catalog attributes.
// The unmatched state (APIMatch=false, nil fields) is a valid outcome,
// not an error.
type EnrichedTransaction struct {
	Transaction

	APICategory *string
	APIBrand    *string
	APIRating   *float64
	APIMatch    bool
}
