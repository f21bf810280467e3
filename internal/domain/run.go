package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Run status values.
const (
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"
)

// PipelineRun records one batch execution for audit and reporting.
type PipelineRun struct {
	RunID         string // uuid
	StartedAt     time.Time
	FinishedAt    time.Time
	Status        string
	InputLines    int
	Accepted      int
	Rejected      int
	Enriched      int // records with a catalog match
	CatalogSize   int // entries fetched from the catalog, 0 when unavailable
	TotalRevenue  decimal.Decimal
	FilterApplied bool
}

// FilterConfig is the optional post-validation filter. It replaces the
// original interactive prompt: callers decide the values up front and
// the pipeline applies them without any I/O.
type FilterConfig struct {
	Region    string // empty = no region filter
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// Enabled reports whether any filter dimension is set.
func (f FilterConfig) Enabled() bool {
	return f.Region != "" || f.MinAmount != nil || f.MaxAmount != nil
}

// Matches reports whether a transaction passes the filter.
// The amount compared is the recomputed line total.
func (f FilterConfig) Matches(t *Transaction) bool {
	if f.Region != "" && t.Region != f.Region {
		return false
	}
	if f.MinAmount != nil && t.LineTotal.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && t.LineTotal.GreaterThan(*f.MaxAmount) {
		return false
	}
	return true
}
