package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnalyticsSnapshot holds every analytics view computed from one
// accepted-transaction set. Derived once per run, read-only after;
// recomputed from scratch whenever the accepted set changes.
type AnalyticsSnapshot struct {
	TotalRevenue      decimal.Decimal
	TotalTransactions int
	AverageOrderValue decimal.Decimal

	// Date range of the accepted set. Zero values when no data.
	DateRangeStart time.Time
	DateRangeEnd   time.Time

	// PerRegion is ranked by revenue descending, region name ascending on ties.
	PerRegion []RegionStats

	// ProductRanking and CustomerRanking are full ranked lists, revenue
	// descending with name ascending on ties. Callers truncate to top-N.
	ProductRanking  []ProductStats
	CustomerRanking []CustomerStats

	// DailyTrend is ordered chronologically.
	DailyTrend []DailyStats

	// PeakDay is the date with maximum revenue, earliest date on ties.
	// Nil when the accepted set is empty (explicit no-data state).
	PeakDay *DailyStats
}

// RegionStats aggregates revenue for one region.
type RegionStats struct {
	Region   string
	Revenue  decimal.Decimal
	Count    int
	SharePct decimal.Decimal // revenue / total_revenue * 100, 2dp
}

// ProductStats aggregates revenue and quantity for one product.
type ProductStats struct {
	Product  string
	Quantity int64
	Revenue  decimal.Decimal
}

// CustomerStats aggregates purchasing behavior for one customer.
type CustomerStats struct {
	Customer       string
	Revenue        decimal.Decimal
	Purchases      int
	AvgOrderValue  decimal.Decimal
	ProductsBought []string // distinct, sorted ascending
}

// DailyStats aggregates revenue for one calendar date.
type DailyStats struct {
	Date            time.Time
	Revenue         decimal.Decimal
	Count           int
	UniqueCustomers int
}

// LowPerformer is an entity whose revenue share fell below the
// configured fraction of total revenue.
type LowPerformer struct {
	Name     string
	Revenue  decimal.Decimal
	SharePct decimal.Decimal
}
