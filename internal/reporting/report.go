package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"sales-analytics/internal/domain"
)

// Report is the full run report structure consumed by the renderers.
type Report struct {
	// Metadata
	GeneratedAt time.Time

	Summary Summary

	// Regions is ranked by revenue descending, region name ascending on ties.
	Regions []RegionRow

	// TopProductsByQuantity holds the top-N products by units sold.
	// TopProductsByRevenue holds the top-N by revenue.
	TopProductsByQuantity []ProductRow
	TopProductsByRevenue  []ProductRow

	// TopCustomers is ranked by total spent descending.
	TopCustomers []CustomerRow

	// DailyTrend is ordered chronologically. PeakDay is nil when there
	// is no data.
	DailyTrend []DailyRow
	PeakDay    *DailyRow

	// LowPerformers lists entities below the revenue-share threshold,
	// ordered by revenue ascending.
	LowPerformers         []LowPerformerRow
	LowPerformerDimension string
	LowPerformerThreshold decimal.Decimal

	Enrichment EnrichmentSummary
	Rejections RejectionSummary
}

// Summary contains the overall totals.
type Summary struct {
	TotalRevenue      decimal.Decimal
	TotalTransactions int
	AverageOrderValue decimal.Decimal
	DateRangeStart    time.Time
	DateRangeEnd      time.Time
}

// RegionRow is one row of the region performance table.
type RegionRow struct {
	Region   string
	Revenue  decimal.Decimal
	SharePct decimal.Decimal
	Count    int
}

// ProductRow is one row of a product ranking table.
type ProductRow struct {
	Rank     int
	Product  string
	Quantity int64
	Revenue  decimal.Decimal
}

// CustomerRow is one row of the customer analysis table.
type CustomerRow struct {
	Customer       string
	Revenue        decimal.Decimal
	Purchases      int
	AvgOrderValue  decimal.Decimal
	ProductsBought []string
}

// DailyRow is one row of the daily trend table.
type DailyRow struct {
	Date            time.Time
	Revenue         decimal.Decimal
	Count           int
	UniqueCustomers int
}

// LowPerformerRow is one entity below the revenue-share threshold.
type LowPerformerRow struct {
	Name     string
	Revenue  decimal.Decimal
	SharePct decimal.Decimal
}

// EnrichmentSummary describes catalog match results.
type EnrichmentSummary struct {
	TotalProcessed    int
	Matched           int
	SuccessRatePct    decimal.Decimal // 1dp
	UnmatchedProducts []string        // distinct, sorted ascending
}

// RejectionSummary counts excluded records by reason.
type RejectionSummary struct {
	Total    int
	ByReason map[domain.RejectionReason]int
}
