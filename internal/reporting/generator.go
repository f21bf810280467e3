// Package reporting builds and renders run reports from stored data.
package reporting

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"sales-analytics/internal/analytics"
	"sales-analytics/internal/domain"
	"sales-analytics/internal/storage"
)

// Generator produces reports from stored data.
type Generator struct {
	txStore  storage.TransactionStore
	enrStore storage.EnrichedStore
	rejStore storage.RejectionStore

	topN      int
	lowDim    analytics.Dimension
	threshold decimal.Decimal
	now       func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(
	txStore storage.TransactionStore,
	enrStore storage.EnrichedStore,
	rejStore storage.RejectionStore,
) *Generator {
	return &Generator{
		txStore:   txStore,
		enrStore:  enrStore,
		rejStore:  rejStore,
		topN:      analytics.DefaultTopN,
		lowDim:    analytics.DimensionProduct,
		threshold: analytics.DefaultLowShareThreshold,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithTopN sets the ranking cutoff used in the rendered tables.
func (g *Generator) WithTopN(n int) *Generator {
	if n > 0 {
		g.topN = n
	}
	return g
}

// WithLowPerformers sets the low-performer dimension and share threshold.
func (g *Generator) WithLowPerformers(dim analytics.Dimension, threshold decimal.Decimal) *Generator {
	g.lowDim = dim
	g.threshold = threshold
	return g
}

// Generate produces a complete run report.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	txs, err := g.txStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := analytics.Compute(txs)

	enriched, err := g.enrStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	rejCounts, err := g.rejStore.CountByReason(ctx)
	if err != nil {
		return nil, err
	}

	r := &Report{
		GeneratedAt: g.now(),
		Summary: Summary{
			TotalRevenue:      snapshot.TotalRevenue,
			TotalTransactions: snapshot.TotalTransactions,
			AverageOrderValue: snapshot.AverageOrderValue,
			DateRangeStart:    snapshot.DateRangeStart,
			DateRangeEnd:      snapshot.DateRangeEnd,
		},
		LowPerformerDimension: string(g.lowDim),
		LowPerformerThreshold: g.threshold,
		Enrichment:            enrichmentSummary(enriched),
		Rejections:            rejectionSummary(rejCounts),
	}

	for _, rs := range snapshot.PerRegion {
		r.Regions = append(r.Regions, RegionRow{
			Region:   rs.Region,
			Revenue:  rs.Revenue,
			SharePct: rs.SharePct,
			Count:    rs.Count,
		})
	}

	r.TopProductsByRevenue = productRows(snapshot.ProductRanking, g.topN)
	r.TopProductsByQuantity = productRows(rankByQuantity(snapshot.ProductRanking), g.topN)

	for i, c := range snapshot.CustomerRanking {
		if i >= g.topN {
			break
		}
		r.TopCustomers = append(r.TopCustomers, CustomerRow{
			Customer:       c.Customer,
			Revenue:        c.Revenue,
			Purchases:      c.Purchases,
			AvgOrderValue:  c.AvgOrderValue,
			ProductsBought: c.ProductsBought,
		})
	}

	for _, d := range snapshot.DailyTrend {
		r.DailyTrend = append(r.DailyTrend, DailyRow{
			Date:            d.Date,
			Revenue:         d.Revenue,
			Count:           d.Count,
			UniqueCustomers: d.UniqueCustomers,
		})
	}
	if snapshot.PeakDay != nil {
		r.PeakDay = &DailyRow{
			Date:            snapshot.PeakDay.Date,
			Revenue:         snapshot.PeakDay.Revenue,
			Count:           snapshot.PeakDay.Count,
			UniqueCustomers: snapshot.PeakDay.UniqueCustomers,
		}
	}

	for _, lp := range analytics.LowPerformers(snapshot, g.lowDim, g.threshold) {
		r.LowPerformers = append(r.LowPerformers, LowPerformerRow{
			Name:     lp.Name,
			Revenue:  lp.Revenue,
			SharePct: lp.SharePct,
		})
	}

	return r, nil
}

func productRows(stats []domain.ProductStats, topN int) []ProductRow {
	var rows []ProductRow
	for i, p := range stats {
		if i >= topN {
			break
		}
		rows = append(rows, ProductRow{
			Rank:     i + 1,
			Product:  p.Product,
			Quantity: p.Quantity,
			Revenue:  p.Revenue,
		})
	}
	return rows
}

// rankByQuantity re-sorts a product ranking by units sold descending,
// product name ascending on ties.
func rankByQuantity(stats []domain.ProductStats) []domain.ProductStats {
	out := make([]domain.ProductStats, len(stats))
	copy(out, stats)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Product < out[j].Product
	})
	return out
}

func enrichmentSummary(enriched []*domain.EnrichedTransaction) EnrichmentSummary {
	s := EnrichmentSummary{TotalProcessed: len(enriched)}

	unmatched := make(map[string]struct{})
	for _, e := range enriched {
		if e.APIMatch {
			s.Matched++
		} else {
			unmatched[e.Product] = struct{}{}
		}
	}
	for name := range unmatched {
		s.UnmatchedProducts = append(s.UnmatchedProducts, name)
	}
	sort.Strings(s.UnmatchedProducts)

	if s.TotalProcessed > 0 {
		s.SuccessRatePct = decimal.NewFromInt(int64(s.Matched)).
			Div(decimal.NewFromInt(int64(s.TotalProcessed))).
			Mul(decimal.NewFromInt(100)).
			Round(1)
	}
	return s
}

func rejectionSummary(counts map[domain.RejectionReason]int) RejectionSummary {
	s := RejectionSummary{ByReason: counts}
	for _, n := range counts {
		s.Total += n
	}
	return s
}
