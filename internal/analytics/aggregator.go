package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"sales-analytics/internal/domain"
)

// DefaultTopN is the ranking cutoff used by report renderers.
// Compute always exposes the full ranked lists.
const DefaultTopN = 5

// DefaultLowShareThreshold is the revenue-share fraction below which
// an entity counts as a low performer. Fixed across runs.
var DefaultLowShareThreshold = decimal.NewFromFloat(0.05)

// Dimension selects a grouped-revenue entity type. LowPerformers
// supports the region and product dimensions.
type Dimension string

const (
	DimensionRegion   Dimension = "region"
	DimensionProduct  Dimension = "product"
	DimensionCustomer Dimension = "customer"
)

// Compute derives the full AnalyticsSnapshot from an accepted set.
// Deterministic and input-order independent: every ranking is fully
// ordered by revenue descending with name ascending on ties, and the
// daily trend chronologically. An empty set yields the zero snapshot
// with a nil PeakDay.
func Compute(transactions []*domain.Transaction) *domain.AnalyticsSnapshot {
	s := &domain.AnalyticsSnapshot{
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		TotalTransactions: len(transactions),
	}
	if len(transactions) == 0 {
		return s
	}

	type regionAcc struct {
		revenue decimal.Decimal
		count   int
	}
	type productAcc struct {
		revenue  decimal.Decimal
		quantity int64
	}
	type customerAcc struct {
		revenue  decimal.Decimal
		count    int
		products map[string]struct{}
	}
	type dayAcc struct {
		revenue   decimal.Decimal
		count     int
		customers map[string]struct{}
	}

	regions := make(map[string]*regionAcc)
	products := make(map[string]*productAcc)
	customers := make(map[string]*customerAcc)
	days := make(map[string]*dayAcc) // keyed by date string for map stability

	for _, t := range transactions {
		s.TotalRevenue = s.TotalRevenue.Add(t.LineTotal)

		if s.DateRangeStart.IsZero() || t.Date.Before(s.DateRangeStart) {
			s.DateRangeStart = t.Date
		}
		if t.Date.After(s.DateRangeEnd) {
			s.DateRangeEnd = t.Date
		}

		r := regions[t.Region]
		if r == nil {
			r = &regionAcc{revenue: decimal.Zero}
			regions[t.Region] = r
		}
		r.revenue = r.revenue.Add(t.LineTotal)
		r.count++

		p := products[t.Product]
		if p == nil {
			p = &productAcc{revenue: decimal.Zero}
			products[t.Product] = p
		}
		p.revenue = p.revenue.Add(t.LineTotal)
		p.quantity += t.Quantity

		c := customers[t.Customer]
		if c == nil {
			c = &customerAcc{revenue: decimal.Zero, products: make(map[string]struct{})}
			customers[t.Customer] = c
		}
		c.revenue = c.revenue.Add(t.LineTotal)
		c.count++
		c.products[t.Product] = struct{}{}

		dayKey := t.Date.Format("2006-01-02")
		d := days[dayKey]
		if d == nil {
			d = &dayAcc{revenue: decimal.Zero, customers: make(map[string]struct{})}
			days[dayKey] = d
		}
		d.revenue = d.revenue.Add(t.LineTotal)
		d.count++
		d.customers[t.Customer] = struct{}{}
	}

	s.AverageOrderValue = s.TotalRevenue.
		Div(decimal.NewFromInt(int64(len(transactions)))).
		Round(2)

	// Regions: revenue desc, name asc.
	for name, acc := range regions {
		s.PerRegion = append(s.PerRegion, domain.RegionStats{
			Region:   name,
			Revenue:  acc.revenue,
			Count:    acc.count,
			SharePct: sharePct(acc.revenue, s.TotalRevenue),
		})
	}
	sort.Slice(s.PerRegion, func(i, j int) bool {
		if !s.PerRegion[i].Revenue.Equal(s.PerRegion[j].Revenue) {
			return s.PerRegion[i].Revenue.GreaterThan(s.PerRegion[j].Revenue)
		}
		return s.PerRegion[i].Region < s.PerRegion[j].Region
	})

	// Products: revenue desc, name asc.
	for name, acc := range products {
		s.ProductRanking = append(s.ProductRanking, domain.ProductStats{
			Product:  name,
			Quantity: acc.quantity,
			Revenue:  acc.revenue,
		})
	}
	sort.Slice(s.ProductRanking, func(i, j int) bool {
		if !s.ProductRanking[i].Revenue.Equal(s.ProductRanking[j].Revenue) {
			return s.ProductRanking[i].Revenue.GreaterThan(s.ProductRanking[j].Revenue)
		}
		return s.ProductRanking[i].Product < s.ProductRanking[j].Product
	})

	// Customers: revenue desc, name asc.
	for name, acc := range customers {
		bought := make([]string, 0, len(acc.products))
		for p := range acc.products {
			bought = append(bought, p)
		}
		sort.Strings(bought)

		s.CustomerRanking = append(s.CustomerRanking, domain.CustomerStats{
			Customer:       name,
			Revenue:        acc.revenue,
			Purchases:      acc.count,
			AvgOrderValue:  acc.revenue.Div(decimal.NewFromInt(int64(acc.count))).Round(2),
			ProductsBought: bought,
		})
	}
	sort.Slice(s.CustomerRanking, func(i, j int) bool {
		if !s.CustomerRanking[i].Revenue.Equal(s.CustomerRanking[j].Revenue) {
			return s.CustomerRanking[i].Revenue.GreaterThan(s.CustomerRanking[j].Revenue)
		}
		return s.CustomerRanking[i].Customer < s.CustomerRanking[j].Customer
	})

	// Daily trend: chronological.
	dayKeys := make([]string, 0, len(days))
	for k := range days {
		dayKeys = append(dayKeys, k)
	}
	sort.Strings(dayKeys)
	for _, k := range dayKeys {
		acc := days[k]
		date, _ := timeFromDayKey(k)
		s.DailyTrend = append(s.DailyTrend, domain.DailyStats{
			Date:            date,
			Revenue:         acc.revenue,
			Count:           acc.count,
			UniqueCustomers: len(acc.customers),
		})
	}

	// Peak day: max revenue, earliest date on ties. DailyTrend is
	// already chronological, so strict GreaterThan keeps the earliest.
	for i := range s.DailyTrend {
		if s.PeakDay == nil || s.DailyTrend[i].Revenue.GreaterThan(s.PeakDay.Revenue) {
			peak := s.DailyTrend[i]
			s.PeakDay = &peak
		}
	}

	return s
}

// LowPerformers returns entities of the chosen dimension whose revenue
// share falls below threshold (a fraction of total revenue), ordered
// by revenue ascending with name ascending on ties.
func LowPerformers(s *domain.AnalyticsSnapshot, dim Dimension, threshold decimal.Decimal) []domain.LowPerformer {
	if s.TotalRevenue.IsZero() {
		return nil
	}
	cutoff := s.TotalRevenue.Mul(threshold)

	var out []domain.LowPerformer
	add := func(name string, revenue decimal.Decimal) {
		if revenue.LessThan(cutoff) {
			out = append(out, domain.LowPerformer{
				Name:     name,
				Revenue:  revenue,
				SharePct: sharePct(revenue, s.TotalRevenue),
			})
		}
	}

	switch dim {
	case DimensionProduct:
		for _, p := range s.ProductRanking {
			add(p.Product, p.Revenue)
		}
	default:
		for _, r := range s.PerRegion {
			add(r.Region, r.Revenue)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.LessThan(out[j].Revenue)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// timeFromDayKey parses a "2006-01-02" map key back to a UTC date.
func timeFromDayKey(k string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", k, time.UTC)
}

// sharePct computes revenue / total * 100 rounded to 2 decimals.
func sharePct(revenue, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return revenue.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
}
