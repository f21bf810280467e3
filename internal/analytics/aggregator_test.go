package analytics

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sales-analytics/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tx(id string, date time.Time, region, customer, product string, qty int64, price string) *domain.Transaction {
	p := decimal.RequireFromString(price)
	return &domain.Transaction{
		TransactionID: id,
		Date:          date,
		Region:        region,
		Customer:      customer,
		Product:       product,
		Quantity:      qty,
		UnitPrice:     p,
		LineTotal:     p.Mul(decimal.NewFromInt(qty)).Round(2),
	}
}

func sampleSet() []*domain.Transaction {
	return []*domain.Transaction{
		tx("T1", day(2026, 1, 1), "North", "Alice", "Widget Pro", 2, "10.00"),
		tx("T2", day(2026, 1, 1), "South", "Bob", "Gadget", 1, "5.00"),
		tx("T3", day(2026, 1, 2), "North", "Alice", "Gadget", 3, "5.00"),
		tx("T4", day(2026, 1, 2), "East", "Carol", "Widget Pro", 1, "10.00"),
		tx("T5", day(2026, 1, 3), "North", "Bob", "Doohickey", 4, "2.50"),
	}
}

func TestCompute_Totals(t *testing.T) {
	s := Compute(sampleSet())

	// 20 + 5 + 15 + 10 + 10 = 60
	if s.TotalRevenue.String() != "60" {
		t.Errorf("expected total revenue 60, got %s", s.TotalRevenue)
	}
	if s.TotalTransactions != 5 {
		t.Errorf("expected 5 transactions, got %d", s.TotalTransactions)
	}
	if s.AverageOrderValue.String() != "12" {
		t.Errorf("expected AOV 12, got %s", s.AverageOrderValue)
	}
	if !s.DateRangeStart.Equal(day(2026, 1, 1)) || !s.DateRangeEnd.Equal(day(2026, 1, 3)) {
		t.Errorf("unexpected date range: %v to %v", s.DateRangeStart, s.DateRangeEnd)
	}
}

func TestCompute_RegionSumEqualsTotal(t *testing.T) {
	s := Compute(sampleSet())

	sum := decimal.Zero
	for _, r := range s.PerRegion {
		sum = sum.Add(r.Revenue)
	}
	if !sum.Equal(s.TotalRevenue) {
		t.Errorf("region sum %s != total %s", sum, s.TotalRevenue)
	}
}

func TestCompute_RegionRanking(t *testing.T) {
	s := Compute(sampleSet())

	// North 45, East 10, South 5.
	want := []string{"North", "East", "South"}
	for i, r := range s.PerRegion {
		if r.Region != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], r.Region)
		}
	}
	if s.PerRegion[0].SharePct.String() != "75" {
		t.Errorf("expected North share 75, got %s", s.PerRegion[0].SharePct)
	}
	if s.PerRegion[0].Count != 3 {
		t.Errorf("expected North count 3, got %d", s.PerRegion[0].Count)
	}
}

func TestCompute_RevenueTieBreaksByName(t *testing.T) {
	set := []*domain.Transaction{
		tx("T1", day(2026, 1, 1), "West", "Zoe", "Bravo", 1, "10.00"),
		tx("T2", day(2026, 1, 1), "East", "Amy", "Alpha", 1, "10.00"),
	}
	s := Compute(set)

	if s.PerRegion[0].Region != "East" || s.PerRegion[1].Region != "West" {
		t.Errorf("expected East before West on tie, got %s, %s",
			s.PerRegion[0].Region, s.PerRegion[1].Region)
	}
	if s.ProductRanking[0].Product != "Alpha" {
		t.Errorf("expected Alpha first on tie, got %s", s.ProductRanking[0].Product)
	}
	if s.CustomerRanking[0].Customer != "Amy" {
		t.Errorf("expected Amy first on tie, got %s", s.CustomerRanking[0].Customer)
	}
}

func TestCompute_CustomerAnalysis(t *testing.T) {
	s := Compute(sampleSet())

	// Alice: 20 + 15 = 35 over 2 purchases.
	top := s.CustomerRanking[0]
	if top.Customer != "Alice" {
		t.Fatalf("expected Alice on top, got %s", top.Customer)
	}
	if top.Revenue.String() != "35" || top.Purchases != 2 {
		t.Errorf("unexpected Alice stats: %s over %d", top.Revenue, top.Purchases)
	}
	if top.AvgOrderValue.String() != "17.5" {
		t.Errorf("expected Alice AOV 17.5, got %s", top.AvgOrderValue)
	}
	if !reflect.DeepEqual(top.ProductsBought, []string{"Gadget", "Widget Pro"}) {
		t.Errorf("unexpected products bought: %v", top.ProductsBought)
	}
}

func TestCompute_DailyTrendAndPeakDay(t *testing.T) {
	s := Compute(sampleSet())

	if len(s.DailyTrend) != 3 {
		t.Fatalf("expected 3 days, got %d", len(s.DailyTrend))
	}
	for i := 1; i < len(s.DailyTrend); i++ {
		if !s.DailyTrend[i-1].Date.Before(s.DailyTrend[i].Date) {
			t.Fatal("daily trend not chronological")
		}
	}

	// 2026-01-01: 25, 2026-01-02: 25, 2026-01-03: 10.
	// Peak tie resolved to the earliest date.
	if s.PeakDay == nil {
		t.Fatal("expected peak day")
	}
	if !s.PeakDay.Date.Equal(day(2026, 1, 1)) {
		t.Errorf("expected peak 2026-01-01, got %v", s.PeakDay.Date)
	}
	if s.PeakDay.Revenue.String() != "25" {
		t.Errorf("expected peak revenue 25, got %s", s.PeakDay.Revenue)
	}

	if s.DailyTrend[0].UniqueCustomers != 2 {
		t.Errorf("expected 2 unique customers on day 1, got %d", s.DailyTrend[0].UniqueCustomers)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	set := sampleSet()
	first := Compute(set)
	second := Compute(set)

	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over the same set produced different snapshots")
	}
}

func TestCompute_OrderIndependent(t *testing.T) {
	set := sampleSet()
	reversed := make([]*domain.Transaction, len(set))
	for i, x := range set {
		reversed[len(set)-1-i] = x
	}

	a := Compute(set)
	b := Compute(reversed)
	if !reflect.DeepEqual(a, b) {
		t.Error("input order changed the snapshot")
	}
}

func TestCompute_EmptyInput(t *testing.T) {
	s := Compute(nil)

	if !s.TotalRevenue.IsZero() {
		t.Errorf("expected zero revenue, got %s", s.TotalRevenue)
	}
	if s.TotalTransactions != 0 {
		t.Errorf("expected 0 transactions, got %d", s.TotalTransactions)
	}
	if s.PeakDay != nil {
		t.Error("expected nil peak day for empty input")
	}
	if len(s.PerRegion) != 0 || len(s.DailyTrend) != 0 {
		t.Error("expected empty views")
	}
}

func TestLowPerformers_Product(t *testing.T) {
	// Total 60; 5% cutoff = 3. Doohickey 10, Gadget 20, Widget Pro 30.
	set := []*domain.Transaction{
		tx("T1", day(2026, 1, 1), "North", "Alice", "Widget Pro", 3, "10.00"),
		tx("T2", day(2026, 1, 1), "South", "Bob", "Gadget", 4, "5.00"),
		tx("T3", day(2026, 1, 2), "North", "Carol", "Doohickey", 4, "2.50"),
		tx("T4", day(2026, 1, 2), "East", "Dan", "Trinket", 1, "1.00"),
	}
	s := Compute(set)

	low := LowPerformers(s, DimensionProduct, DefaultLowShareThreshold)
	if len(low) != 1 {
		t.Fatalf("expected 1 low performer, got %d", len(low))
	}
	if low[0].Name != "Trinket" {
		t.Errorf("expected Trinket, got %s", low[0].Name)
	}
}

func TestLowPerformers_OrderedAscending(t *testing.T) {
	set := []*domain.Transaction{
		tx("T1", day(2026, 1, 1), "North", "Alice", "Big", 100, "10.00"),
		tx("T2", day(2026, 1, 1), "South", "Bob", "Tiny", 2, "1.00"),
		tx("T3", day(2026, 1, 1), "East", "Carol", "Small", 3, "1.00"),
	}
	s := Compute(set)

	low := LowPerformers(s, DimensionProduct, DefaultLowShareThreshold)
	if len(low) != 2 {
		t.Fatalf("expected 2 low performers, got %d", len(low))
	}
	if low[0].Name != "Tiny" || low[1].Name != "Small" {
		t.Errorf("expected revenue-ascending order, got %s, %s", low[0].Name, low[1].Name)
	}
}

func TestLowPerformers_ZeroTotal(t *testing.T) {
	if got := LowPerformers(Compute(nil), DimensionRegion, DefaultLowShareThreshold); got != nil {
		t.Errorf("expected nil for empty snapshot, got %v", got)
	}
}

func TestPinnedDefaults(t *testing.T) {
	if DefaultTopN != 5 {
		t.Errorf("expected top-N default 5, got %d", DefaultTopN)
	}
	if !DefaultLowShareThreshold.Equal(decimal.NewFromFloat(0.05)) {
		t.Errorf("expected low-share threshold 0.05, got %s", DefaultLowShareThreshold)
	}
}
