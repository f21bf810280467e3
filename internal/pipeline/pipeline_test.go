package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sales-analytics/internal/domain"
	"sales-analytics/internal/storage/memory"
)

type memStores struct {
	tx    *memory.TransactionStore
	rej   *memory.RejectionStore
	enr   *memory.EnrichedStore
	run   *memory.RunStore
	daily *memory.DailyRevenueStore
	agg   *memory.RevenueAggregateStore
}

func newMemPipeline() (*Pipeline, *memStores) {
	s := &memStores{
		tx:    memory.NewTransactionStore(),
		rej:   memory.NewRejectionStore(),
		enr:   memory.NewEnrichedStore(),
		run:   memory.NewRunStore(),
		daily: memory.NewDailyRevenueStore(),
		agg:   memory.NewRevenueAggregateStore(),
	}
	p := New(s.tx, s.rej, s.enr, s.run).
		WithAnalyticsStores(s.daily, s.agg).
		WithClock(func() time.Time { return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC) })
	return p, s
}

func TestRun_AcceptAndReject(t *testing.T) {
	p, s := newMemPipeline()
	ctx := context.Background()

	res, err := p.Run(ctx, []string{
		"T1|2026-01-01|North|Alice|Widget|2|10.00|20.00",
		"T2|2026-01-02|South|Bob|Gadget|0|5.00|0.00",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.EmptyInput {
		t.Error("EmptyInput should be false")
	}
	if len(res.Accepted) != 1 || res.Accepted[0].TransactionID != "T1" {
		t.Fatalf("Accepted = %v, want [T1]", res.Accepted)
	}
	if len(res.Rejections) != 1 || res.Rejections[0].Reason != domain.ReasonNonPositiveQuantity {
		t.Fatalf("Rejections = %v, want one NON_POSITIVE_QUANTITY", res.Rejections)
	}
	if got := res.Snapshot.TotalRevenue.String(); got != "20" {
		t.Errorf("TotalRevenue = %s, want 20", got)
	}
	if res.Snapshot.PeakDay == nil || !res.Snapshot.PeakDay.Date.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("PeakDay = %v, want 2026-01-01", res.Snapshot.PeakDay)
	}

	// Persisted through the stores.
	if _, err := s.tx.GetByID(ctx, "T1"); err != nil {
		t.Errorf("T1 not persisted: %v", err)
	}
	rejs, _ := s.rej.GetAll(ctx)
	if len(rejs) != 1 {
		t.Errorf("persisted rejections = %d, want 1", len(rejs))
	}
	run, err := s.run.GetByID(ctx, res.RunID)
	if err != nil {
		t.Fatalf("run record missing: %v", err)
	}
	if run.Status != domain.RunStatusCompleted || run.InputLines != 2 || run.Accepted != 1 || run.Rejected != 1 {
		t.Errorf("unexpected run record: %+v", run)
	}
	if !run.TotalRevenue.Equal(decimal.RequireFromString("20")) {
		t.Errorf("run.TotalRevenue = %s, want 20", run.TotalRevenue)
	}
	if run.FilterApplied {
		t.Error("run.FilterApplied should be false without a filter")
	}
}

func TestRun_EmptyInput(t *testing.T) {
	p, s := newMemPipeline()
	ctx := context.Background()

	res, err := p.Run(ctx, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.EmptyInput {
		t.Error("EmptyInput should be true")
	}
	if res.Snapshot == nil || res.Snapshot.TotalTransactions != 0 {
		t.Errorf("expected zero snapshot, got %+v", res.Snapshot)
	}

	run, err := s.run.GetByID(ctx, res.RunID)
	if err != nil {
		t.Fatalf("empty run must still be recorded: %v", err)
	}
	if run.Status != domain.RunStatusCompleted || run.InputLines != 0 {
		t.Errorf("unexpected run record: %+v", run)
	}
}

func TestRun_MalformedLineRejected(t *testing.T) {
	p, _ := newMemPipeline()

	res, err := p.Run(context.Background(), []string{
		"T1|2026-01-01|North|Alice|Widget|2|10.00", // seven fields
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Accepted) != 0 {
		t.Errorf("Accepted = %d, want 0", len(res.Accepted))
	}
	if len(res.Rejections) != 1 || res.Rejections[0].Reason != domain.ReasonMalformedRow {
		t.Fatalf("Rejections = %v, want one MALFORMED_ROW", res.Rejections)
	}
}

func TestRun_DuplicateIDAcrossLines(t *testing.T) {
	p, _ := newMemPipeline()

	res, err := p.Run(context.Background(), []string{
		"T1|2026-01-01|North|Alice|Widget|2|10.00|20.00",
		"T1|2026-01-02|South|Bob|Gadget|1|5.00|5.00",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Accepted) != 1 {
		t.Fatalf("Accepted = %d, want 1", len(res.Accepted))
	}
	if len(res.Rejections) != 1 || res.Rejections[0].Reason != domain.ReasonInvalidID {
		t.Fatalf("Rejections = %v, want one INVALID_ID", res.Rejections)
	}
}

func TestRun_CatalogFetchErrorDegrades(t *testing.T) {
	p, _ := newMemPipeline()
	p.WithFetcher(&StaticFetcher{Err: errors.New("catalog down")})

	res, err := p.Run(context.Background(), []string{
		"T1|2026-01-01|North|Alice|Widget|2|10.00|20.00",
	})
	if err != nil {
		t.Fatalf("catalog failure must not fail the run: %v", err)
	}
	if res.CatalogAvailable {
		t.Error("CatalogAvailable should be false")
	}
	if res.CatalogSize != 0 {
		t.Errorf("CatalogSize = %d, want 0", res.CatalogSize)
	}
	for _, e := range res.Enriched {
		if e.APIMatch {
			t.Errorf("%s should be unmatched with no catalog", e.TransactionID)
		}
	}
}

func TestRun_Enrichment(t *testing.T) {
	p, s := newMemPipeline()
	p.WithFetcher(&StaticFetcher{Entries: []domain.CatalogEntry{
		{Name: "Widget", Category: "tools", Brand: "Acme", Rating: 4.2},
	}})
	ctx := context.Background()

	res, err := p.Run(ctx, []string{
		"T1|2026-01-01|North|Alice|Widget|2|10.00|20.00",
		"T2|2026-01-02|South|Bob|Gadget|1|5.00|5.00",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.CatalogAvailable || res.CatalogSize != 1 {
		t.Errorf("CatalogAvailable=%v CatalogSize=%d, want true/1", res.CatalogAvailable, res.CatalogSize)
	}

	enriched, _ := s.enr.GetAll(ctx)
	if len(enriched) != 2 {
		t.Fatalf("persisted enriched = %d, want 2", len(enriched))
	}
	matched := 0
	for _, e := range enriched {
		if e.APIMatch {
			matched++
		}
	}
	if matched != 1 {
		t.Errorf("matched = %d, want 1", matched)
	}

	run, _ := s.run.GetByID(ctx, res.RunID)
	if run.Enriched != 1 || run.CatalogSize != 1 {
		t.Errorf("run record enrichment fields: %+v", run)
	}
}

func TestRun_Filter(t *testing.T) {
	p, s := newMemPipeline()
	min := decimal.RequireFromString("10.00")
	p.WithFilter(domain.FilterConfig{Region: "North", MinAmount: &min})
	ctx := context.Background()

	res, err := p.Run(ctx, []string{
		"T1|2026-01-01|North|Alice|Widget|2|10.00|20.00",
		"T2|2026-01-02|North|Bob|Gadget|1|5.00|5.00", // below min amount
		"T3|2026-01-03|South|Carol|Widget|3|10.00|30.00",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Accepted) != 1 || res.Accepted[0].TransactionID != "T1" {
		t.Fatalf("Accepted = %v, want [T1]", res.Accepted)
	}
	if res.FilteredOut != 2 {
		t.Errorf("FilteredOut = %d, want 2", res.FilteredOut)
	}
	if got := res.Snapshot.TotalRevenue.String(); got != "20" {
		t.Errorf("TotalRevenue = %s, want 20 (filter before aggregation)", got)
	}

	run, _ := s.run.GetByID(ctx, res.RunID)
	if !run.FilterApplied {
		t.Error("run.FilterApplied should be true")
	}
	// Filtered-out records are neither persisted nor rejected.
	if _, err := s.tx.GetByID(ctx, "T3"); err == nil {
		t.Error("T3 should not be persisted")
	}
	if len(res.Rejections) != 0 {
		t.Errorf("Rejections = %d, want 0", len(res.Rejections))
	}
}

func TestRun_AnalyticsStores(t *testing.T) {
	p, s := newMemPipeline()
	ctx := context.Background()

	res, err := p.Run(ctx, []string{
		"T1|2026-01-01|North|Alice|Widget|2|10.00|20.00",
		"T2|2026-01-02|South|Bob|Gadget|1|5.00|5.00",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	days, err := s.daily.GetByRun(ctx, res.RunID)
	if err != nil {
		t.Fatalf("GetByRun: %v", err)
	}
	if len(days) != 2 {
		t.Errorf("daily rows = %d, want 2", len(days))
	}

	regions, err := s.agg.GetByRunAndDimension(ctx, res.RunID, "region")
	if err != nil {
		t.Fatalf("GetByRunAndDimension: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("region rows = %d, want 2", len(regions))
	}
	if regions[0].Name != "North" || regions[0].Revenue.String() != "20" {
		t.Errorf("top region row = %+v, want North/20", regions[0])
	}

	products, _ := s.agg.GetByRunAndDimension(ctx, res.RunID, "product")
	if len(products) != 2 {
		t.Errorf("product rows = %d, want 2", len(products))
	}
}

func TestRun_ProgressEvents(t *testing.T) {
	p, _ := newMemPipeline()
	var stages []string
	p.WithProgress(func(e ProgressEvent) {
		if e.RunID == "" {
			t.Error("progress event missing run id")
		}
		stages = append(stages, e.Stage)
	})

	if _, err := p.Run(context.Background(), []string{
		"T1|2026-01-01|North|Alice|Widget|2|10.00|20.00",
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{StageParsing, StageValidating, StageAggregating, StageEnriching, StagePersisting, StageDone}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Fatalf("stages = %v, want %v", stages, want)
		}
	}
}

func TestRun_SampleLines(t *testing.T) {
	p, s := newMemPipeline()
	p.WithFetcher(&StaticFetcher{Entries: SampleCatalog()})
	ctx := context.Background()

	res, err := p.Run(ctx, SampleLines())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Accepted) != 10 {
		t.Errorf("Accepted = %d, want 10", len(res.Accepted))
	}
	if len(res.Rejections) != 7 {
		t.Errorf("Rejections = %d, want 7", len(res.Rejections))
	}

	counts, _ := s.rej.CountByReason(ctx)
	wantCounts := map[domain.RejectionReason]int{
		domain.ReasonMalformedRow:        2,
		domain.ReasonInvalidID:           1,
		domain.ReasonNonPositiveQuantity: 1,
		domain.ReasonNonPositivePrice:    1,
		domain.ReasonMissingRegion:       1,
		domain.ReasonMissingCustomer:     1,
	}
	for reason, want := range wantCounts {
		if counts[reason] != want {
			t.Errorf("rejections[%s] = %d, want %d", reason, counts[reason], want)
		}
	}

	// The fixture catalog misses exactly one product (Widget Deluxe).
	unmatched, _ := s.enr.GetUnmatched(ctx)
	if len(unmatched) != 1 || unmatched[0].TransactionID != "T008" {
		t.Errorf("unmatched = %v, want [T008]", unmatched)
	}

	run, _ := s.run.GetByID(ctx, res.RunID)
	if run.Enriched != 9 {
		t.Errorf("run.Enriched = %d, want 9", run.Enriched)
	}
}
