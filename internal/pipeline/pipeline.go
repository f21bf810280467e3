// Package pipeline orchestrates a single batch run: raw lines are
// parsed, validated, optionally filtered, aggregated, and enriched
// against the product catalog, then persisted through the stores.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sales-analytics/internal/analytics"
	"sales-analytics/internal/catalog"
	"sales-analytics/internal/domain"
	"sales-analytics/internal/ingestion"
	"sales-analytics/internal/observability"
	"sales-analytics/internal/storage"
	"sales-analytics/internal/validation"
)

// Stage names reported through the progress callback.
const (
	StageParsing     = "parsing"
	StageValidating  = "validating"
	StageAggregating = "aggregating"
	StageEnriching   = "enriching"
	StagePersisting  = "persisting"
	StageDone        = "done"
)

// ProgressEvent describes one pipeline stage transition.
type ProgressEvent struct {
	RunID  string    `json:"run_id"`
	Stage  string    `json:"stage"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// ProgressFunc receives stage transitions during Run. Called
// synchronously from the pipeline goroutine.
type ProgressFunc func(e ProgressEvent)

// Result is everything one run produced.
type Result struct {
	RunID      string
	EmptyInput bool
	Accepted   []*domain.Transaction
	Rejections []*domain.Rejection
	Snapshot   *domain.AnalyticsSnapshot
	Enriched   []*domain.EnrichedTransaction

	CatalogSize      int
	CatalogAvailable bool
	FilteredOut      int
}

// Pipeline runs the batch flow against a set of stores.
type Pipeline struct {
	parser   *ingestion.Parser
	txStore  storage.TransactionStore
	rejStore storage.RejectionStore
	enrStore storage.EnrichedStore
	runStore storage.RunStore

	dailyStore storage.DailyRevenueStore
	aggStore   storage.RevenueAggregateStore

	fetcher  catalog.Fetcher
	filter   domain.FilterConfig
	metrics  *observability.Metrics
	progress ProgressFunc
	clock    func() time.Time
}

// New creates a pipeline over the required stores.
func New(
	txStore storage.TransactionStore,
	rejStore storage.RejectionStore,
	enrStore storage.EnrichedStore,
	runStore storage.RunStore,
) *Pipeline {
	return &Pipeline{
		parser:   ingestion.NewParser(ingestion.DefaultDelimiter, ingestion.FieldCount),
		txStore:  txStore,
		rejStore: rejStore,
		enrStore: enrStore,
		runStore: runStore,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

// WithParser overrides the default parser (custom delimiter).
func (p *Pipeline) WithParser(parser *ingestion.Parser) *Pipeline {
	p.parser = parser
	return p
}

// WithFetcher sets the catalog fetch collaborator. Without one the
// catalog is empty and every transaction is exported unmatched.
func (p *Pipeline) WithFetcher(f catalog.Fetcher) *Pipeline {
	p.fetcher = f
	return p
}

// WithFilter applies a region/amount filter to accepted transactions
// before aggregation and enrichment.
func (p *Pipeline) WithFilter(f domain.FilterConfig) *Pipeline {
	p.filter = f
	return p
}

// WithAnalyticsStores adds the daily trend and grouped-revenue sinks.
func (p *Pipeline) WithAnalyticsStores(daily storage.DailyRevenueStore, agg storage.RevenueAggregateStore) *Pipeline {
	p.dailyStore = daily
	p.aggStore = agg
	return p
}

// WithMetrics sets the Prometheus metrics sink.
func (p *Pipeline) WithMetrics(m *observability.Metrics) *Pipeline {
	p.metrics = m
	return p
}

// WithProgress sets the stage-transition callback.
func (p *Pipeline) WithProgress(fn ProgressFunc) *Pipeline {
	p.progress = fn
	return p
}

// WithClock sets a custom clock function for deterministic output.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	return p
}

// Run executes the full batch flow over the given input lines (header
// already stripped by the reader). Per-record failures become
// Rejections and never abort the run; a failed catalog fetch degrades
// enrichment to all-unmatched. Only store failures return an error.
func (p *Pipeline) Run(ctx context.Context, lines []string) (*Result, error) {
	started := p.clock()
	runID := uuid.NewString()

	res := &Result{RunID: runID}

	if len(lines) == 0 {
		res.EmptyInput = true
		res.Snapshot = analytics.Compute(nil)
		p.emit(runID, StageDone, "no input lines")
		if err := p.recordRun(ctx, res, started, domain.RunStatusCompleted, 0); err != nil {
			return nil, err
		}
		return res, nil
	}

	// Parse
	p.emit(runID, StageParsing, fmt.Sprintf("%d lines", len(lines)))
	if p.metrics != nil {
		p.metrics.LinesRead.Add(float64(len(lines)))
	}
	candidates := make([]*domain.Candidate, 0, len(lines))
	for _, line := range lines {
		c, err := p.parser.Parse(line)
		if err != nil {
			res.Rejections = append(res.Rejections, &domain.Rejection{
				Line:   line,
				Reason: domain.ReasonMalformedRow,
			})
			continue
		}
		candidates = append(candidates, c)
	}
	if p.metrics != nil {
		p.metrics.LinesParsed.Add(float64(len(candidates)))
	}

	// Validate
	p.emit(runID, StageValidating, fmt.Sprintf("%d candidates", len(candidates)))
	v := validation.New()
	accepted := make([]*domain.Transaction, 0, len(candidates))
	for _, c := range candidates {
		t, rej := v.Validate(c)
		if rej != nil {
			res.Rejections = append(res.Rejections, rej)
			continue
		}
		accepted = append(accepted, t)
	}
	if p.metrics != nil {
		p.metrics.RecordsAccepted.Add(float64(len(accepted)))
		for _, r := range res.Rejections {
			p.metrics.RecordsRejected.WithLabelValues(string(r.Reason)).Inc()
		}
	}

	// Filter
	if p.filter.Enabled() {
		kept := accepted[:0:0]
		for _, t := range accepted {
			if p.filter.Matches(t) {
				kept = append(kept, t)
			}
		}
		res.FilteredOut = len(accepted) - len(kept)
		accepted = kept
		if p.metrics != nil {
			p.metrics.RecordsFiltered.Add(float64(res.FilteredOut))
		}
	}
	res.Accepted = accepted

	// Aggregate
	p.emit(runID, StageAggregating, fmt.Sprintf("%d accepted", len(accepted)))
	res.Snapshot = analytics.Compute(accepted)

	// Enrich. A failed fetch is non-fatal: the run continues with an
	// empty catalog and every transaction marked unmatched.
	p.emit(runID, StageEnriching, "")
	var entries []domain.CatalogEntry
	if p.fetcher != nil {
		fetched, err := p.fetcher.FetchAll(ctx)
		if err != nil {
			if p.metrics != nil {
				p.metrics.CatalogFetchErrors.Inc()
			}
		} else {
			entries = fetched
			res.CatalogAvailable = true
		}
	}
	res.CatalogSize = len(entries)
	res.Enriched = catalog.Enrich(accepted, catalog.NewExactMatcher(entries))
	if p.metrics != nil {
		p.metrics.CatalogEntriesFetched.Set(float64(res.CatalogSize))
		for _, e := range res.Enriched {
			if e.APIMatch {
				p.metrics.EnrichmentMatches.Inc()
			} else {
				p.metrics.EnrichmentMisses.Inc()
			}
		}
	}

	// Persist
	p.emit(runID, StagePersisting, "")
	if err := p.persist(ctx, res); err != nil {
		_ = p.recordRun(ctx, res, started, domain.RunStatusFailed, len(lines))
		if p.metrics != nil {
			p.metrics.PipelineRunsTotal.WithLabelValues(domain.RunStatusFailed).Inc()
		}
		return nil, err
	}
	if err := p.recordRun(ctx, res, started, domain.RunStatusCompleted, len(lines)); err != nil {
		return nil, err
	}

	if p.metrics != nil {
		p.metrics.PipelineRunsTotal.WithLabelValues(domain.RunStatusCompleted).Inc()
		p.metrics.PipelineDuration.Observe(p.clock().Sub(started).Seconds())
	}
	p.emit(runID, StageDone, fmt.Sprintf("accepted=%d rejected=%d", len(res.Accepted), len(res.Rejections)))
	return res, nil
}

func (p *Pipeline) persist(ctx context.Context, res *Result) error {
	if err := p.rejStore.InsertBulk(ctx, res.Rejections); err != nil {
		return fmt.Errorf("persist rejections: %w", err)
	}
	if err := p.txStore.InsertBulk(ctx, res.Accepted); err != nil {
		return fmt.Errorf("persist transactions: %w", err)
	}
	if err := p.enrStore.InsertBulk(ctx, res.Enriched); err != nil {
		return fmt.Errorf("persist enriched transactions: %w", err)
	}

	if p.dailyStore != nil {
		if err := p.dailyStore.InsertBulk(ctx, res.RunID, res.Snapshot.DailyTrend); err != nil {
			return fmt.Errorf("persist daily trend: %w", err)
		}
	}
	if p.aggStore != nil {
		if err := p.aggStore.InsertBulk(ctx, aggregateRows(res.RunID, res.Snapshot)); err != nil {
			return fmt.Errorf("persist revenue aggregates: %w", err)
		}
	}
	return nil
}

// aggregateRows flattens the snapshot rankings into dimension rows.
func aggregateRows(runID string, s *domain.AnalyticsSnapshot) []storage.RevenueAggregateRow {
	var rows []storage.RevenueAggregateRow
	for _, r := range s.PerRegion {
		rows = append(rows, storage.RevenueAggregateRow{
			RunID:     runID,
			Dimension: string(analytics.DimensionRegion),
			Name:      r.Region,
			Revenue:   r.Revenue,
			Count:     int64(r.Count),
		})
	}
	for _, pr := range s.ProductRanking {
		rows = append(rows, storage.RevenueAggregateRow{
			RunID:     runID,
			Dimension: string(analytics.DimensionProduct),
			Name:      pr.Product,
			Revenue:   pr.Revenue,
			Quantity:  pr.Quantity,
		})
	}
	for _, c := range s.CustomerRanking {
		rows = append(rows, storage.RevenueAggregateRow{
			RunID:     runID,
			Dimension: string(analytics.DimensionCustomer),
			Name:      c.Customer,
			Revenue:   c.Revenue,
			Count:     int64(c.Purchases),
		})
	}
	return rows
}

func (p *Pipeline) recordRun(ctx context.Context, res *Result, started time.Time, status string, inputLines int) error {
	total := decimal.Zero
	if res.Snapshot != nil {
		total = res.Snapshot.TotalRevenue
	}
	matched := 0
	for _, e := range res.Enriched {
		if e.APIMatch {
			matched++
		}
	}
	run := &domain.PipelineRun{
		RunID:         res.RunID,
		StartedAt:     started,
		FinishedAt:    p.clock(),
		Status:        status,
		InputLines:    inputLines,
		Accepted:      len(res.Accepted),
		Rejected:      len(res.Rejections),
		Enriched:      matched,
		CatalogSize:   res.CatalogSize,
		TotalRevenue:  total,
		FilterApplied: p.filter.Enabled(),
	}
	if err := p.runStore.Insert(ctx, run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

func (p *Pipeline) emit(runID, stage, detail string) {
	if p.progress == nil {
		return
	}
	p.progress(ProgressEvent{RunID: runID, Stage: stage, Detail: detail, At: p.clock()})
}
