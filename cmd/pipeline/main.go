// Package main provides the batch pipeline entry point.
// Executes: read, parse, validate, aggregate, enrich, report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"sales-analytics/internal/analytics"
	"sales-analytics/internal/catalog"
	"sales-analytics/internal/domain"
	"sales-analytics/internal/ingestion"
	"sales-analytics/internal/pipeline"
	"sales-analytics/internal/reporting"
	"sales-analytics/internal/storage"
	chstore "sales-analytics/internal/storage/clickhouse"
	"sales-analytics/internal/storage/memory"
	"sales-analytics/internal/storage/migrations"
	pgstore "sales-analytics/internal/storage/postgres"
)

func main() {
	// Load .env if present; flags still win over environment.
	_ = godotenv.Load()

	input := flag.String("input", "", "Path to the delimited sales data file (required)")
	delimiter := flag.String("delimiter", ingestion.DefaultDelimiter, "Field delimiter")
	outputDir := flag.String("output-dir", "output", "Output directory for generated files")
	catalogURL := flag.String("catalog-url", os.Getenv("CATALOG_URL"), "Product catalog base URL (empty disables enrichment)")
	region := flag.String("region", "", "Only include transactions from this region")
	minAmount := flag.String("min-amount", "", "Only include transactions with line total >= this amount")
	maxAmount := flag.String("max-amount", "", "Only include transactions with line total <= this amount")
	topN := flag.Int("top-n", analytics.DefaultTopN, "Ranking cutoff in the rendered reports")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (empty uses memory stores)")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (empty skips analytical sinks)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "--input is required")
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling run...\n", sig)
		cancel()
	}()

	filter, err := buildFilter(*region, *minAmount, *maxAmount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid filter: %v\n", err)
		os.Exit(1)
	}

	lines, err := ingestion.ReadLines(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Read %d data lines from %s\n", len(lines), *input)

	stores, cleanup, err := buildStores(ctx, *postgresDSN, *clickhouseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting storage: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	p := pipeline.New(stores.tx, stores.rej, stores.enr, stores.run).
		WithParser(ingestion.NewParser(*delimiter, ingestion.FieldCount)).
		WithFilter(filter)
	if stores.daily != nil {
		p = p.WithAnalyticsStores(stores.daily, stores.agg)
	}
	if *catalogURL != "" {
		p = p.WithFetcher(catalog.NewHTTPClient(*catalogURL))
	}

	res, err := p.Run(ctx, lines)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Run %s completed:\n", res.RunID)
	fmt.Printf("  Accepted:  %d\n", len(res.Accepted))
	fmt.Printf("  Rejected:  %d\n", len(res.Rejections))
	if res.FilteredOut > 0 {
		fmt.Printf("  Filtered:  %d\n", res.FilteredOut)
	}
	if *catalogURL != "" && !res.CatalogAvailable {
		fmt.Println("  Catalog unavailable, all records exported unmatched")
	}

	if err := writeOutputs(ctx, *outputDir, *topN, stores, res); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing outputs: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Reports written to %s\n", *outputDir)
}

// runStores groups the sinks one run writes to.
type runStores struct {
	tx    storage.TransactionStore
	rej   storage.RejectionStore
	enr   storage.EnrichedStore
	run   storage.RunStore
	daily storage.DailyRevenueStore
	agg   storage.RevenueAggregateStore
}

func buildStores(ctx context.Context, postgresDSN, clickhouseDSN string) (*runStores, func(), error) {
	stores := &runStores{
		tx:  memory.NewTransactionStore(),
		rej: memory.NewRejectionStore(),
		enr: memory.NewEnrichedStore(),
		run: memory.NewRunStore(),
	}
	cleanup := func() {}

	if postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		stores.tx = pgstore.NewTransactionStore(pool)
		stores.rej = pgstore.NewRejectionStore(pool)
		stores.enr = pgstore.NewEnrichedStore(pool)
		stores.run = pgstore.NewRunStore(pool)
		cleanup = pool.Close
	}

	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse: %w", err)
		}
		stores.daily = chstore.NewDailyRevenueStore(conn)
		stores.agg = chstore.NewRevenueAggregateStore(conn)
		prev := cleanup
		cleanup = func() {
			conn.Close()
			prev()
		}
	}

	return stores, cleanup, nil
}

func buildFilter(region, minAmount, maxAmount string) (domain.FilterConfig, error) {
	f := domain.FilterConfig{Region: region}
	if minAmount != "" {
		d, err := decimal.NewFromString(minAmount)
		if err != nil {
			return f, fmt.Errorf("parse min amount %q: %w", minAmount, err)
		}
		f.MinAmount = &d
	}
	if maxAmount != "" {
		d, err := decimal.NewFromString(maxAmount)
		if err != nil {
			return f, fmt.Errorf("parse max amount %q: %w", maxAmount, err)
		}
		f.MaxAmount = &d
	}
	return f, nil
}

func writeOutputs(ctx context.Context, outputDir string, topN int, stores *runStores, res *pipeline.Result) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	report, err := reporting.NewGenerator(stores.tx, stores.enr, stores.rej).
		WithTopN(topN).
		Generate(ctx)
	if err != nil {
		return err
	}

	files := map[string]string{
		"sales_report.txt":    reporting.RenderText(report),
		"sales_report.md":     reporting.RenderMarkdown(report),
		"enriched_export.txt": reporting.RenderEnriched(res.Enriched),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(outputDir, name), []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}
