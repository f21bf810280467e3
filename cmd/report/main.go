// Package main regenerates reports from stored run data, or from
// built-in fixture data for a quick demonstration.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"sales-analytics/internal/analytics"
	"sales-analytics/internal/pipeline"
	"sales-analytics/internal/reporting"
	"sales-analytics/internal/storage"
	"sales-analytics/internal/storage/memory"
	"sales-analytics/internal/storage/migrations"
	pgstore "sales-analytics/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	outputDir := flag.String("output-dir", "output", "Output directory for generated files")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	useFixtures := flag.Bool("use-fixtures", false, "Use in-memory fixture data instead of a database")
	topN := flag.Int("top-n", analytics.DefaultTopN, "Ranking cutoff in the rendered reports")
	lowDim := flag.String("low-dimension", string(analytics.DimensionProduct), "Low-performer dimension (region or product)")
	flag.Parse()

	ctx := context.Background()

	if !*useFixtures && *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required when not using fixtures")
		fmt.Fprintln(os.Stderr, "Use --use-fixtures to run with demo data instead")
		os.Exit(1)
	}

	var (
		txStore  storage.TransactionStore
		enrStore storage.EnrichedStore
		rejStore storage.RejectionStore
	)

	if *useFixtures {
		txStore, enrStore, rejStore = fixtureStores(ctx)
	} else {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			fmt.Fprintf(os.Stderr, "Error running migrations: %v\n", err)
			os.Exit(1)
		}
		txStore = pgstore.NewTransactionStore(pool)
		enrStore = pgstore.NewEnrichedStore(pool)
		rejStore = pgstore.NewRejectionStore(pool)
	}

	report, err := reporting.NewGenerator(txStore, enrStore, rejStore).
		WithTopN(*topN).
		WithLowPerformers(analytics.Dimension(*lowDim), analytics.DefaultLowShareThreshold).
		Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	files := map[string]string{
		"sales_report.txt": reporting.RenderText(report),
		"sales_report.md":  reporting.RenderMarkdown(report),
	}
	for name, content := range files {
		path := filepath.Join(*outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
	}
}

// fixtureStores runs the pipeline over the built-in sample batch and
// returns the populated stores.
func fixtureStores(ctx context.Context) (storage.TransactionStore, storage.EnrichedStore, storage.RejectionStore) {
	txStore := memory.NewTransactionStore()
	rejStore := memory.NewRejectionStore()
	enrStore := memory.NewEnrichedStore()
	runStore := memory.NewRunStore()

	p := pipeline.New(txStore, rejStore, enrStore, runStore).
		WithFetcher(&pipeline.StaticFetcher{Entries: pipeline.SampleCatalog()})
	if _, err := p.Run(ctx, pipeline.SampleLines()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading fixtures: %v\n", err)
		os.Exit(1)
	}
	return txStore, enrStore, rejStore
}
