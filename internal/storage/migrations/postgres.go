package migrations

import (
	"context"
	"fmt"

	"sales-analytics/internal/storage/postgres"
)

// RunPostgresMigrations applies the embedded PostgreSQL schema files.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := loadMigrations("postgres")
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := pool.Exec(ctx, f.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", f.name, err)
		}
	}
	return nil
}
