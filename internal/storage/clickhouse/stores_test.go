package clickhouse_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"sales-analytics/internal/domain"
	"sales-analytics/internal/storage"
	chstore "sales-analytics/internal/storage/clickhouse"
)

func TestDailyRevenueStore_Clickhouse(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	s := chstore.NewDailyRevenueStore(conn)
	ctx := context.Background()
	day1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	err := s.InsertBulk(ctx, "run-1", []domain.DailyStats{
		{Date: day2, Revenue: decimal.RequireFromString("30.00"), Count: 1, UniqueCustomers: 1},
		{Date: day1, Revenue: decimal.RequireFromString("25.50"), Count: 2, UniqueCustomers: 2},
	})
	require.NoError(t, err)

	require.NoError(t, s.InsertBulk(ctx, "run-2", []domain.DailyStats{
		{Date: day1, Revenue: decimal.RequireFromString("99.00"), Count: 9, UniqueCustomers: 9},
	}))

	days, err := s.GetByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, days, 2)

	require.True(t, days[0].Date.Equal(day1), "rows must come back date ascending")
	require.True(t, days[0].Revenue.Equal(decimal.RequireFromString("25.50")))
	require.Equal(t, 2, days[0].Count)
	require.Equal(t, 2, days[0].UniqueCustomers)
	require.True(t, days[1].Date.Equal(day2))

	empty, err := s.GetByRun(ctx, "run-3")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestDailyRevenueStore_Clickhouse_EmptyBatch(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	s := chstore.NewDailyRevenueStore(conn)
	require.NoError(t, s.InsertBulk(context.Background(), "run-1", nil))
}

func TestRevenueAggregateStore_Clickhouse(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	s := chstore.NewRevenueAggregateStore(conn)
	ctx := context.Background()

	err := s.InsertBulk(ctx, []storage.RevenueAggregateRow{
		{RunID: "run-1", Dimension: "region", Name: "South", Revenue: decimal.RequireFromString("5.00"), Count: 1},
		{RunID: "run-1", Dimension: "region", Name: "North", Revenue: decimal.RequireFromString("50.00"), Count: 2},
		{RunID: "run-1", Dimension: "product", Name: "Widget", Revenue: decimal.RequireFromString("50.00"), Quantity: 5},
		{RunID: "run-2", Dimension: "region", Name: "North", Revenue: decimal.RequireFromString("99.00"), Count: 9},
	})
	require.NoError(t, err)

	t.Run("filters by run and dimension", func(t *testing.T) {
		rows, err := s.GetByRunAndDimension(ctx, "run-1", "region")
		require.NoError(t, err)
		require.Len(t, rows, 2)

		require.Equal(t, "North", rows[0].Name, "rows must come back revenue descending")
		require.True(t, rows[0].Revenue.Equal(decimal.RequireFromString("50.00")))
		require.Equal(t, int64(2), rows[0].Count)
		require.Equal(t, "South", rows[1].Name)
	})

	t.Run("product dimension carries quantity", func(t *testing.T) {
		rows, err := s.GetByRunAndDimension(ctx, "run-1", "product")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Equal(t, int64(5), rows[0].Quantity)
	})

	t.Run("unknown run is empty", func(t *testing.T) {
		rows, err := s.GetByRunAndDimension(ctx, "run-9", "region")
		require.NoError(t, err)
		require.Empty(t, rows)
	})

	t.Run("rejects incomplete rows", func(t *testing.T) {
		err := s.InsertBulk(ctx, []storage.RevenueAggregateRow{
			{RunID: "run-1", Dimension: "", Name: "North"},
		})
		require.ErrorIs(t, err, storage.ErrInvalidInput)
	})
}
