package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopops/order-csv-exporter/internal/model"
)

func order(id int64, status string, createdAt time.Time) model.Record {
	return model.Record{
		ID:   id,
		Kind: model.KindOrder,
		Order: &model.Order{
			ID:        id,
			Status:    status,
			CreatedAt: createdAt,
		},
	}
}

func TestIsExportedTriState(t *testing.T) {
	ctx := context.Background()
	s := New(order(1, "completed", time.Now()))

	// Absent flag: pre-tracking record, treated as exported.
	exported, err := s.IsExported(ctx, model.KindOrder, 1)
	require.NoError(t, err)
	assert.True(t, exported)

	// Explicit 0: not exported.
	require.NoError(t, s.SetExported(ctx, model.KindOrder, 1, false))
	exported, err = s.IsExported(ctx, model.KindOrder, 1)
	require.NoError(t, err)
	assert.False(t, exported)

	// Explicit 1: exported.
	require.NoError(t, s.SetExported(ctx, model.KindOrder, 1, true))
	exported, err = s.IsExported(ctx, model.KindOrder, 1)
	require.NoError(t, err)
	assert.True(t, exported)
}

func TestSetExportedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New(order(1, "completed", time.Now()))

	require.NoError(t, s.SetExported(ctx, model.KindOrder, 1, true))
	require.NoError(t, s.SetExported(ctx, model.KindOrder, 1, true))

	exported, err := s.IsExported(ctx, model.KindOrder, 1)
	require.NoError(t, err)
	assert.True(t, exported)
}

func TestCountUnexportedSkipsFlagAbsentRecords(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := New(
		order(1, "completed", now), // flag absent
		order(2, "completed", now), // explicit 0
		order(3, "completed", now), // explicit 1
	)
	require.NoError(t, s.SetExported(ctx, model.KindOrder, 2, false))
	require.NoError(t, s.SetExported(ctx, model.KindOrder, 3, true))

	count, err := s.CountUnexported(ctx, model.ExportFilter{Kind: model.KindOrder})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestQueryFiltersByStatusAndDateRange(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	s := New(
		order(1, "completed", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)),
		order(2, "completed", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		order(3, "completed", time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC)),
		order(4, "completed", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)),  // out of range
		order(5, "processing", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)), // wrong status
	)

	records, err := s.Query(ctx, model.ExportFilter{
		Kind:      model.KindOrder,
		Statuses:  []string{"completed"},
		StartDate: &start,
		EndDate:   &end,
	}, false)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, int64(2), records[1].ID)
	assert.Equal(t, int64(3), records[2].ID)
}

func TestQueryExplicitIDsOverrideFilters(t *testing.T) {
	ctx := context.Background()
	s := New(
		order(1, "completed", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)),
		order(2, "cancelled", time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC)),
	)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records, err := s.Query(ctx, model.ExportFilter{
		Kind:      model.KindOrder,
		Statuses:  []string{"completed"},
		StartDate: &start,
		IDs:       []int64{2},
	}, false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(2), records[0].ID)
}

func TestQueryUnexportedOnly(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := New(
		order(1, "completed", now), // flag absent, excluded
		order(2, "completed", now), // explicit 0, included
	)
	require.NoError(t, s.SetExported(ctx, model.KindOrder, 2, false))

	records, err := s.Query(ctx, model.ExportFilter{Kind: model.KindOrder}, true)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(2), records[0].ID)
}
