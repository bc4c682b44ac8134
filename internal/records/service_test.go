package records

import (
	"context"
	"testing"
	"time"

	"farmdash/internal/db"
	"farmdash/internal/farm"
	"farmdash/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	sqlDB, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	repo := NewSQLiteRepo(sqlDB)
	require.NoError(t, repo.EnsureIndexes(ctx))

	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func feedInput(date string, qty any) map[string]any {
	return map[string]any{
		"feed_date":       date,
		"feed_type":       "Starter",
		"qty":             qty,
		"time_of_feeding": "08:00",
	}
}

func TestService_CreateAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, "feed-usage", feedInput("2024-01-01", 10))
	require.NoError(t, err)
	assert.Equal(t, "1", rec.ID)
	assert.Equal(t, farm.FeedUsage, rec.Category)
	assert.Equal(t, 10.0, rec.Fields["qty"])

	got, err := svc.GetByID(ctx, farm.FeedUsage, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Starter", got.Fields["feed_type"])
	assert.Equal(t, "10", table.FormatID(got.Fields["qty"]))
}

func TestService_CreateValidates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, farm.FeedUsage, map[string]any{"feed_type": "Starter"})
	require.Error(t, err)
	assert.True(t, table.IsValidation(err))

	_, err = svc.Create(ctx, farm.FeedUsage, feedInput("2024-01-01", "NaN"))
	assert.True(t, table.IsValidation(err))

	_, err = svc.Create(ctx, "turkeys", feedInput("2024-01-01", 1))
	assert.ErrorIs(t, err, farm.ErrUnknownCategory)
}

func TestService_ListInsertionOrderAndRange(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, d := range []string{"2024-01-03", "2024-01-01", "2024-01-02"} {
		_, err := svc.Create(ctx, farm.FeedUsage, feedInput(d, 1))
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, farm.Environment, map[string]any{
		"collection_date": "2024-01-01", "collection_time": "09:00", "temperature": 21.5, "humidity": 60,
	})
	require.NoError(t, err)

	all, err := svc.List(ctx, ListQuery{Category: farm.FeedUsage})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-01-03", all[0].Fields["feed_date"])

	ranged, err := svc.List(ctx, ListQuery{Category: farm.FeedUsage, Since: "2024-01-02", Until: "2024-01-03"})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	page, err := svc.List(ctx, ListQuery{Category: farm.FeedUsage, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "2024-01-01", page[0].Fields["feed_date"])

	negative, err := svc.List(ctx, ListQuery{Category: farm.FeedUsage, Offset: -5})
	require.NoError(t, err)
	assert.Len(t, negative, 3)
}

func TestListQuery_Bounds(t *testing.T) {
	tests := []struct {
		name       string
		q          ListQuery
		limit, off int
	}{
		{"zero", ListQuery{}, 0, 0},
		{"negative", ListQuery{Limit: -1, Offset: -5}, 0, 0},
		{"capped", ListQuery{Limit: 10000, Offset: 3}, maxListLimit, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.limit, tt.q.limit())
			assert.Equal(t, tt.off, tt.q.offset())
		})
	}
}

func TestService_UpdateMergesPartial(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	rec, err := svc.Create(ctx, farm.FeedUsage, feedInput("2024-01-01", 10))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, farm.FeedUsage, rec.ID, map[string]any{"qty": "15", "notes": "topped up"})
	require.NoError(t, err)
	assert.Equal(t, 15.0, updated.Fields["qty"])
	assert.Equal(t, "Starter", updated.Fields["feed_type"])
	assert.Equal(t, "topped up", updated.Fields["notes"])

	_, err = svc.Update(ctx, farm.FeedUsage, "999", map[string]any{"qty": 1})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestService_DeleteAndCount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	rec, err := svc.Create(ctx, farm.FeedUsage, feedInput("2024-01-01", 10))
	require.NoError(t, err)

	n, err := svc.Count(ctx, farm.FeedUsage)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, svc.Delete(ctx, farm.FeedUsage, rec.ID))
	assert.ErrorIs(t, svc.Delete(ctx, farm.FeedUsage, rec.ID), ErrRecordNotFound)

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 4)
	for _, c := range cats {
		assert.Zero(t, c.Count, c.Name)
	}
}

func TestResource_DrivesTable(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, farm.FeedUsage, feedInput("2024-01-01", 10))
	require.NoError(t, err)

	schema, _ := farm.Lookup(farm.FeedUsage)
	tbl := table.New(schema, svc.Resource(farm.FeedUsage), table.Options{PageSize: 5})
	require.NoError(t, tbl.Fetch(ctx))

	require.NoError(t, tbl.BeginEdit("1"))
	require.NoError(t, tbl.EditField("Quantity (kg)", "15"))
	require.NoError(t, tbl.Commit(ctx))
	assert.Equal(t, "15", tbl.Records()[0].Values["Quantity (kg)"])

	stored, err := svc.GetByID(ctx, farm.FeedUsage, "1")
	require.NoError(t, err)
	assert.Equal(t, "15", table.FormatID(stored.Fields["qty"]))

	require.NoError(t, tbl.RequestDelete("1"))
	require.NoError(t, tbl.ConfirmDelete(ctx))
	assert.Empty(t, tbl.Records())
}

func TestResource_ErrorsCarryMessages(t *testing.T) {
	svc := newTestService(t)
	err := svc.Resource(farm.FeedUsage).Delete(context.Background(), "42")

	var re *table.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 404, re.Status)
	assert.Equal(t, "record not found", re.Message)
}
