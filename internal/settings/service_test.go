package settings

import (
	"context"
	"sync"
	"testing"
	"time"

	"farmdash/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	sqlDB, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	store := NewSQLiteStore(sqlDB)
	require.NoError(t, store.EnsureSchema(ctx))

	svc := NewService(store)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func ptr[T any](v T) *T { return &v }

func TestService_GetBeforeFirstSave(t *testing.T) {
	svc := newTestService(t)

	s, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Default(), *s)
}

func TestService_UpdatePersists(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	saved, err := svc.Update(ctx, Patch{FarmName: ptr("Sunrise"), NoOfBirds: ptr(int64(900))})
	require.NoError(t, err)
	assert.True(t, saved.Saved())
	assert.Equal(t, fixedNow, saved.UpdatedAt)

	_, err = svc.Update(ctx, Patch{EmailNotification: ptr(true)})
	require.NoError(t, err)

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sunrise", got.FarmName)
	assert.EqualValues(t, 900, got.NoOfBirds)
	assert.True(t, got.EmailNotification)
	assert.Equal(t, UnitMetric, got.MeasuringUnit)
}

func TestService_UpdateRejectsInvalid(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.Update(ctx, Patch{FarmName: ptr("Sunrise")})
	require.NoError(t, err)

	_, err = svc.Update(ctx, Patch{FarmName: ptr("Other"), MeasuringUnit: ptr("Stone")})
	require.Error(t, err)
	assert.True(t, IsClientError(err))

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sunrise", got.FarmName)
}

func TestService_ConcurrentUpdatesAllApply(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	patches := []Patch{
		{EmailNotification: ptr(true)},
		{SMSNotification: ptr(true)},
		{PushNotification: ptr(true)},
		{FarmName: ptr("Sunrise")},
	}
	var wg sync.WaitGroup
	for _, p := range patches {
		wg.Add(1)
		go func(p Patch) {
			defer wg.Done()
			_, err := svc.Update(ctx, p)
			assert.NoError(t, err)
		}(p)
	}
	wg.Wait()

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, got.EmailNotification)
	assert.True(t, got.SMSNotification)
	assert.True(t, got.PushNotification)
	assert.Equal(t, "Sunrise", got.FarmName)
}
