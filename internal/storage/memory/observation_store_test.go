package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratecompare/internal/domain"
	"ratecompare/internal/storage"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestObservationStore_InsertBulkAndGetByStore(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	obs := []*domain.RateObservation{
		{StoreID: "1001", Size: "10x10", RegularRate: ptr(150.0), DateCollected: date(2025, time.March, 2), ClimateControlled: true},
		{StoreID: "1001", Size: "5x5", RegularRate: ptr(60.0), DateCollected: date(2025, time.March, 1)},
		{StoreID: "other", Size: "10x10", RegularRate: ptr(90.0), DateCollected: date(2025, time.March, 1)},
	}
	require.NoError(t, store.InsertBulk(ctx, obs))

	retrieved, err := store.GetByStore(ctx, "1001")
	require.NoError(t, err)
	require.Len(t, retrieved, 2)
	assert.Equal(t, "5x5", retrieved[0].Size)
	assert.Equal(t, "10x10", retrieved[1].Size)
	assert.True(t, retrieved[1].ClimateControlled)
}

func TestObservationStore_InsertBulkDuplicateRejectsWholeBatch(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	existing := &domain.RateObservation{
		StoreID: "2001", Size: "10x10", RegularRate: ptr(100.0), DateCollected: date(2025, time.April, 1),
	}
	require.NoError(t, store.InsertBulk(ctx, []*domain.RateObservation{existing}))

	fresh := &domain.RateObservation{
		StoreID: "2001", Size: "5x5", RegularRate: ptr(55.0), DateCollected: date(2025, time.April, 1),
	}
	err := store.InsertBulk(ctx, []*domain.RateObservation{fresh, existing})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// The fresh row must not have been persisted.
	retrieved, err := store.GetByStore(ctx, "2001")
	require.NoError(t, err)
	assert.Len(t, retrieved, 1)
}

func TestObservationStore_FeatureFlagsDistinguishRows(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	obs := []*domain.RateObservation{
		{StoreID: "2003", Size: "10x10", RegularRate: ptr(120.0), DateCollected: date(2025, time.April, 1), ClimateControlled: true},
		{StoreID: "2003", Size: "10x10", RegularRate: ptr(95.0), DateCollected: date(2025, time.April, 1), DriveUp: true},
	}
	require.NoError(t, store.InsertBulk(ctx, obs))

	retrieved, err := store.GetByStore(ctx, "2003")
	require.NoError(t, err)
	assert.Len(t, retrieved, 2)
}

func TestObservationStore_GetByDateRangeInclusive(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	var obs []*domain.RateObservation
	for day := 1; day <= 5; day++ {
		obs = append(obs, &domain.RateObservation{
			StoreID: "3001", Size: "10x10", RegularRate: ptr(100.0), DateCollected: date(2025, time.May, day),
		})
	}
	require.NoError(t, store.InsertBulk(ctx, obs))

	retrieved, err := store.GetByDateRange(ctx, "3001", date(2025, time.May, 2), date(2025, time.May, 4))
	require.NoError(t, err)
	require.Len(t, retrieved, 3)
	assert.Equal(t, date(2025, time.May, 2), retrieved[0].DateCollected)
	assert.Equal(t, date(2025, time.May, 4), retrieved[2].DateCollected)
}

func TestObservationStore_DatesWithData(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	obs := []*domain.RateObservation{
		{StoreID: "4001", Size: "10x10", RegularRate: ptr(100.0), DateCollected: date(2025, time.June, 1)},
		{StoreID: "4001", Size: "5x5", RegularRate: ptr(50.0), DateCollected: date(2025, time.June, 1)},
		{StoreID: "4001", Size: "10x10", RegularRate: ptr(101.0), DateCollected: date(2025, time.June, 3)},
		{StoreID: "4002", Size: "10x10", RegularRate: ptr(90.0), DateCollected: date(2025, time.June, 2)},
	}
	require.NoError(t, store.InsertBulk(ctx, obs))

	result, err := store.DatesWithData(ctx, []string{"4001", "4002", "4003"},
		date(2025, time.June, 1), date(2025, time.June, 30))
	require.NoError(t, err)

	require.Len(t, result, 3)
	assert.Len(t, result["4001"], 2)
	assert.Len(t, result["4002"], 1)
	assert.Empty(t, result["4003"])
}

func TestObservationStore_TimestampsTruncatedToDay(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	obs := &domain.RateObservation{
		StoreID:       "5001",
		Size:          "10x10",
		RegularRate:   ptr(100.0),
		DateCollected: time.Date(2025, time.July, 4, 15, 30, 0, 0, time.UTC),
	}
	require.NoError(t, store.InsertBulk(ctx, []*domain.RateObservation{obs}))

	retrieved, err := store.GetByStore(ctx, "5001")
	require.NoError(t, err)
	require.Len(t, retrieved, 1)
	assert.Equal(t, date(2025, time.July, 4), retrieved[0].DateCollected)

	// A second row on the same calendar day is a duplicate even when the
	// clock time differs.
	obs2 := *obs
	obs2.DateCollected = time.Date(2025, time.July, 4, 9, 0, 0, 0, time.UTC)
	err = store.InsertBulk(ctx, []*domain.RateObservation{&obs2})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}
