package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratecompare/internal/domain"
	"ratecompare/internal/storage"
)

// ptr is a helper to create pointers to values.
func ptr[T any](v T) *T {
	return &v
}

func TestStoreCatalog_InsertAndGetStore(t *testing.T) {
	catalog := NewStoreCatalog()
	ctx := context.Background()

	info := &domain.StoreInfo{
		StoreID:       "1001",
		Name:          "StorQuest - Oakland",
		City:          "Oakland",
		Distance:      1.4,
		YearBuilt:     ptr(1998),
		SquareFootage: ptr(52000.0),
	}

	require.NoError(t, catalog.InsertStore(ctx, info))

	retrieved, err := catalog.GetStore(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, "StorQuest - Oakland", retrieved.Name)
	require.NotNil(t, retrieved.YearBuilt)
	assert.Equal(t, 1998, *retrieved.YearBuilt)
}

func TestStoreCatalog_InsertStoreDuplicate(t *testing.T) {
	catalog := NewStoreCatalog()
	ctx := context.Background()

	info := &domain.StoreInfo{StoreID: "1002", Name: "Public Storage"}
	require.NoError(t, catalog.InsertStore(ctx, info))

	err := catalog.InsertStore(ctx, info)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestStoreCatalog_InsertStoreInvalidInput(t *testing.T) {
	catalog := NewStoreCatalog()

	err := catalog.InsertStore(context.Background(), &domain.StoreInfo{})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestStoreCatalog_GetStoreNotFound(t *testing.T) {
	catalog := NewStoreCatalog()

	_, err := catalog.GetStore(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreCatalog_GetStoreReturnsCopy(t *testing.T) {
	catalog := NewStoreCatalog()
	ctx := context.Background()

	require.NoError(t, catalog.InsertStore(ctx, &domain.StoreInfo{StoreID: "1003", Name: "Original"}))

	first, err := catalog.GetStore(ctx, "1003")
	require.NoError(t, err)
	first.Name = "Mutated"

	second, err := catalog.GetStore(ctx, "1003")
	require.NoError(t, err)
	assert.Equal(t, "Original", second.Name)
}

func TestStoreCatalog_ListStoresOrderedByDistance(t *testing.T) {
	catalog := NewStoreCatalog()
	ctx := context.Background()

	require.NoError(t, catalog.InsertStore(ctx, &domain.StoreInfo{StoreID: "far", Distance: 4.2, Name: "x"}))
	require.NoError(t, catalog.InsertStore(ctx, &domain.StoreInfo{StoreID: "subject", Distance: 0, Name: "x"}))
	require.NoError(t, catalog.InsertStore(ctx, &domain.StoreInfo{StoreID: "near", Distance: 0.8, Name: "x"}))

	listed, err := catalog.ListStores(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "subject", listed[0].StoreID)
	assert.Equal(t, "near", listed[1].StoreID)
	assert.Equal(t, "far", listed[2].StoreID)
}

func TestStoreCatalog_UpdateStoreMetadata(t *testing.T) {
	catalog := NewStoreCatalog()
	ctx := context.Background()

	require.NoError(t, catalog.InsertStore(ctx, &domain.StoreInfo{StoreID: "2001", Name: "CubeSmart"}))

	require.NoError(t, catalog.UpdateStoreMetadata(ctx, "2001", ptr(2005), ptr(78500.0)))

	retrieved, err := catalog.GetStore(ctx, "2001")
	require.NoError(t, err)
	require.NotNil(t, retrieved.YearBuilt)
	assert.Equal(t, 2005, *retrieved.YearBuilt)

	err = catalog.UpdateStoreMetadata(ctx, "missing", nil, nil)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreCatalog_InsertFacilitiesDuplicateLeavesCatalogUnchanged(t *testing.T) {
	catalog := NewStoreCatalog()
	ctx := context.Background()

	require.NoError(t, catalog.InsertFacilities(ctx, []*domain.FacilityRecord{
		{Name: "Existing - 1 First St", ShippingStreet: "1 First St"},
	}))

	err := catalog.InsertFacilities(ctx, []*domain.FacilityRecord{
		{Name: "Fresh - 2 Second St", ShippingStreet: "2 Second St"},
		{Name: "Existing - 1 First St", ShippingStreet: "1 First St"},
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = catalog.GetFacilityByName(ctx, "Fresh - 2 Second St")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreCatalog_ListFacilitiesSorted(t *testing.T) {
	catalog := NewStoreCatalog()
	ctx := context.Background()

	require.NoError(t, catalog.InsertFacilities(ctx, []*domain.FacilityRecord{
		{Name: "Zeta Storage - 9 Elm Ave"},
		{Name: "Alpha Storage - 1 Main St"},
	}))

	listed, err := catalog.ListFacilities(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Alpha Storage - 1 Main St", listed[0].Name)
	assert.Equal(t, "Zeta Storage - 9 Elm Ave", listed[1].Name)
}
