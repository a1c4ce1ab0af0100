package storage

import (
	"context"
	"time"

	"ratecompare/internal/domain"
)

// StoreCatalog provides access to store identity and CRM facility data.
type StoreCatalog interface {
	// InsertStore adds a new store. Returns ErrDuplicateKey if store_id exists.
	InsertStore(ctx context.Context, s *domain.StoreInfo) error

	// GetStore retrieves a store by its ID. Returns ErrNotFound if not exists.
	GetStore(ctx context.Context, storeID string) (*domain.StoreInfo, error)

	// ListStores retrieves all stores, ordered by distance ASC, store_id ASC.
	ListStores(ctx context.Context) ([]*domain.StoreInfo, error)

	// UpdateStoreMetadata sets year_built and square_footage for a store.
	// Returns ErrNotFound if the store does not exist.
	UpdateStoreMetadata(ctx context.Context, storeID string, yearBuilt *int, squareFootage *float64) error

	// InsertFacilities adds CRM facility rows in bulk. Fails the entire
	// batch on a duplicate name.
	InsertFacilities(ctx context.Context, records []*domain.FacilityRecord) error

	// ListFacilities retrieves all CRM facility rows, ordered by name ASC.
	ListFacilities(ctx context.Context) ([]*domain.FacilityRecord, error)

	// GetFacilityByName retrieves one CRM facility row by its exact
	// listing name. Returns ErrNotFound if not exists.
	GetFacilityByName(ctx context.Context, name string) (*domain.FacilityRecord, error)
}

// RateObservationStore provides access to raw historical rate rows.
type RateObservationStore interface {
	// InsertBulk adds multiple observations. Fails the entire batch on a
	// duplicate (store_id, size, date_collected, amenity flags) key.
	InsertBulk(ctx context.Context, obs []*domain.RateObservation) error

	// GetByStore retrieves all observations for a store, ordered by
	// date_collected ASC.
	GetByStore(ctx context.Context, storeID string) ([]*domain.RateObservation, error)

	// GetByDateRange retrieves observations for a store collected within
	// [from, to] (inclusive, calendar dates).
	GetByDateRange(ctx context.Context, storeID string, from, to time.Time) ([]*domain.RateObservation, error)

	// DatesWithData reports, per store, the set of calendar dates within
	// [from, to] that have at least one observation. Stores with no data
	// in the range map to an empty set.
	DatesWithData(ctx context.Context, storeIDs []string, from, to time.Time) (map[string]map[time.Time]struct{}, error)
}
