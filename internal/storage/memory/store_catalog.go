package memory

import (
	"context"
	"sort"
	"sync"

	"ratecompare/internal/domain"
	"ratecompare/internal/storage"
)

// StoreCatalog is an in-memory implementation of storage.StoreCatalog.
type StoreCatalog struct {
	mu         sync.RWMutex
	stores     map[string]*domain.StoreInfo      // keyed by store_id
	facilities map[string]*domain.FacilityRecord // keyed by listing name
}

// NewStoreCatalog creates a new in-memory store catalog.
func NewStoreCatalog() *StoreCatalog {
	return &StoreCatalog{
		stores:     make(map[string]*domain.StoreInfo),
		facilities: make(map[string]*domain.FacilityRecord),
	}
}

// InsertStore adds a new store. Returns ErrDuplicateKey if store_id exists.
func (c *StoreCatalog) InsertStore(_ context.Context, s *domain.StoreInfo) error {
	if s == nil || s.StoreID == "" {
		return storage.ErrInvalidInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.stores[s.StoreID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	storeCopy := *s
	c.stores[s.StoreID] = &storeCopy
	return nil
}

// GetStore retrieves a store by its ID. Returns ErrNotFound if not exists.
func (c *StoreCatalog) GetStore(_ context.Context, storeID string) (*domain.StoreInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, exists := c.stores[storeID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy
	storeCopy := *s
	return &storeCopy, nil
}

// ListStores retrieves all stores, ordered by distance ASC, store_id ASC.
func (c *StoreCatalog) ListStores(_ context.Context) ([]*domain.StoreInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*domain.StoreInfo, 0, len(c.stores))
	for _, s := range c.stores {
		storeCopy := *s
		result = append(result, &storeCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Distance != result[j].Distance {
			return result[i].Distance < result[j].Distance
		}
		return result[i].StoreID < result[j].StoreID
	})

	return result, nil
}

// UpdateStoreMetadata sets year_built and square_footage for a store.
func (c *StoreCatalog) UpdateStoreMetadata(_ context.Context, storeID string, yearBuilt *int, squareFootage *float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, exists := c.stores[storeID]
	if !exists {
		return storage.ErrNotFound
	}

	s.YearBuilt = yearBuilt
	s.SquareFootage = squareFootage
	return nil
}

// InsertFacilities adds CRM facility rows in bulk. Fails the entire batch
// on a duplicate name, leaving the catalog unchanged.
func (c *StoreCatalog) InsertFacilities(_ context.Context, records []*domain.FacilityRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.Name == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[r.Name]; dup {
			return storage.ErrDuplicateKey
		}
		if _, exists := c.facilities[r.Name]; exists {
			return storage.ErrDuplicateKey
		}
		seen[r.Name] = struct{}{}
	}

	for _, r := range records {
		recordCopy := *r
		c.facilities[r.Name] = &recordCopy
	}
	return nil
}

// ListFacilities retrieves all CRM facility rows, ordered by name ASC.
func (c *StoreCatalog) ListFacilities(_ context.Context) ([]*domain.FacilityRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*domain.FacilityRecord, 0, len(c.facilities))
	for _, r := range c.facilities {
		recordCopy := *r
		result = append(result, &recordCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// GetFacilityByName retrieves one CRM facility row by its exact listing name.
func (c *StoreCatalog) GetFacilityByName(_ context.Context, name string) (*domain.FacilityRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, exists := c.facilities[name]
	if !exists {
		return nil, storage.ErrNotFound
	}

	recordCopy := *r
	return &recordCopy, nil
}

// Verify interface compliance at compile time.
var _ storage.StoreCatalog = (*StoreCatalog)(nil)
