package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ratecompare/internal/domain"
	"ratecompare/internal/storage"
)

// ObservationStore is an in-memory implementation of storage.RateObservationStore.
type ObservationStore struct {
	mu   sync.RWMutex
	data map[obsKey]*domain.RateObservation
}

// obsKey mirrors the append-only identity used by the ClickHouse store.
type obsKey struct {
	storeID string
	size    string
	date    time.Time

	climate  bool
	driveUp  bool
	elevator bool
	outdoor  bool
}

func keyOf(o *domain.RateObservation) obsKey {
	return obsKey{
		storeID:  o.StoreID,
		size:     o.Size,
		date:     domain.Day(o.DateCollected),
		climate:  o.ClimateControlled,
		driveUp:  o.DriveUp,
		elevator: o.Elevator,
		outdoor:  o.OutdoorAccess,
	}
}

// NewObservationStore creates a new in-memory observation store.
func NewObservationStore() *ObservationStore {
	return &ObservationStore{
		data: make(map[obsKey]*domain.RateObservation),
	}
}

// InsertBulk adds multiple observations. Fails the entire batch on any
// duplicate key, leaving the store unchanged.
func (s *ObservationStore) InsertBulk(_ context.Context, obs []*domain.RateObservation) error {
	if len(obs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[obsKey]struct{}, len(obs))
	for _, o := range obs {
		if o == nil || o.StoreID == "" {
			return storage.ErrInvalidInput
		}
		k := keyOf(o)
		if _, dup := seen[k]; dup {
			return storage.ErrDuplicateKey
		}
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, o := range obs {
		obsCopy := *o
		obsCopy.DateCollected = domain.Day(o.DateCollected)
		s.data[keyOf(o)] = &obsCopy
	}
	return nil
}

// GetByStore retrieves all observations for a store, ordered by
// date_collected ASC, size ASC.
func (s *ObservationStore) GetByStore(_ context.Context, storeID string) ([]*domain.RateObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RateObservation
	for _, o := range s.data {
		if o.StoreID == storeID {
			obsCopy := *o
			result = append(result, &obsCopy)
		}
	}

	sortObservations(result)
	return result, nil
}

// GetByDateRange retrieves observations for a store collected within
// [from, to] (inclusive, calendar dates).
func (s *ObservationStore) GetByDateRange(_ context.Context, storeID string, from, to time.Time) ([]*domain.RateObservation, error) {
	fromDay := domain.Day(from)
	toDay := domain.Day(to)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RateObservation
	for _, o := range s.data {
		if o.StoreID != storeID {
			continue
		}
		d := o.DateCollected
		if d.Before(fromDay) || d.After(toDay) {
			continue
		}
		obsCopy := *o
		result = append(result, &obsCopy)
	}

	sortObservations(result)
	return result, nil
}

// DatesWithData reports, per store, the calendar dates within [from, to]
// that have at least one observation.
func (s *ObservationStore) DatesWithData(_ context.Context, storeIDs []string, from, to time.Time) (map[string]map[time.Time]struct{}, error) {
	fromDay := domain.Day(from)
	toDay := domain.Day(to)

	result := make(map[string]map[time.Time]struct{}, len(storeIDs))
	wanted := make(map[string]struct{}, len(storeIDs))
	for _, id := range storeIDs {
		result[id] = make(map[time.Time]struct{})
		wanted[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.data {
		if _, ok := wanted[o.StoreID]; !ok {
			continue
		}
		d := o.DateCollected
		if d.Before(fromDay) || d.After(toDay) {
			continue
		}
		result[o.StoreID][d] = struct{}{}
	}

	return result, nil
}

func sortObservations(obs []*domain.RateObservation) {
	sort.Slice(obs, func(i, j int) bool {
		if !obs[i].DateCollected.Equal(obs[j].DateCollected) {
			return obs[i].DateCollected.Before(obs[j].DateCollected)
		}
		return obs[i].Size < obs[j].Size
	})
}

// Verify interface compliance at compile time.
var _ storage.RateObservationStore = (*ObservationStore)(nil)
