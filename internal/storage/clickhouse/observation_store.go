package clickhouse

import (
	"context"
	"fmt"
	"time"

	"ratecompare/internal/domain"
	"ratecompare/internal/storage"
)

// ObservationStore implements storage.RateObservationStore using ClickHouse.
type ObservationStore struct {
	conn *Conn
}

// NewObservationStore creates a new ObservationStore.
func NewObservationStore(conn *Conn) *ObservationStore {
	return &ObservationStore{conn: conn}
}

// Compile-time interface check.
var _ storage.RateObservationStore = (*ObservationStore)(nil)

// obsKey is the append-only identity of an observation. MergeTree does
// not enforce uniqueness, so duplicates are rejected before insert.
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

// InsertBulk adds multiple observations. Fails the entire batch on a
// duplicate key, either within the batch or against existing rows.
func (s *ObservationStore) InsertBulk(ctx context.Context, obs []*domain.RateObservation) error {
	if len(obs) == 0 {
		return nil
	}

	seen := make(map[obsKey]struct{}, len(obs))
	for _, o := range obs {
		if o == nil || o.StoreID == "" {
			return storage.ErrInvalidInput
		}
		k := keyOf(o)
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	existing, err := s.existingKeys(ctx, obs)
	if err != nil {
		return fmt.Errorf("check existing keys: %w", err)
	}
	for k := range seen {
		if _, exists := existing[k]; exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO rate_observations (
			store_id, space_type, size, regular_rate, online_rate, promo, date_collected,
			climate_controlled, humidity_controlled, drive_up, elevator, outdoor_access,
			car, rv, boat, other_vehicle, power, covered,
			width, length, height
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, o := range obs {
		err = batch.Append(
			o.StoreID, o.SpaceType, o.Size, o.RegularRate, o.OnlineRate, o.Promo,
			domain.Day(o.DateCollected),
			flag(o.ClimateControlled), flag(o.HumidityControlled), flag(o.DriveUp),
			flag(o.Elevator), flag(o.OutdoorAccess),
			flag(o.Car), flag(o.RV), flag(o.Boat), flag(o.OtherVehicle),
			flag(o.Power), flag(o.Covered),
			o.Width, o.Length, o.Height,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByStore retrieves all observations for a store, ordered by
// date_collected ASC.
func (s *ObservationStore) GetByStore(ctx context.Context, storeID string) ([]*domain.RateObservation, error) {
	query := selectObservations + `
		WHERE store_id = ?
		ORDER BY date_collected ASC, size ASC
	`

	rows, err := s.conn.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("query by store: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// GetByDateRange retrieves observations for a store collected within
// [from, to] (inclusive, calendar dates).
func (s *ObservationStore) GetByDateRange(ctx context.Context, storeID string, from, to time.Time) ([]*domain.RateObservation, error) {
	query := selectObservations + `
		WHERE store_id = ? AND date_collected >= ? AND date_collected <= ?
		ORDER BY date_collected ASC, size ASC
	`

	rows, err := s.conn.Query(ctx, query, storeID, domain.Day(from), domain.Day(to))
	if err != nil {
		return nil, fmt.Errorf("query by date range: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// DatesWithData reports, per store, the calendar dates within [from, to]
// that have at least one observation.
func (s *ObservationStore) DatesWithData(ctx context.Context, storeIDs []string, from, to time.Time) (map[string]map[time.Time]struct{}, error) {
	result := make(map[string]map[time.Time]struct{}, len(storeIDs))
	for _, id := range storeIDs {
		result[id] = make(map[time.Time]struct{})
	}
	if len(storeIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT DISTINCT store_id, date_collected
		FROM rate_observations
		WHERE store_id IN (?) AND date_collected >= ? AND date_collected <= ?
	`

	rows, err := s.conn.Query(ctx, query, storeIDs, domain.Day(from), domain.Day(to))
	if err != nil {
		return nil, fmt.Errorf("query dates with data: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var storeID string
		var date time.Time
		if err := rows.Scan(&storeID, &date); err != nil {
			return nil, fmt.Errorf("scan date row: %w", err)
		}
		dates, ok := result[storeID]
		if !ok {
			dates = make(map[time.Time]struct{})
			result[storeID] = dates
		}
		dates[domain.Day(date)] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate date rows: %w", err)
	}

	return result, nil
}

// existingKeys loads the identity keys already stored for the stores and
// date span the batch touches. One query instead of one per row.
func (s *ObservationStore) existingKeys(ctx context.Context, obs []*domain.RateObservation) (map[obsKey]struct{}, error) {
	storeSet := make(map[string]struct{})
	var minDate, maxDate time.Time
	for i, o := range obs {
		storeSet[o.StoreID] = struct{}{}
		d := domain.Day(o.DateCollected)
		if i == 0 || d.Before(minDate) {
			minDate = d
		}
		if i == 0 || d.After(maxDate) {
			maxDate = d
		}
	}
	storeIDs := make([]string, 0, len(storeSet))
	for id := range storeSet {
		storeIDs = append(storeIDs, id)
	}

	query := `
		SELECT DISTINCT store_id, size, date_collected,
			climate_controlled, drive_up, elevator, outdoor_access
		FROM rate_observations
		WHERE store_id IN (?) AND date_collected >= ? AND date_collected <= ?
	`

	rows, err := s.conn.Query(ctx, query, storeIDs, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("query existing keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[obsKey]struct{})
	for rows.Next() {
		var k obsKey
		var date time.Time
		var climate, driveUp, elevator, outdoor uint8
		if err := rows.Scan(&k.storeID, &k.size, &date, &climate, &driveUp, &elevator, &outdoor); err != nil {
			return nil, fmt.Errorf("scan key row: %w", err)
		}
		k.date = domain.Day(date)
		k.climate = climate != 0
		k.driveUp = driveUp != 0
		k.elevator = elevator != 0
		k.outdoor = outdoor != 0
		keys[k] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate key rows: %w", err)
	}

	return keys, nil
}

const selectObservations = `
	SELECT store_id, space_type, size, regular_rate, online_rate, promo, date_collected,
		climate_controlled, humidity_controlled, drive_up, elevator, outdoor_access,
		car, rv, boat, other_vehicle, power, covered,
		width, length, height
	FROM rate_observations
`

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanObservations scans multiple rows into a slice of RateObservation.
func scanObservations(rows chRows) ([]*domain.RateObservation, error) {
	var obs []*domain.RateObservation

	for rows.Next() {
		var o domain.RateObservation
		var date time.Time
		var climate, humidity, driveUp, elevator, outdoor uint8
		var car, rv, boat, other, power, covered uint8

		err := rows.Scan(
			&o.StoreID, &o.SpaceType, &o.Size, &o.RegularRate, &o.OnlineRate, &o.Promo, &date,
			&climate, &humidity, &driveUp, &elevator, &outdoor,
			&car, &rv, &boat, &other, &power, &covered,
			&o.Width, &o.Length, &o.Height,
		)
		if err != nil {
			return nil, fmt.Errorf("scan observation row: %w", err)
		}

		o.DateCollected = domain.Day(date)
		o.ClimateControlled = climate != 0
		o.HumidityControlled = humidity != 0
		o.DriveUp = driveUp != 0
		o.Elevator = elevator != 0
		o.OutdoorAccess = outdoor != 0
		o.Car = car != 0
		o.RV = rv != 0
		o.Boat = boat != 0
		o.OtherVehicle = other != 0
		o.Power = power != 0
		o.Covered = covered != 0
		obs = append(obs, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observation rows: %w", err)
	}

	return obs, nil
}

func flag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
