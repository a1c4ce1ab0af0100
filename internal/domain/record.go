package domain

import "time"

// RateRecord is one observed price quote for one unit type at one store
// on one calendar date. Records are built by the normalizer and treated
// as immutable afterwards; operations that change the working set
// (merge, exclusion, multiplier) produce new slices.
type RateRecord struct {
	StoreID   string // tolerates numeric or string source keys, always stored as string
	StoreName string
	Address   string
	City      string
	State     string
	Zip       string
	Distance  float64 // miles from the subject store, 0 for the subject itself

	UnitType string
	Size     string // raw size string, e.g. "10x10"
	Features string // human-readable feature text

	ClimateControlled  bool
	HumidityControlled bool
	DriveUp            bool
	Elevator           bool
	OutdoorAccess      bool

	WalkInPrice *float64 // nil when the source had no usable value
	OnlinePrice *float64
	Date        time.Time // calendar date, UTC midnight
	Promo       string
	Source      Source
}

// RecordKey is the dedup identity of an observation. Two records with
// equal keys describe the same observation and only one survives a
// merge. The key carries the feature flags so that two unit classes of
// the same size collected on the same day stay distinct.
type RecordKey struct {
	StoreID string
	Size    string
	Year    int
	Month   time.Month
	Day     int

	ClimateControlled bool
	DriveUp           bool
	Elevator          bool
	OutdoorAccess     bool
}

// Key returns the identity key of the record.
func (r *RateRecord) Key() RecordKey {
	y, m, d := r.Date.Date()
	return RecordKey{
		StoreID:           r.StoreID,
		Size:              r.Size,
		Year:              y,
		Month:             m,
		Day:               d,
		ClimateControlled: r.ClimateControlled,
		DriveUp:           r.DriveUp,
		Elevator:          r.Elevator,
		OutdoorAccess:     r.OutdoorAccess,
	}
}

// PricePoint returns the price used for statistics: the online price
// when present and positive, otherwise the walk-in price. The second
// return is false when the record has no usable price.
func (r *RateRecord) PricePoint() (float64, bool) {
	if r.OnlinePrice != nil && *r.OnlinePrice > 0 {
		return *r.OnlinePrice, true
	}
	if r.WalkInPrice != nil && *r.WalkInPrice > 0 {
		return *r.WalkInPrice, true
	}
	return 0, false
}

// Day normalizes a timestamp to a calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
