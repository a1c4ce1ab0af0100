package domain

import "time"

// RateObservation is one raw historical rate row as persisted in the
// observation store. Corresponds to the rate_observations table in
// ClickHouse. This is the pre-normalization shape: prices may be
// missing and the amenity flags mirror the collector's schema.
type RateObservation struct {
	StoreID       string
	SpaceType     string
	Size          string
	RegularRate   *float64
	OnlineRate    *float64
	Promo         string
	DateCollected time.Time

	ClimateControlled  bool
	HumidityControlled bool
	DriveUp            bool
	Elevator           bool
	OutdoorAccess      bool

	// Vehicle and amenity flags carried through for the feature text.
	Car          bool
	RV           bool
	Boat         bool
	OtherVehicle bool
	Power        bool
	Covered      bool

	Width  *float64
	Length *float64
	Height *float64
}
