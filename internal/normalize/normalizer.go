// Package normalize converts heterogeneous raw rate rows (vendor API
// payloads, observation store rows, or parsed CSV lines) into the
// canonical RateRecord shape. Resolution is best effort: rows without
// a resolvable store identifier are dropped silently, and unparseable
// prices normalize to absent, never to zero.
package normalize

import (
	"strconv"
	"strings"

	"ratecompare/internal/domain"
)

// Record builds a canonical RateRecord from a raw row of any source
// shape. The second return is false when the row must be dropped
// (no resolvable store identifier).
func Record(row map[string]any, source domain.Source) (domain.RateRecord, bool) {
	idx := indexRow(row)

	storeID := idx.str(FieldStoreID)
	if storeID == "" {
		return domain.RateRecord{}, false
	}

	rec := domain.RateRecord{
		StoreID:   storeID,
		StoreName: idx.str(FieldStoreName),
		Address:   idx.str(FieldAddress),
		City:      idx.str(FieldCity),
		State:     idx.str(FieldState),
		Zip:       idx.str(FieldZip),

		UnitType: idx.str(FieldUnitType),
		Size:     idx.str(FieldSize),
		Features: idx.str(FieldFeatures),

		ClimateControlled:  idx.flag(FieldClimate),
		HumidityControlled: idx.flag(FieldHumidity),
		DriveUp:            idx.flag(FieldDriveUp),
		Elevator:           idx.flag(FieldElevator),
		OutdoorAccess:      idx.flag(FieldOutdoor),

		WalkInPrice: idx.price(FieldWalkIn),
		OnlinePrice: idx.price(FieldOnline),
		Promo:       idx.str(FieldPromo),
		Source:      source,
	}

	if dist := idx.price(FieldDistance); dist != nil {
		rec.Distance = *dist
	}
	if d, ok := idx.date(FieldDate); ok {
		rec.Date = domain.Day(d)
	}

	return rec, true
}

// Records normalizes a batch of raw rows, dropping unresolvable ones.
func Records(rows []map[string]any, source domain.Source) []domain.RateRecord {
	out := make([]domain.RateRecord, 0, len(rows))
	for _, row := range rows {
		if rec, ok := Record(row, source); ok {
			out = append(out, rec)
		}
	}
	return out
}

// FromObservation converts a raw observation store row into a canonical
// record, attaching store identity from the catalog when available.
// Any vehicle flag implies drive-up access for classification purposes.
func FromObservation(obs *domain.RateObservation, info *domain.StoreInfo) domain.RateRecord {
	rec := domain.RateRecord{
		StoreID:  obs.StoreID,
		UnitType: obs.SpaceType,
		Size:     obs.Size,
		Features: AmenityText(obs),

		ClimateControlled:  obs.ClimateControlled,
		HumidityControlled: obs.HumidityControlled,
		DriveUp:            obs.DriveUp || obs.Car || obs.RV || obs.Boat || obs.OtherVehicle,
		Elevator:           obs.Elevator,
		OutdoorAccess:      obs.OutdoorAccess,

		WalkInPrice: obs.RegularRate,
		OnlinePrice: obs.OnlineRate,
		Date:        domain.Day(obs.DateCollected),
		Promo:       obs.Promo,
		Source:      domain.SourceDatabase,
	}

	if info != nil {
		rec.StoreName = info.Name
		rec.Address = info.Address
		rec.City = info.City
		rec.State = info.State
		rec.Zip = info.Zip
		rec.Distance = info.Distance
	}

	return rec
}

// FromObservations converts a batch of observation rows, resolving
// store identity through the catalog map.
func FromObservations(obs []*domain.RateObservation, stores map[string]*domain.StoreInfo) []domain.RateRecord {
	out := make([]domain.RateRecord, 0, len(obs))
	for _, o := range obs {
		out = append(out, FromObservation(o, stores[o.StoreID]))
	}
	return out
}

// AmenityText builds the detailed feature string for an observation
// row from its amenity flags.
func AmenityText(obs *domain.RateObservation) string {
	var parts []string

	if obs.ClimateControlled {
		parts = append(parts, "Climate Controlled")
	}
	if obs.OutdoorAccess {
		parts = append(parts, "Outdoor Access")
	} else {
		parts = append(parts, "Indoor Access")
	}
	if obs.Power {
		parts = append(parts, "Power")
	}
	if obs.Covered {
		parts = append(parts, "Covered")
	} else {
		parts = append(parts, "Not Covered")
	}

	switch {
	case obs.DriveUp:
		parts = append(parts, "Drive Up Access")
	case obs.Elevator:
		parts = append(parts, "Elevator Access")
	case !obs.Car && !obs.RV && !obs.Boat && !obs.OtherVehicle:
		parts = append(parts, "Ground Floor Access")
	}

	if obs.Car {
		parts = append(parts, "Vehicle Parking")
	}
	if obs.RV {
		parts = append(parts, "RV Parking")
	}
	if obs.Boat {
		parts = append(parts, "Boat Parking")
	}
	if obs.OtherVehicle {
		parts = append(parts, "Other Parking")
	}

	return strings.Join(parts, ", ")
}

// NormalizeSize folds a size string to its matching form: lowercase
// with whitespace and apostrophes stripped.
func NormalizeSize(size string) string {
	s := strings.ToLower(size)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "'", "")
	return s
}

// SizeArea parses the numeric sort value of a size string: width x
// length when two dimensions are present, the sole numeric value
// otherwise, 0 when nothing parses.
func SizeArea(size string) float64 {
	s := strings.ReplaceAll(NormalizeSize(size), "x", " ")
	parts := strings.Fields(s)

	var nums []float64
	for _, p := range parts {
		if v, err := strconv.ParseFloat(p, 64); err == nil {
			nums = append(nums, v)
		}
	}

	switch {
	case len(nums) >= 2:
		return nums[0] * nums[1]
	case len(nums) == 1:
		return nums[0]
	default:
		return 0
	}
}
