package domain

import "testing"

func TestClassifyFeatures_DecisionTable(t *testing.T) {
	tests := []struct {
		name                               string
		climate, driveUp, elevator, outdoor bool
		want                               FeatureCode
	}{
		{"drive-up climate", true, true, false, false, FeatureDUCC},
		{"drive-up non-climate", false, true, false, false, FeatureDU},
		{"drive-up outdoor climate", true, true, false, true, FeatureDUCC},
		{"drive-up outdoor non-climate", false, true, false, true, FeatureDU},
		{"elevator climate", true, false, true, false, FeatureECC},
		{"elevator non-climate", false, false, true, false, FeatureENCC},
		{"ground climate", true, false, false, false, FeatureGLCC},
		{"ground non-climate", false, false, false, false, FeatureGNCC},
		{"drive-up and elevator conflict", false, true, true, false, FeatureNA},
		{"drive-up and elevator climate conflict", true, true, true, true, FeatureNA},
		{"elevator with outdoor conflict", true, false, true, true, FeatureNA},
		{"outdoor without drive-up conflict", false, false, false, true, FeatureNA},
		{"outdoor without drive-up climate conflict", true, false, false, true, FeatureNA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyFeatures(tt.climate, tt.driveUp, tt.elevator, tt.outdoor)
			if got != tt.want {
				t.Errorf("ClassifyFeatures(%v,%v,%v,%v) = %q, want %q",
					tt.climate, tt.driveUp, tt.elevator, tt.outdoor, got, tt.want)
			}
		})
	}
}

func TestClassifyFeatures_Totality(t *testing.T) {
	defined := map[FeatureCode]bool{
		FeatureDUCC: true, FeatureDU: true,
		FeatureECC: true, FeatureENCC: true,
		FeatureGLCC: true, FeatureGNCC: true,
		FeatureNA: true,
	}

	// All 8 access combinations x 2 climate states must resolve to a
	// defined outcome.
	for i := 0; i < 16; i++ {
		climate := i&1 != 0
		driveUp := i&2 != 0
		elevator := i&4 != 0
		outdoor := i&8 != 0

		got := ClassifyFeatures(climate, driveUp, elevator, outdoor)
		if !defined[got] {
			t.Errorf("ClassifyFeatures(%v,%v,%v,%v) returned undefined code %q",
				climate, driveUp, elevator, outdoor, got)
		}
	}
}

func TestFeatureDescription(t *testing.T) {
	tests := []struct {
		name string
		rec  RateRecord
		want string
	}{
		{
			"drive-up climate",
			RateRecord{DriveUp: true, ClimateControlled: true, UnitType: "Unit"},
			"Drive-Up / Climate Controlled",
		},
		{
			"elevator humidity",
			RateRecord{Elevator: true, HumidityControlled: true, UnitType: "Unit"},
			"Elevator / Humidity Controlled",
		},
		{
			"outdoor non-climate",
			RateRecord{OutdoorAccess: true},
			"Exterior-Outdoor / Non-Climate",
		},
		{
			"ground level with distinct unit type",
			RateRecord{UnitType: "Locker"},
			"Ground Level / Non-Climate [Locker]",
		},
		{
			"drive-up wins over outdoor",
			RateRecord{DriveUp: true, OutdoorAccess: true, UnitType: "unit"},
			"Drive-Up / Non-Climate",
		},
		{
			"climate wins over humidity",
			RateRecord{ClimateControlled: true, HumidityControlled: true},
			"Ground Level / Climate Controlled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.FeatureDescription(); got != tt.want {
				t.Errorf("FeatureDescription() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordKey_FlagsDistinguishUnitClasses(t *testing.T) {
	base := RateRecord{StoreID: "101", Size: "10x10", Date: Day(mustDate(t, 2025, 6, 1))}

	a := base
	a.ClimateControlled = true
	b := base

	if a.Key() == b.Key() {
		t.Error("records differing only in climate flag must have distinct keys")
	}

	c := base
	if b.Key() != c.Key() {
		t.Error("identical records must share one key")
	}
}
