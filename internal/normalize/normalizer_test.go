package normalize

import (
	"testing"
	"time"

	"ratecompare/internal/domain"
)

func TestRecord_AliasResolution(t *testing.T) {
	// Database query shape
	row := map[string]any{
		"Store_ID":      float64(4821),
		"Spacetype":     "Unit",
		"Size":          "10x10",
		"Regular_Rate":  125.0,
		"Online_Rate":   99.5,
		"Date_Collected": "2025-06-15",
		"CC":            1,
		"Drive_Up":      0,
	}

	rec, ok := Record(row, domain.SourceDatabase)
	if !ok {
		t.Fatal("Record() dropped a resolvable row")
	}
	if rec.StoreID != "4821" {
		t.Errorf("StoreID = %q, want %q", rec.StoreID, "4821")
	}
	if rec.WalkInPrice == nil || *rec.WalkInPrice != 125.0 {
		t.Errorf("WalkInPrice = %v, want 125.0", rec.WalkInPrice)
	}
	if rec.OnlinePrice == nil || *rec.OnlinePrice != 99.5 {
		t.Errorf("OnlinePrice = %v, want 99.5", rec.OnlinePrice)
	}
	if !rec.ClimateControlled {
		t.Error("CC=1 must resolve the climate flag")
	}
	want := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if !rec.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", rec.Date, want)
	}
}

func TestRecord_AliasVariantsMapToSameField(t *testing.T) {
	variants := []map[string]any{
		{"storeid": "7", "regular_rate": 80.0},
		{"storeid": "7", "regularrate": 80.0},
		{"storeid": "7", "rate": 80.0},
		{"storeid": "7", "Walk-In Price": 80.0},
	}

	for i, row := range variants {
		rec, ok := Record(row, domain.SourceAPI)
		if !ok {
			t.Fatalf("variant %d dropped", i)
		}
		if rec.WalkInPrice == nil || *rec.WalkInPrice != 80 {
			t.Errorf("variant %d: WalkInPrice = %v, want 80", i, rec.WalkInPrice)
		}
	}
}

func TestRecord_WalkInAliasPriorityOrder(t *testing.T) {
	// When multiple aliases are present, the higher-priority one wins.
	row := map[string]any{
		"storeid":       "7",
		"walk_in_price": 90.0,
		"regular_rate":  80.0,
	}
	rec, _ := Record(row, domain.SourceAPI)
	if rec.WalkInPrice == nil || *rec.WalkInPrice != 90 {
		t.Errorf("WalkInPrice = %v, want 90 (walk_in_price outranks regular_rate)", rec.WalkInPrice)
	}
}

func TestRecord_MissingStoreIDDropsRow(t *testing.T) {
	row := map[string]any{"size": "5x5", "rate": 50.0}
	if _, ok := Record(row, domain.SourceDatabase); ok {
		t.Error("row without store identifier must be dropped")
	}
}

func TestRecord_NonNumericPriceIsAbsent(t *testing.T) {
	row := map[string]any{"storeid": "7", "rate": "call for price", "online_rate": "$1,299.00"}
	rec, _ := Record(row, domain.SourceAPI)

	if rec.WalkInPrice != nil {
		t.Errorf("non-numeric walk-in must be nil, got %v", *rec.WalkInPrice)
	}
	if rec.OnlinePrice == nil || *rec.OnlinePrice != 1299 {
		t.Errorf("formatted price must parse, got %v", rec.OnlinePrice)
	}
}

func TestRecord_YesNoFlags(t *testing.T) {
	row := map[string]any{
		"storeid":            "7",
		"Climate Controlled": "Yes",
		"Drive-Up":           "No",
		"Elevator":           "true",
	}
	rec, _ := Record(row, domain.SourceDatabase)

	if !rec.ClimateControlled || rec.DriveUp || !rec.Elevator {
		t.Errorf("flag parsing wrong: climate=%v driveup=%v elevator=%v",
			rec.ClimateControlled, rec.DriveUp, rec.Elevator)
	}
}

func TestFromObservation_VehicleFlagsImplyDriveUp(t *testing.T) {
	obs := &domain.RateObservation{
		StoreID:       "12",
		Size:          "10x20",
		DateCollected: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		RV:            true,
	}

	rec := FromObservation(obs, nil)
	if !rec.DriveUp {
		t.Error("RV flag must imply drive-up access")
	}
	if rec.Source != domain.SourceDatabase {
		t.Errorf("Source = %q, want Database", rec.Source)
	}
}

func TestAmenityText(t *testing.T) {
	obs := &domain.RateObservation{
		ClimateControlled: true,
		Power:             true,
		DriveUp:           true,
		Car:               true,
	}
	got := AmenityText(obs)
	want := "Climate Controlled, Indoor Access, Power, Not Covered, Drive Up Access, Vehicle Parking"
	if got != want {
		t.Errorf("AmenityText() = %q, want %q", got, want)
	}
}

func TestNormalizeSize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"10x10", "10x10"},
		{"10 X 10", "10x10"},
		{"5' x 10'", "5x10"},
		{" 10x15 ", "10x15"},
	}
	for _, tt := range tests {
		if got := NormalizeSize(tt.in); got != tt.want {
			t.Errorf("NormalizeSize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSizeArea(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"10x10", 100},
		{"5x10", 50},
		{"5x5x8", 25}, // height ignored: width x length
		{"200", 200},
		{"parking", 0},
	}
	for _, tt := range tests {
		if got := SizeArea(tt.in); got != tt.want {
			t.Errorf("SizeArea(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
