package outlier

import (
	"strings"
	"testing"
	"time"

	"ratecompare/internal/domain"
)

func rec(storeID, size string, day int, climate bool, price float64) domain.RateRecord {
	return domain.RateRecord{
		StoreID:           storeID,
		Size:              size,
		Date:              time.Date(2025, 4, day, 0, 0, 0, 0, time.UTC),
		ClimateControlled: climate,
		OnlinePrice:       &price,
		Source:            domain.SourceAPI,
	}
}

func group(size string, climate bool, prices ...float64) []domain.RateRecord {
	out := make([]domain.RateRecord, len(prices))
	for i, p := range prices {
		out[i] = rec("s", size, i+1, climate, p)
	}
	return out
}

func TestDetect_FlagsExtremePrice(t *testing.T) {
	records := group("10x10", true,
		100, 105, 95, 102, 98, 101, 99, 103, 97, 100, 300)

	got := Detect(records)
	if len(got) != 1 {
		t.Fatalf("Detect() = %d candidates, want 1", len(got))
	}

	c := got[0]
	if p, _ := c.Record.PricePoint(); p != 300 {
		t.Errorf("flagged price = %v, want 300", p)
	}
	if c.Decision != domain.OutlierPending {
		t.Errorf("Decision = %v, want pending", c.Decision)
	}
	if !strings.Contains(c.Reason, "$300.00") || !strings.Contains(c.Reason, "above") {
		t.Errorf("Reason = %q, want price and direction", c.Reason)
	}
}

func TestDetect_NoFlagsInTightGroup(t *testing.T) {
	records := group("10x10", true, 100, 105, 95, 102, 98)

	if got := Detect(records); len(got) != 0 {
		t.Errorf("Detect() = %d candidates, want 0", len(got))
	}
}

func TestDetect_ThresholdIsStrict(t *testing.T) {
	// 21 points at 100 plus symmetric pairs at 110 and 90 put the
	// extremes at exactly 2.5 standard deviations, which must be kept.
	prices := make([]float64, 0, 25)
	for i := 0; i < 21; i++ {
		prices = append(prices, 100)
	}
	prices = append(prices, 110, 110, 90, 90)

	if got := Detect(group("10x10", false, prices...)); len(got) != 0 {
		t.Errorf("points at exactly the threshold flagged: %d candidates", len(got))
	}

	// 11 points at 100 plus one each at 110 and 90 push the extremes
	// just past the threshold.
	prices = prices[:0]
	for i := 0; i < 11; i++ {
		prices = append(prices, 100)
	}
	prices = append(prices, 110, 90)

	got := Detect(group("10x10", false, prices...))
	if len(got) != 2 {
		t.Errorf("points past the threshold not flagged: %d candidates, want 2", len(got))
	}
}

func TestDetect_SkipsSmallGroups(t *testing.T) {
	records := group("10x10", true, 100, 100, 100, 1000)

	if got := Detect(records); len(got) != 0 {
		t.Errorf("group of 4 usable points must be skipped, got %d candidates", len(got))
	}
}

func TestDetect_SkipsZeroStddev(t *testing.T) {
	records := group("10x10", true, 100, 100, 100, 100, 100, 100)

	if got := Detect(records); len(got) != 0 {
		t.Errorf("degenerate group flagged: %d candidates", len(got))
	}
}

func TestDetect_PricelessRecordsDoNotCountTowardGroupSize(t *testing.T) {
	records := group("10x10", true, 100, 100, 100, 1000)
	records = append(records, domain.RateRecord{
		StoreID: "s", Size: "10x10", ClimateControlled: true,
		Date: time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC),
	})

	if got := Detect(records); len(got) != 0 {
		t.Errorf("priceless record padded group to minimum size: %d candidates", len(got))
	}
}

func TestDetect_GroupsByNormalizedSizeAndClimate(t *testing.T) {
	// "10 X 10" and "10x10" are the same group; the climate flag splits it.
	records := group("10x10", true, 100, 102, 98, 101)
	records = append(records, rec("s", "10 X 10", 10, true, 99))
	records = append(records, rec("s", "10x10", 11, false, 500))

	got := Detect(records)
	if len(got) != 0 {
		t.Errorf("non-climate record leaked into climate group: %d candidates", len(got))
	}
}

func TestDetect_SortedByDescendingDeviation(t *testing.T) {
	prices := make([]float64, 0, 32)
	for i := 0; i < 30; i++ {
		prices = append(prices, 100)
	}
	prices = append(prices, 200, 180)

	got := Detect(group("10x10", true, prices...))
	if len(got) != 2 {
		t.Fatalf("Detect() = %d candidates, want 2", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Deviation > got[i-1].Deviation {
			t.Fatalf("candidates not sorted by descending deviation: %v then %v",
				got[i-1].Deviation, got[i].Deviation)
		}
	}
}

func TestApplyExclusions(t *testing.T) {
	records := group("10x10", true, 100, 105, 200)

	excluded := map[domain.RecordKey]struct{}{
		records[2].Key(): {},
	}

	got := ApplyExclusions(records, excluded)
	if len(got) != 2 {
		t.Fatalf("ApplyExclusions() len = %d, want 2", len(got))
	}
	for _, r := range got {
		if p, _ := r.PricePoint(); p == 200 {
			t.Error("excluded record survived")
		}
	}

	// Empty exclusion set returns a copy, not the same backing array.
	copySet := ApplyExclusions(records, nil)
	if len(copySet) != len(records) {
		t.Fatalf("ApplyExclusions(nil) len = %d, want %d", len(copySet), len(records))
	}
	copySet[0].StoreID = "mutated"
	if records[0].StoreID != "s" {
		t.Error("ApplyExclusions(nil) aliased the input slice")
	}
}
