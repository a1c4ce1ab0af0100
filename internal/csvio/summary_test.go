package csvio

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"ratecompare/internal/domain"
)

func sampleGroups() []domain.GroupedComparison {
	asking := 100.0
	adjusted := 105.0
	g := domain.GroupedComparison{
		Size:        "10x10",
		Feature:     domain.FeatureGLCC,
		Records:     4,
		MarketShare: 100,
		Stores: []domain.StoreComparison{
			{
				StoreID:    "subj",
				StoreName:  "Subject Store",
				Adjustment: 0,
				Records:    2,
			},
			{
				StoreID:    "comp",
				StoreName:  "Competitor",
				Distance:   1.5,
				Adjustment: 0.05,
				Records:    2,
			},
		},
	}
	g.Stores[1].Windows[domain.WindowT1] = domain.WindowAverages{
		Asking:         &asking,
		AdjustedAsking: &adjusted,
	}
	g.Group[domain.WindowT1].Asking = &asking
	g.Stores[1].Months[4] = domain.WindowAverages{
		Asking:         &asking,
		AdjustedAsking: &adjusted,
	}
	g.GroupMonths[4].Asking = &asking
	return []domain.GroupedComparison{g}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummary(&buf, sampleGroups()); err != nil {
		t.Fatalf("WriteSummary() error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}

	// Header, two store rows, AVERAGE row, separator.
	if len(rows) != 5 {
		t.Fatalf("output = %d rows, want 5", len(rows))
	}
	if rows[0][0] != "Unit Size" {
		t.Errorf("header starts with %q", rows[0][0])
	}
	if rows[1][2] != "Subject Store" {
		t.Errorf("first data row competitor = %q, want subject", rows[1][2])
	}
	if rows[3][2] != AverageRowLabel {
		t.Errorf("group must close with AVERAGE row, got %q", rows[3][2])
	}

	out := strings.Join(rows[2], ",")
	if !strings.Contains(out, "$100.00") || !strings.Contains(out, "$105.00") {
		t.Errorf("competitor row missing window averages: %s", out)
	}
	if !strings.Contains(out, "5.0%") {
		t.Errorf("competitor row missing adjustment: %s", out)
	}

	// Empty windows are N/A sentinels, never zero dollars.
	subject := strings.Join(rows[1], ",")
	if !strings.Contains(subject, "N/A") || strings.Contains(subject, "$0.00") {
		t.Errorf("empty averages must be N/A: %s", subject)
	}
}

func TestWriteSummary_MonthColumns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummary(&buf, sampleGroups()); err != nil {
		t.Fatalf("WriteSummary() error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}

	header := rows[0]
	mayInStore := indexOf(t, header, "May In Store")
	mayAsking := indexOf(t, header, "May Asking UnAdj")
	mayAdj := indexOf(t, header, "May Asking Adj")
	t1InStore := indexOf(t, header, "T-1 In Store")

	// Month blocks come before the trailing-window blocks.
	if !(mayInStore < mayAsking && mayAsking < mayAdj && mayAdj < t1InStore) {
		t.Fatalf("column order wrong: %d, %d, %d, %d", mayInStore, mayAsking, mayAdj, t1InStore)
	}

	comp := rows[2]
	if comp[mayAsking] != "$100.00" {
		t.Errorf("May asking = %q, want $100.00", comp[mayAsking])
	}
	if comp[mayAdj] != "$105.00" {
		t.Errorf("May adjusted = %q, want $105.00", comp[mayAdj])
	}
	if comp[mayInStore] != "N/A" {
		t.Errorf("May in-store with no walk-in prices = %q, want N/A", comp[mayInStore])
	}

	// The AVERAGE row never carries an adjusted monthly figure.
	avg := rows[3]
	if avg[mayAsking] != "$100.00" {
		t.Errorf("AVERAGE May asking = %q, want $100.00", avg[mayAsking])
	}
	if avg[mayAdj] != "N/A" {
		t.Errorf("AVERAGE May adjusted = %q, want N/A", avg[mayAdj])
	}
}

func indexOf(t *testing.T, row []string, name string) int {
	t.Helper()
	for i, v := range row {
		if v == name {
			return i
		}
	}
	t.Fatalf("column %q not found", name)
	return -1
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, sampleGroups()); err != nil {
		t.Fatalf("WriteWorkbook() error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(summarySheet)
	if err != nil {
		t.Fatalf("GetRows() error: %v", err)
	}
	if len(rows) < 4 {
		t.Fatalf("workbook = %d rows, want at least 4", len(rows))
	}
	if rows[0][0] != "Unit Size" {
		t.Errorf("header starts with %q", rows[0][0])
	}
	if rows[1][2] != "Subject Store" || rows[3][2] != AverageRowLabel {
		t.Errorf("row layout wrong: %q, %q", rows[1][2], rows[3][2])
	}
}
