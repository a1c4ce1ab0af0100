// Package csvio reads and writes the flat, human-editable renditions
// of the analysis: the record-level CSV (round-trippable), the grouped
// summary CSV, and an Excel workbook of the same summary.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"ratecompare/internal/domain"
	"ratecompare/internal/normalize"
)

// recordHeader is the record CSV column set. Flags serialize as
// Yes/No, prices as plain decimals, nulls as empty strings. The four
// identity flags are all present so a re-imported set keeps the same
// dedup keys.
var recordHeader = []string{
	"Store ID",
	"Store Name",
	"Address",
	"City",
	"State",
	"Zip",
	"Distance",
	"Unit Type",
	"Size",
	"Features",
	"Climate Controlled",
	"Humidity Controlled",
	"Drive-Up",
	"Elevator",
	"Outdoor Access",
	"Walk-In Price",
	"Online Price",
	"Date",
	"Promo",
	"Source",
}

// WriteRecords writes the record set as a flat CSV, sorted by store
// name, date, then size for stable diffs.
func WriteRecords(w io.Writer, records []domain.RateRecord) error {
	sorted := make([]domain.RateRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].StoreName != sorted[b].StoreName {
			return sorted[a].StoreName < sorted[b].StoreName
		}
		if !sorted[a].Date.Equal(sorted[b].Date) {
			return sorted[a].Date.Before(sorted[b].Date)
		}
		return sorted[a].Size < sorted[b].Size
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(recordHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range sorted {
		row := []string{
			r.StoreID,
			r.StoreName,
			r.Address,
			r.City,
			r.State,
			r.Zip,
			formatFloat(r.Distance),
			r.UnitType,
			r.Size,
			r.Features,
			yesNo(r.ClimateControlled),
			yesNo(r.HumidityControlled),
			yesNo(r.DriveUp),
			yesNo(r.Elevator),
			yesNo(r.OutdoorAccess),
			formatPrice(r.WalkInPrice),
			formatPrice(r.OnlinePrice),
			r.Date.Format("2006-01-02"),
			r.Promo,
			string(r.Source),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadRecords parses a record CSV back into canonical records. Rows
// are routed through the normalizer's field resolution, so edited
// files with reordered or renamed-but-recognizable columns still
// import. Rows without a store id are dropped, per the normalizer
// contract.
func ReadRecords(r io.Reader) ([]domain.RateRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows []map[string]any
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		row := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(fields) && fields[i] != "" {
				row[col] = fields[i]
			}
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}

	// Source column survives round trips; rows without one (hand-built
	// files) default to Database provenance.
	var out []domain.RateRecord
	for _, row := range rows {
		source := domain.SourceDatabase
		if s, ok := row["Source"].(string); ok && domain.Source(s).IsValid() {
			source = domain.Source(s)
		}
		if rec, ok := normalize.Record(row, source); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatPrice(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
