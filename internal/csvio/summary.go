package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"ratecompare/internal/domain"
)

// summaryHeader is the grouped summary layout: one row per store per
// (size, feature) group, then an AVERAGE row closing each group.
var summaryHeader = buildSummaryHeader()

func buildSummaryHeader() []string {
	header := []string{"Unit Size", "Feature", "Competitor", "Distance"}
	for _, label := range domain.MonthLabels {
		header = append(header, label+" In Store")
	}
	for _, label := range domain.MonthLabels {
		header = append(header, label+" Asking UnAdj")
	}
	for _, label := range domain.MonthLabels {
		header = append(header, label+" Asking Adj")
	}
	for _, label := range domain.WindowLabels {
		header = append(header, label+" In Store")
	}
	for _, label := range domain.WindowLabels {
		header = append(header, label+" Asking UnAdj")
	}
	for _, label := range domain.WindowLabels {
		header = append(header, label+" Asking Adj")
	}
	return append(header, "Adjustment %", "Records", "Market Share %")
}

// AverageRowLabel marks the group-closing aggregate row.
const AverageRowLabel = "AVERAGE"

// WriteSummary writes the grouped comparison table as CSV. Missing
// averages render as "N/A", never as zero. Groups are separated by a
// blank row.
func WriteSummary(w io.Writer, groups []domain.GroupedComparison) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, g := range groups {
		for _, st := range g.Stores {
			row := []string{
				g.Size,
				string(g.Feature),
				st.StoreName,
				strconv.FormatFloat(st.Distance, 'f', 1, 64),
			}
			row = appendMonths(row, st.Months)
			row = appendWindows(row, st.Windows)
			row = append(row,
				fmt.Sprintf("%.1f%%", st.Adjustment*100),
				strconv.Itoa(st.Records),
				"",
			)
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write store row: %w", err)
			}
		}

		avg := []string{g.Size, string(g.Feature), AverageRowLabel, ""}
		avg = appendMonths(avg, g.GroupMonths)
		avg = appendWindows(avg, g.Group)
		avg = append(avg,
			"",
			strconv.Itoa(g.Records),
			fmt.Sprintf("%.1f", g.MarketShare),
		)
		if err := cw.Write(avg); err != nil {
			return fmt.Errorf("write average row: %w", err)
		}

		if err := cw.Write(make([]string, len(summaryHeader))); err != nil {
			return fmt.Errorf("write separator: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func appendMonths(row []string, months [12]domain.WindowAverages) []string {
	for _, m := range months {
		row = append(row, naPrice(m.InStore))
	}
	for _, m := range months {
		row = append(row, naPrice(m.Asking))
	}
	for _, m := range months {
		row = append(row, naPrice(m.AdjustedAsking))
	}
	return row
}

func appendWindows(row []string, windows [domain.WindowCount]domain.WindowAverages) []string {
	for _, w := range windows {
		row = append(row, naPrice(w.InStore))
	}
	for _, w := range windows {
		row = append(row, naPrice(w.Asking))
	}
	for _, w := range windows {
		row = append(row, naPrice(w.AdjustedAsking))
	}
	return row
}

// naPrice renders an optional average as a dollar figure or the N/A
// sentinel.
func naPrice(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *v)
}
