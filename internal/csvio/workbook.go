package csvio

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"ratecompare/internal/domain"
)

const summarySheet = "Rate Comparison"

// WriteWorkbook writes the grouped comparison table as an Excel
// workbook with one sheet, mirroring the summary CSV layout with a
// bold header and frozen top row.
func WriteWorkbook(w io.Writer, groups []domain.GroupedComparison) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for col, name := range summaryHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(summarySheet, cell, name); err != nil {
			return fmt.Errorf("set header: %w", err)
		}
		if err := f.SetCellStyle(summarySheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}

	rowNum := 2
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
			if err := writeSheetRow(f, rowNum, row); err != nil {
				return err
			}
			rowNum++
		}

		avg := []string{g.Size, string(g.Feature), AverageRowLabel, ""}
		avg = appendMonths(avg, g.GroupMonths)
		avg = appendWindows(avg, g.Group)
		avg = append(avg,
			"",
			strconv.Itoa(g.Records),
			fmt.Sprintf("%.1f", g.MarketShare),
		)
		if err := writeSheetRow(f, rowNum, avg); err != nil {
			return err
		}
		rowNum += 2 // blank spacer row between groups
	}

	if err := f.SetPanes(summarySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheetRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("row cell: %w", err)
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(summarySheet, cell, &cells); err != nil {
		return fmt.Errorf("set row %d: %w", rowNum, err)
	}
	return nil
}
