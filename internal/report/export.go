package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteCSV renders an export as CSV bytes. Fields containing commas or
// quotes are quoted with doubled quotes per RFC 4180.
func WriteCSV(data ExportData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(data.Header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range data.Rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

const exportSheet = "Report"

// WriteXLSX renders an export as an XLSX workbook. When the export carries
// a Type column, Income cells are styled green and Expense cells red; the
// sign of an amount is conveyed by that column, never by a minus character.
func WriteXLSX(title string, data ExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2C3E50"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	incomeStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "28A745"}})
	if err != nil {
		return nil, fmt.Errorf("failed to create income style: %w", err)
	}
	expenseStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "DC3545"}})
	if err != nil {
		return nil, fmt.Errorf("failed to create expense style: %w", err)
	}

	if err := f.SetCellValue(exportSheet, "A1", title); err != nil {
		return nil, fmt.Errorf("failed to write title: %w", err)
	}

	typeCol := -1
	for i, name := range data.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(exportSheet, cell, name); err != nil {
			return nil, fmt.Errorf("failed to write header cell: %w", err)
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header cell: %w", err)
		}
		if name == "Type" {
			typeCol = i
		}
	}

	for rowIdx, row := range data.Rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+3)
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
			if colIdx == typeCol {
				style := expenseStyle
				if value == "Income" {
					style = incomeStyle
				}
				if err := f.SetCellStyle(exportSheet, cell, cell, style); err != nil {
					return nil, fmt.Errorf("failed to style cell: %w", err)
				}
			}
		}
	}

	// Totals block under the table, recomputed from the participating rows.
	totalsRow := len(data.Rows) + 4
	totals := [][2]string{
		{"Total Income", FormatCurrency(data.TotalIncome)},
		{"Total Expenses", FormatCurrency(data.TotalExpenses)},
		{"Net Balance", FormatNet(data.NetBalance)},
	}
	for i, t := range totals {
		labelCell, _ := excelize.CoordinatesToCellName(1, totalsRow+i)
		valueCell, _ := excelize.CoordinatesToCellName(2, totalsRow+i)
		if err := f.SetCellValue(exportSheet, labelCell, t[0]); err != nil {
			return nil, fmt.Errorf("failed to write totals label: %w", err)
		}
		if err := f.SetCellValue(exportSheet, valueCell, t[1]); err != nil {
			return nil, fmt.Errorf("failed to write totals value: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
