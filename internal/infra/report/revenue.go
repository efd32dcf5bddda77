// Package report renders dashboard data as spreadsheets.
package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"vidaview/internal/app/dto"
)

const (
	RevenueSheet    = "Revenue"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// RevenueWorkbook writes one row per chart point plus a SUM total row.
func RevenueWorkbook(chart dto.RevenueChart) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(RevenueSheet)
	if err != nil {
		return nil, fmt.Errorf("report: create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("report: drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("report: header style: %w", err)
	}

	header := []any{"Month", fmt.Sprintf("Revenue (%s)", chart.Currency)}
	if err := f.SetSheetRow(RevenueSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("report: header: %w", err)
	}
	if err := f.SetCellStyle(RevenueSheet, "A1", "B1", headerStyle); err != nil {
		return nil, fmt.Errorf("report: header style: %w", err)
	}
	if err := f.SetColWidth(RevenueSheet, "A", "B", 22); err != nil {
		return nil, fmt.Errorf("report: column width: %w", err)
	}

	for i, point := range chart.Points {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{point.Month, point.Revenue}
		if err := f.SetSheetRow(RevenueSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("report: row %d: %w", i+2, err)
		}
	}

	totalRow := len(chart.Points) + 2
	labelCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	sumCell, _ := excelize.CoordinatesToCellName(2, totalRow)
	if err := f.SetCellValue(RevenueSheet, labelCell, "Total"); err != nil {
		return nil, err
	}
	formula := "0"
	if len(chart.Points) > 0 {
		formula = fmt.Sprintf("SUM(B2:B%d)", totalRow-1)
	}
	if err := f.SetCellFormula(RevenueSheet, sumCell, formula); err != nil {
		return nil, fmt.Errorf("report: total: %w", err)
	}
	if err := f.SetCellStyle(RevenueSheet, labelCell, sumCell, headerStyle); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("report: write: %w", err)
	}
	return buf.Bytes(), nil
}
