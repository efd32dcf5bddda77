package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vidaview/internal/app/dto"
)

func TestRevenueWorkbook(t *testing.T) {
	chart := dto.RevenueChart{
		Currency: "IDR",
		Points: []dto.RevenuePoint{
			{Month: "January 2026", Revenue: 500},
			{Month: "February 2026", Revenue: 1100},
		},
	}

	data, err := RevenueWorkbook(chart)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{RevenueSheet}, f.GetSheetList())
	rows, err := f.GetRows(RevenueSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Month", "Revenue (IDR)"}, rows[0])
	assert.Equal(t, []string{"January 2026", "500"}, rows[1])
	assert.Equal(t, []string{"February 2026", "1100"}, rows[2])

	formula, err := f.GetCellFormula(RevenueSheet, "B4")
	require.NoError(t, err)
	assert.Equal(t, "SUM(B2:B3)", formula)
}

func TestRevenueWorkbookEmptyChart(t *testing.T) {
	data, err := RevenueWorkbook(dto.RevenueChart{Currency: "USD"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	label, err := f.GetCellValue(RevenueSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Total", label)
}
