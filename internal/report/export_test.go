package report

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteCSV_EscapesQuotesAndCommas(t *testing.T) {
	data := ExportData{
		Header: []string{"Title", "Amount"},
		Rows: [][]string{
			{`Books, "new" stock`, "Rs. 1,200"},
		},
	}

	out, err := WriteCSV(data)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `Books, "new" stock`, records[1][0])
	assert.Equal(t, "Rs. 1,200", records[1][1])
}

func TestWriteXLSX_HeaderAndTotals(t *testing.T) {
	data := ExportRows(sampleSummary(), Filters{})

	out, err := WriteXLSX("Finance Report", data)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Report", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Finance Report", title)

	header, err := f.GetCellValue("Report", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Type", header)

	firstType, err := f.GetCellValue("Report", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Income", firstType)

	// Totals block sits one blank row under the table.
	totalsLabel, err := f.GetCellValue("Report", "A6")
	require.NoError(t, err)
	assert.Equal(t, "Total Income", totalsLabel)
}
