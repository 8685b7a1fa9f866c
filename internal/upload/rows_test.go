package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/journey-recon/internal/model"
)

func TestParseRows_HeaderAliases(t *testing.T) {
	records := [][]string{
		{" Driver  Name ", "Delivery Date", "Delivered", "FullStop", "Double Stop"},
		{"John Smith", "2024-01-01", "40", "2", "1"},
	}

	rows, rowErrs, err := ParseRows(records)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 1)
	assert.Equal(t, model.SpreadsheetRow{
		Line:       2,
		Name:       "John Smith",
		Date:       "2024-01-01",
		Deliveries: 40,
		FullStop:   2,
		DoubleStop: 1,
	}, rows[0])
}

func TestParseRows_ColumnOrderAndOptionalCounts(t *testing.T) {
	records := [][]string{
		{"Date", "Route", "Name"},
		{"2024-01-02", "R1", "Ann Lee"},
	}

	rows, rowErrs, err := ParseRows(records)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ann Lee", rows[0].Name)
	assert.Equal(t, "2024-01-02", rows[0].Date)
	assert.Equal(t, 0, rows[0].Deliveries)
	assert.Equal(t, 0, rows[0].FullStop)
	assert.Equal(t, 0, rows[0].DoubleStop)
}

func TestParseRows_DateForms(t *testing.T) {
	records := [][]string{
		{"Name", "Date"},
		{"A", "1/5/24"},
		{"B", "12/25/2023"},
		{"C", "45292"},
		{"D", "2024-01-01"},
		{"E", "next tuesday"},
		{"F", "01-15-24"},
	}

	rows, rowErrs, err := ParseRows(records)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 6)
	assert.Equal(t, "2024-01-05", rows[0].Date)
	assert.Equal(t, "2023-12-25", rows[1].Date)
	assert.Equal(t, "2024-01-01", rows[2].Date)
	assert.Equal(t, "2024-01-01", rows[3].Date)
	// Passed through for validation to reject.
	assert.Equal(t, "next tuesday", rows[4].Date)
	assert.Equal(t, "2024-01-15", rows[5].Date)
}

func TestParseRows_Counts(t *testing.T) {
	records := [][]string{
		{"Name", "Date", "Deliveries", "Full Stop", "Double Stop"},
		{"A", "2024-01-01", "40.0", "", "3"},
		{"B", "2024-01-01", "forty", "1", "x"},
		{"C", "2024-01-01", "-2", "0", "0"},
	}

	rows, rowErrs, err := ParseRows(records)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 40, rows[0].Deliveries)
	assert.Equal(t, 0, rows[0].FullStop)
	assert.Equal(t, 3, rows[0].DoubleStop)
	// Negative counts parse; validation rejects them.
	assert.Equal(t, -2, rows[1].Deliveries)

	require.Len(t, rowErrs, 1)
	assert.Equal(t, 3, rowErrs[0].Line)
	assert.Equal(t, "B", rowErrs[0].Name)
	assert.Contains(t, rowErrs[0].Reason, `deliveries "forty"`)
	assert.Contains(t, rowErrs[0].Reason, `double stop "x"`)
}

func TestParseRows_BlankLinesSkipped(t *testing.T) {
	records := [][]string{
		{"Name", "Date"},
		{"", "  "},
		{"A", "2024-01-01"},
		{},
		{"B", "2024-01-02"},
	}

	rows, _, err := ParseRows(records)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 3, rows[0].Line)
	assert.Equal(t, 5, rows[1].Line)
}

func TestParseRows_ShortRecord(t *testing.T) {
	records := [][]string{
		{"Name", "Date", "Deliveries"},
		{"A", "2024-01-01"},
	}

	rows, rowErrs, err := ParseRows(records)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].Deliveries)
}

func TestParseRows_MissingColumns(t *testing.T) {
	_, _, err := ParseRows(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file")

	_, _, err = ParseRows([][]string{{"Date", "Deliveries"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no driver name column")

	_, _, err = ParseRows([][]string{{"Driver", "Deliveries"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no date column")
}

func TestParseRows_FirstAliasColumnWins(t *testing.T) {
	records := [][]string{
		{"Driver", "Name", "Date"},
		{"John Smith", "ignored", "2024-01-01"},
	}

	rows, _, err := ParseRows(records)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "John Smith", rows[0].Name)
}
