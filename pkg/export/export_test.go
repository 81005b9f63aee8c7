package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCSV(t *testing.T) {
	table := Table{
		Columns: []string{"Name", "Date", "Type"},
		Rows: []map[string]string{
			{"Name": "Ada Lovelace", "Date": "2025-06-01", "Type": "check-in"},
			{"Name": "Ada Lovelace", "Date": "2025-06-01"},
		},
	}
	out, err := RenderCSV(table)
	require.NoError(t, err)
	assert.Equal(t, "Name,Date,Type\nAda Lovelace,2025-06-01,check-in\nAda Lovelace,2025-06-01,\n", string(out))
}

func TestRenderCSVRequiresColumns(t *testing.T) {
	_, err := RenderCSV(Table{})
	require.Error(t, err)
}

func TestRenderPDFProducesDocument(t *testing.T) {
	table := Table{
		Title:   "Attendance log",
		Columns: []string{"Date", "Type"},
		Rows:    []map[string]string{{"Date": "2025-06-01", "Type": "check-in"}},
	}
	out, err := RenderPDF(table)
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}
