package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Date", "Period", "Subject"},
		Rows: []map[string]string{
			{"Date": "2025-01-27", "Period": "1", "Subject": "Maths, Year 9"},
			{"Date": "2025-01-28"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Period,Subject", lines[0])
	assert.Equal(t, `2025-01-27,1,"Maths, Year 9"`, lines[1])
	assert.Equal(t, "2025-01-28,,", lines[2])
}

func TestCSVExporterOptions(t *testing.T) {
	out, err := NewCSVExporter(WithBOM(), WithComma(';'), WithCRLF()).Render(sampleDataset())
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(out, utf8BOM))
	body := string(out[len(utf8BOM):])
	assert.Equal(t, "Date;Period;Subject\r\n2025-01-27;1;Maths, Year 9\r\n2025-01-28;;\r\n", body)
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "empty")
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := sampleDataset()
	for i := 0; i < 60; i++ {
		data.Rows = append(data.Rows, map[string]string{"Date": "2025-02-03", "Period": "2", "Subject": strings.Repeat("Long subject name ", 5)})
	}
	out, err := NewPDFExporter().Render(data, "Week plan 2025-01-27 to 2025-01-31")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestColumnWidthsFillPage(t *testing.T) {
	widths := columnWidths(sampleDataset())
	require.Len(t, widths, 3)
	total := 0.0
	for _, w := range widths {
		total += w
	}
	assert.InDelta(t, pageWidth, total, 0.001)
	assert.Greater(t, widths[2], widths[1])
}
