package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Title:   "Posts",
		Headers: []string{"ID", "Title"},
		Rows: [][]string{
			{"1", "first"},
			{"2", "second, with comma"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	format, err = ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, format)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestCSVRender(t *testing.T) {
	data, err := CSV(sampleTable())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Title", lines[0])
	assert.Equal(t, "1,first", lines[1])
	assert.Equal(t, `2,"second, with comma"`, lines[2])
}

func TestCSVRequiresHeaders(t *testing.T) {
	_, err := CSV(Table{})
	assert.Error(t, err)
}

func TestCSVRejectsRaggedRows(t *testing.T) {
	table := sampleTable()
	table.Rows = append(table.Rows, []string{"only-one-cell"})

	_, err := CSV(table)
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	data, err := PDF(sampleTable())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestRenderDispatch(t *testing.T) {
	csvData, err := Render(FormatCSV, sampleTable())
	require.NoError(t, err)
	assert.Contains(t, string(csvData), "ID,Title")

	pdfData, err := Render(FormatPDF, sampleTable())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdfData), "%PDF"))

	_, err = Render(Format("xlsx"), sampleTable())
	assert.Error(t, err)
}
