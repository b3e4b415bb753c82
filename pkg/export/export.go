package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Format selects the rendered output type.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat maps a query-string value onto a known format.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case FormatCSV, FormatPDF:
		return Format(raw), nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// Table is the tabular payload handed to a renderer. Every row must have
// one cell per header.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Render dispatches to the renderer for the given format.
func Render(format Format, table Table) ([]byte, error) {
	switch format {
	case FormatCSV:
		return CSV(table)
	case FormatPDF:
		return PDF(table)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// CSV renders the table as CSV bytes. The title is not included; CSV
// consumers expect the header row first.
func CSV(table Table) ([]byte, error) {
	if len(table.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(table.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range table.Rows {
		if len(row) != len(table.Headers) {
			return nil, fmt.Errorf("csv row has %d cells, want %d", len(row), len(table.Headers))
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}
