package export

import (
	"fmt"
	"strings"
)

// Format names an output encoding for tabular reports.
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatPDF   Format = "pdf"
	FormatExcel Format = "xlsx"
)

// ParseFormat maps a query value onto a Format, defaulting to JSON.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatPDF, FormatExcel:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q", raw)
	}
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Dataset is a titled table. Rows are keyed by header.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
}

// Renderer encodes a dataset into a document.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
}

// Registry resolves renderers by format.
type Registry map[Format]Renderer

// NewRegistry wires the csv, pdf and xlsx renderers.
func NewRegistry() Registry {
	return Registry{
		FormatCSV:   NewCSVExporter(),
		FormatPDF:   NewPDFExporter(),
		FormatExcel: NewExcelExporter(),
	}
}

// Render encodes data with the renderer registered for f.
func (r Registry) Render(f Format, data Dataset) ([]byte, error) {
	renderer, ok := r[f]
	if !ok {
		return nil, fmt.Errorf("no renderer for %s", f)
	}
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("%s requires at least one header", f)
	}
	return renderer.Render(data)
}

func (d Dataset) record(row map[string]string) []string {
	record := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		record[i] = row[header]
	}
	return record
}
