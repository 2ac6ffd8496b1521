package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOption tweaks CSV output.
type CSVOption func(*CSVExporter)

// WithBOM prefixes the output with a UTF-8 byte order mark so spreadsheet
// applications detect the encoding of non-ASCII subject names.
func WithBOM() CSVOption {
	return func(e *CSVExporter) { e.bom = true }
}

// WithComma sets the field delimiter, e.g. ';' for locales using a decimal comma.
func WithComma(r rune) CSVOption {
	return func(e *CSVExporter) { e.comma = r }
}

// WithCRLF terminates records with \r\n.
func WithCRLF() CSVOption {
	return func(e *CSVExporter) { e.crlf = true }
}

// CSVExporter renders a Dataset as delimited text, header line first.
type CSVExporter struct {
	bom   bool
	comma rune
	crlf  bool
}

func NewCSVExporter(opts ...CSVOption) *CSVExporter {
	e := &CSVExporter{comma: ','}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("csv"); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if e.bom {
		buf.Write(utf8BOM)
	}
	w := csv.NewWriter(&buf)
	w.Comma = e.comma
	w.UseCRLF = e.crlf

	if err := w.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	var rec []string
	for i, row := range data.Rows {
		rec = data.record(row, rec)
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
