// Package export renders tabular week plans as CSV or PDF.
package export

import "fmt"

// Dataset is an ordered set of columns plus rows keyed by column header.
// Missing keys render as empty cells.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

func (d Dataset) validate(format string) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", format)
	}
	return nil
}

// record returns row's cells in header order, reusing buf when it fits.
func (d Dataset) record(row map[string]string, buf []string) []string {
	if cap(buf) < len(d.Headers) {
		buf = make([]string, len(d.Headers))
	}
	buf = buf[:len(d.Headers)]
	for i, header := range d.Headers {
		buf[i] = row[header]
	}
	return buf
}
