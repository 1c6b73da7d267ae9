package listing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// Column is one output column of an export.
type Column struct {
	Name  string
	Value Accessor
}

// Mapping is the ordered projection from records to export columns.
type Mapping []Column

// Header returns the column names in order.
func (m Mapping) Header() []string {
	header := make([]string, len(m))
	for i, col := range m {
		header[i] = col.Name
	}
	return header
}

// Row renders one record through the mapping. Missing values render as "".
func (m Mapping) Row(r Record) []string {
	row := make([]string, len(m))
	for i, col := range m {
		row[i] = Stringify(col.Value(r))
	}
	return row
}

// ExportDelimited serializes records as RFC 4180 text: a header row followed by one
// row per record, separated by "\n", with no terminator after the last row. A zero
// delimiter means ','. An empty mapping produces an empty string.
func ExportDelimited(records []Record, mapping Mapping, delimiter rune) (string, error) {
	var buf bytes.Buffer
	if err := WriteDelimited(&buf, records, mapping, delimiter); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// WriteDelimited streams the same rows as ExportDelimited to w, terminating every
// row with "\n".
func WriteDelimited(w io.Writer, records []Record, mapping Mapping, delimiter rune) error {
	if len(mapping) == 0 {
		return nil
	}
	if delimiter == 0 {
		delimiter = ','
	}

	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	if err := cw.Write(mapping.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		row := mapping.Row(r)
		// a lone empty field would be a blank line, which readers skip
		if len(row) == 1 && row[0] == "" {
			cw.Flush()
			if _, err := io.WriteString(w, "\"\"\n"); err != nil {
				return fmt.Errorf("write row %d: %w", i, err)
			}
			continue
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
