package listing

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX builds a single-sheet workbook with a header row and one row per record.
// Numbers, booleans and times keep their type; everything else is written as text.
func ExportXLSX(records []Record, mapping Mapping, sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}
	if len(mapping) == 0 {
		return f, nil
	}

	header := make([]any, len(mapping))
	for i, col := range mapping {
		header[i] = col.Name
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		f.Close()
		return nil, err
	}

	for i, r := range records {
		row := make([]any, len(mapping))
		for j, col := range mapping {
			row[j] = cellValue(col.Value(r))
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// WriteXLSX writes the workbook built by ExportXLSX to w.
func WriteXLSX(w io.Writer, records []Record, mapping Mapping, sheet string) error {
	f, err := ExportXLSX(records, mapping, sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case int, int32, int64, float32, float64, bool:
		return val
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val
	}
	return Stringify(v)
}
