package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Table is a fully in-memory tabular dataset: a header row plus data rows.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Shape returns the data row count and column count.
func (t *Table) Shape() (rows, cols int) {
	return len(t.Rows), len(t.Columns)
}

// ParseCSV reads an entire CSV file into memory. The first record is the
// header; remaining records are data rows. Records may vary in width, the
// header fixes the column count.
func ParseCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	return &Table{
		Columns: records[0],
		Rows:    records[1:],
	}, nil
}

// CSVShape returns the (rows, columns) shape of a CSV file, best effort:
// any read or parse error yields (0, 0).
func CSVShape(path string) (rows, cols int) {
	t, err := ParseCSV(path)
	if err != nil {
		return 0, 0
	}
	return t.Shape()
}
