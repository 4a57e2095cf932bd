package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "status.csv")
	headers := []string{"date", "status", "reason"}
	records := [][]string{
		{"2019-08-23", "Success", ""},
		{"2019-08-24", "Skipped", "Market closed on weekends"},
	}

	require.NoError(t, WriteCSV(path, headers, records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, headers, got[0])
	assert.Equal(t, records[0], got[1])
	assert.Equal(t, records[1], got[2])
}

func TestWriteParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curated", "day=23.parquet")
	columns := []string{"SYMBOL", " SERIES", "DATE1"}
	rows := [][]string{
		{"RELIANCE", "EQ", "23-AUG-2019"},
		{"TCS", "EQ"}, // short row, padded
	}

	require.NoError(t, WriteParquet(path, columns, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, "PAR1", string(data[:4]))
	assert.Equal(t, "PAR1", string(data[len(data)-4:]))
}

func TestWriteParquet_NoColumns(t *testing.T) {
	err := WriteParquet(filepath.Join(t.TempDir(), "out.parquet"), nil, nil)
	assert.Error(t, err)
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		index int
		want  string
	}{
		{"plain", "SYMBOL", 0, "SYMBOL"},
		{"leading space", " SERIES", 1, "SERIES"},
		{"punctuation", "DELIV_%", 2, "DELIV__"},
		{"spaces inside", "PREV CLOSE", 3, "PREV_CLOSE"},
		{"empty", "", 4, "col_4"},
		{"whitespace only", "   ", 5, "col_5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, columnName(tt.raw, tt.index))
		})
	}
}
