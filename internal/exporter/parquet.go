package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// WriteParquet writes a tabular dataset to a parquet file at path. Every
// column is written as a UTF8 byte array; the schema is derived from the
// column names. Rows shorter than the header are padded with empty cells,
// longer rows are truncated.
func WriteParquet(path string, columns []string, rows [][]string) error {
	if len(columns) == 0 {
		return fmt.Errorf("cannot write parquet without columns")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	md := make([]string, len(columns))
	for i, col := range columns {
		md[i] = fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY",
			columnName(col, i))
	}

	fh, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer fh.Close()

	pw, err := writer.NewCSVWriter(md, fh, 1)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	rec := make([]*string, len(columns))
	for _, row := range rows {
		for i := range rec {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			v := cell
			rec[i] = &v
		}
		if err := pw.WriteString(rec); err != nil {
			return fmt.Errorf("failed to write parquet row: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	slog.Debug("wrote parquet file",
		slog.String("path", path),
		slog.Int("rows", len(rows)),
		slog.Int("columns", len(columns)))
	return nil
}

// columnName turns a raw CSV header cell into a parquet-safe column name.
// The writer's schema metadata is comma/equals delimited, so anything
// outside [A-Za-z0-9_] becomes an underscore.
func columnName(raw string, index int) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return fmt.Sprintf("col_%d", index)
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
