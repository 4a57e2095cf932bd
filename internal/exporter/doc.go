// Package exporter writes run artifacts: status-report CSV files and the
// curated parquet files produced by the conversion pipeline.
package exporter
