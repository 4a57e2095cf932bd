// Package convert turns already-acquired bhavcopy CSV files into curated
// parquet artifacts partitioned by year/month/day, copying the raw inputs
// into the matching raw partition and recording one outcome per file.
package convert
