// Package files provides filesystem helpers shared by both pipelines:
// existence checks, copies, recursive pattern scans, the date-partitioned
// raw/curated directory layout, and filename date extraction.
package files
