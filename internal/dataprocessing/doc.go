// Package dataprocessing parses raw bhavcopy CSV files into an in-memory
// tabular representation used by the conversion pipeline and for shape
// reporting in status records.
package dataprocessing
