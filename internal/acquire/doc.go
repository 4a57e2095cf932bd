// Package acquire downloads daily NSE bhavcopy archives date by date. It
// holds the per-date state machine (weekend/holiday/existing skip, fetch,
// extract, validate) and the session-aware HTTP client for the reports API.
package acquire
