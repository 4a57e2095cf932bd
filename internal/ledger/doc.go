// Package ledger tracks one status record per processed unit (date or file)
// and serializes the run's audit trail to CSV, with per-outcome counters
// kept in lockstep with the record sequence.
package ledger
