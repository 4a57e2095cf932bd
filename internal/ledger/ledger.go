package ledger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"nsecli/internal/errors"
	"nsecli/internal/exporter"
)

// Outcome is the terminal state of one processed unit.
type Outcome string

const (
	OutcomeSuccess Outcome = "Success"
	OutcomeSkipped Outcome = "Skipped"
	OutcomeError   Outcome = "Error"
)

// Shape is the row/column count of a parsed tabular file.
type Shape struct {
	Rows int
	Cols int
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d)", s.Rows, s.Cols)
}

// Record is one immutable status row. Every unit that enters a pipeline
// produces exactly one Record regardless of outcome.
type Record struct {
	Unit       string    // date string or input file name
	Outcome    Outcome
	Reason     string    // populated for skips and errors
	Date       time.Time // logical date; zero when unparseable
	OutputName string
	InputSize  int64
	OutputSize int64
	Shape      Shape
	InputPath  string // relative to the input root
	OutputPath string // relative to the output root
	CopiedPath string // relative raw-copy location, conversion only
}

// Ledger is the append-only audit trail of a single pipeline run. Appends
// keep the per-outcome counters in lockstep with the record sequence.
// Not safe for concurrent use; each run owns exactly one Ledger.
type Ledger struct {
	layout  Layout
	records []Record
	counts  map[Outcome]int
	logger  *slog.Logger
}

// New creates an empty ledger using the given serialization layout.
func New(layout Layout, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		layout: layout,
		counts: map[Outcome]int{
			OutcomeSuccess: 0,
			OutcomeSkipped: 0,
			OutcomeError:   0,
		},
		logger: logger,
	}
}

// Append records the outcome of one processed unit.
func (l *Ledger) Append(rec Record) {
	l.records = append(l.records, rec)
	l.counts[rec.Outcome]++

	l.logger.Debug("recorded unit outcome",
		slog.String("unit", rec.Unit),
		slog.String("outcome", string(rec.Outcome)),
		slog.String("reason", rec.Reason))
}

// Records returns a copy of the record sequence in processing order.
func (l *Ledger) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Count returns the number of records with the given outcome.
func (l *Ledger) Count(outcome Outcome) int {
	return l.counts[outcome]
}

// Total returns the number of appended records.
func (l *Ledger) Total() int {
	return len(l.records)
}

// Serialize writes the full record sequence as CSV to path. A pre-existing
// path is a collision: nothing is written and a LEDGER_COLLISION error is
// returned so the caller can surface a warning without aborting the run.
func (l *Ledger) Serialize(path string) error {
	if _, err := os.Stat(path); err == nil {
		l.logger.Warn("status report file already exists, not overwriting",
			slog.String("path", path))
		return errors.LedgerCollision(path)
	}

	rows := make([][]string, 0, len(l.records))
	for _, rec := range l.records {
		rows = append(rows, l.layout.Row(rec))
	}

	if err := exporter.WriteCSV(path, l.layout.Header(), rows); err != nil {
		return fmt.Errorf("failed to write status report: %w", err)
	}

	l.logger.Info("status report saved",
		slog.String("path", path),
		slog.Int("records", len(l.records)))
	return nil
}

// FailedUnit is one entry of the failed-dates JSON artifact.
type FailedUnit struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// FailedUnits returns the error records as {date, reason} pairs.
func (l *Ledger) FailedUnits() []FailedUnit {
	var failed []FailedUnit
	for _, rec := range l.records {
		if rec.Outcome == OutcomeError {
			failed = append(failed, FailedUnit{Date: rec.Unit, Reason: rec.Reason})
		}
	}
	return failed
}

// WriteFailedJSON writes the failed-units artifact to path, only when at
// least one failure occurred.
func (l *Ledger) WriteFailedJSON(path string) error {
	failed := l.FailedUnits()
	if len(failed) == 0 {
		return nil
	}

	data, err := json.MarshalIndent(failed, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal failed units: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write failed units file: %w", err)
	}

	l.logger.Info("failed units logged",
		slog.String("path", path),
		slog.Int("count", len(failed)))
	return nil
}

// Summarize logs the aggregate outcome counts for the run.
func (l *Ledger) Summarize() {
	l.logger.Info("processing summary",
		slog.Int("total", l.Total()),
		slog.Int("success", l.counts[OutcomeSuccess]),
		slog.Int("skipped", l.counts[OutcomeSkipped]),
		slog.Int("errors", l.counts[OutcomeError]))

	for _, f := range l.FailedUnits() {
		l.logger.Warn("failed unit",
			slog.String("unit", f.Date),
			slog.String("reason", f.Reason))
	}
}
