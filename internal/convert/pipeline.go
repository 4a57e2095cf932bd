package convert

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"nsecli/internal/dataprocessing"
	"nsecli/internal/errors"
	"nsecli/internal/exporter"
	"nsecli/internal/files"
	"nsecli/internal/ledger"
)

// DefaultPattern matches daily full-bhavcopy CSV files.
const DefaultPattern = "sec_bhavdata_full_*.csv"

// curatedExt is the curated artifact extension.
const curatedExt = "parquet"

// Pipeline converts raw bhavcopy CSV files into date-partitioned parquet
// artifacts, copying the originals into the raw partition alongside.
type Pipeline struct {
	rawRoot string
	layout  files.Layout
	pattern string
	force   bool
	ledger  *ledger.Ledger
	logger  *slog.Logger
}

// NewPipeline creates a conversion pipeline reading from rawRoot and
// writing into layout's root. force re-copies raw inputs and re-writes
// curated artifacts even when they already exist.
func NewPipeline(rawRoot string, layout files.Layout, pattern string, force bool, lg *ledger.Ledger, logger *slog.Logger) *Pipeline {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		rawRoot: rawRoot,
		layout:  layout,
		pattern: pattern,
		force:   force,
		ledger:  lg,
		logger:  logger,
	}
}

// Run scans the raw root for matching files and processes each to a single
// terminal outcome. Per-file failures never abort the batch.
func (p *Pipeline) Run() error {
	inputs, err := files.FindFiles(p.rawRoot, p.pattern)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", p.rawRoot, err)
	}
	if len(inputs) == 0 {
		p.logger.Warn("no files matching pattern found",
			slog.String("pattern", p.pattern),
			slog.String("root", p.rawRoot))
		return nil
	}

	p.logger.Info("found input files",
		slog.Int("count", len(inputs)),
		slog.String("root", p.rawRoot))

	for _, input := range inputs {
		p.ledger.Append(p.processFile(input))
	}

	return nil
}

// processFile resolves one input file to its terminal outcome.
func (p *Pipeline) processFile(input string) ledger.Record {
	name := filepath.Base(input)
	relInput := files.RelativePath(p.rawRoot, input)

	rec := ledger.Record{
		Unit:      name,
		InputPath: relInput,
	}
	if size, err := files.Size(input); err == nil {
		rec.InputSize = size
	}

	tradeDate, err := files.DateFromFilename(name)
	if err != nil {
		p.logger.Error("cannot parse date from filename",
			slog.String("file", relInput))
		rec.Outcome = ledger.OutcomeError
		rec.Reason = errors.ReasonOf(err)
		return rec
	}
	rec.Date = tradeDate

	copied, err := p.copyRaw(input, tradeDate, name)
	if err != nil {
		p.logger.Error("failed to copy input file",
			slog.String("file", relInput),
			slog.String("error", err.Error()))
		rec.Outcome = ledger.OutcomeError
		rec.Reason = fmt.Sprintf("Failed to copy input file: %v", err)
		return rec
	}
	rec.CopiedPath = files.RelativePath(p.layout.Root, copied)

	curated := p.layout.CuratedFile(tradeDate, curatedExt)
	relCurated := files.RelativePath(p.layout.Root, curated)

	if !p.force && files.Exists(curated) {
		p.logger.Info("curated file already exists, skipping",
			slog.String("date", tradeDate.Format("2006-01-02")),
			slog.String("output", relCurated))
		rec.Outcome = ledger.OutcomeSkipped
		rec.Reason = "Curated file already exists"
		rec.OutputName = filepath.Base(curated)
		rec.OutputPath = relCurated
		if size, err := files.Size(curated); err == nil {
			rec.OutputSize = size
		}
		return rec
	}

	p.logger.Info("converting",
		slog.String("input", relInput),
		slog.String("output", relCurated))

	shape, err := p.writeCurated(input, curated)
	if err != nil {
		p.logger.Error("failed to process file",
			slog.String("file", relInput),
			slog.String("error", err.Error()))
		rec.Outcome = ledger.OutcomeError
		rec.Reason = errors.ReasonOf(err)
		return rec
	}

	rec.Outcome = ledger.OutcomeSuccess
	rec.OutputName = filepath.Base(curated)
	rec.OutputPath = relCurated
	rec.Shape = shape
	if size, err := files.Size(curated); err == nil {
		rec.OutputSize = size
	}
	return rec
}

// copyRaw copies the input verbatim into the raw partition. The copy is
// idempotent: an existing destination is left alone unless force is set.
func (p *Pipeline) copyRaw(input string, tradeDate time.Time, name string) (string, error) {
	dest := p.layout.RawFile(tradeDate, name)
	if !p.force && files.Exists(dest) {
		p.logger.Debug("raw copy already exists",
			slog.String("path", files.RelativePath(p.layout.Root, dest)))
		return dest, nil
	}
	if err := files.CopyFile(input, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// writeCurated parses the full CSV into memory and writes the parquet
// artifact. A failed write leaves no partial curated file behind.
func (p *Pipeline) writeCurated(input, curated string) (ledger.Shape, error) {
	table, err := dataprocessing.ParseCSV(input)
	if err != nil {
		return ledger.Shape{}, errors.ParseWrite(err)
	}

	rows, cols := table.Shape()
	shape := ledger.Shape{Rows: rows, Cols: cols}

	if err := exporter.WriteParquet(curated, table.Columns, table.Rows); err != nil {
		os.Remove(curated)
		return shape, errors.ParseWrite(err)
	}

	return shape, nil
}
