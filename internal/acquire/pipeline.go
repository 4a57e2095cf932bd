package acquire

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"nsecli/internal/dataprocessing"
	"nsecli/internal/errors"
	"nsecli/internal/files"
	"nsecli/internal/holiday"
	"nsecli/internal/ledger"
)

// Fetcher retrieves the raw archive bytes for a trading date.
type Fetcher interface {
	RefreshSession(ctx context.Context) error
	FetchArchive(ctx context.Context, date time.Time) ([]byte, error)
}

// Calendar answers whether a date is a market holiday.
type Calendar interface {
	IsHoliday(date time.Time) bool
}

// Pipeline drives per-date acquisition: decide skip, fetch, extract,
// validate, and record exactly one ledger entry per date.
type Pipeline struct {
	fetcher     Fetcher
	calendar    Calendar
	ledger      *ledger.Ledger
	layout      files.Layout
	existingDir string
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// NewPipeline creates an acquisition pipeline writing into layout's root.
// existingDir is a prior known-good directory; dates whose bhavcopy already
// lives there are skipped without a network call. throttle is the courtesy
// delay between fetch attempts.
func NewPipeline(fetcher Fetcher, calendar Calendar, lg *ledger.Ledger, layout files.Layout, existingDir string, throttle time.Duration, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	limiter := rate.NewLimiter(rate.Every(throttle), 1)
	// Drain the initial token so the first post-attempt wait already pauses.
	limiter.Allow()
	return &Pipeline{
		fetcher:     fetcher,
		calendar:    calendar,
		ledger:      lg,
		layout:      layout,
		existingDir: existingDir,
		limiter:     limiter,
		logger:      logger,
	}
}

// Run processes every calendar date from start through end inclusive,
// strictly in order. Each date yields exactly one ledger record; per-date
// failures never abort the range.
func (p *Pipeline) Run(ctx context.Context, start, end time.Time) error {
	p.logger.Info("starting bhavcopy acquisition",
		slog.String("from", start.Format("2006-01-02")),
		slog.String("to", end.Format("2006-01-02")),
		slog.String("output_root", p.layout.Root))

	if err := p.fetcher.RefreshSession(ctx); err != nil {
		p.logger.Warn("could not get initial session cookie, continuing anyway",
			slog.String("error", err.Error()))
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec := p.processDate(ctx, d)
		p.ledger.Append(rec)

		// Courtesy throttle after fetch attempts only, never after skips.
		if rec.Outcome != ledger.OutcomeSkipped {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
		}
	}

	return nil
}

// processDate resolves one date to its terminal outcome. Skip states are
// checked in precedence order before any network activity.
func (p *Pipeline) processDate(ctx context.Context, date time.Time) ledger.Record {
	dateStr := date.Format(apiDateFormat)
	rec := ledger.Record{Unit: dateStr, Date: date}

	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		p.logger.Info("skipping weekend", slog.String("date", dateStr))
		rec.Outcome = ledger.OutcomeSkipped
		rec.Reason = "Market closed on weekends"
		return rec
	}

	if p.calendar != nil && p.calendar.IsHoliday(date) {
		reason := "Market holiday"
		if name := holiday.HolidayName(date.Month(), date.Day()); name != "" {
			reason = fmt.Sprintf("Market holiday (%s)", name)
		}
		p.logger.Info("skipping holiday",
			slog.String("date", dateStr),
			slog.String("reason", reason))
		rec.Outcome = ledger.OutcomeSkipped
		rec.Reason = reason
		return rec
	}

	name := files.BhavcopyName(date)
	if existing, ok := p.findExisting(date, name); ok {
		p.logger.Info("already exists, skipping",
			slog.String("date", dateStr),
			slog.String("file", existing))
		rec.Outcome = ledger.OutcomeSkipped
		rec.Reason = "File already exists"
		rec.OutputName = name
		rec.OutputPath = existing
		return rec
	}

	p.logger.Info("downloading bhavcopy", slog.String("date", dateStr))

	content, err := p.fetcher.FetchArchive(ctx, date)
	if err != nil {
		p.logger.Error("download failed",
			slog.String("date", dateStr),
			slog.String("reason", errors.ReasonOf(err)))
		rec.Outcome = ledger.OutcomeError
		rec.Reason = errors.ReasonOf(err)
		return rec
	}

	expected := p.layout.RawFile(date, name)
	if err := p.extractArchive(date, content); err != nil {
		p.logger.Error("extraction failed",
			slog.String("date", dateStr),
			slog.String("reason", errors.ReasonOf(err)))
		rec.Outcome = ledger.OutcomeError
		rec.Reason = errors.ReasonOf(err)
		return rec
	}

	if !files.Exists(expected) {
		p.logger.Error("expected file missing after extraction",
			slog.String("date", dateStr),
			slog.String("file", name))
		rec.Outcome = ledger.OutcomeError
		rec.Reason = fmt.Sprintf("Archive did not contain %s", name)
		return rec
	}

	size, _ := files.Size(expected)
	rows, cols := dataprocessing.CSVShape(expected)
	rec.Outcome = ledger.OutcomeSuccess
	rec.OutputName = name
	rec.OutputPath = files.RelativePath(p.layout.Root, expected)
	rec.OutputSize = size
	rec.Shape = ledger.Shape{Rows: rows, Cols: cols}

	p.logger.Info("downloaded and extracted",
		slog.String("date", dateStr),
		slog.String("file", name),
		slog.Int64("size_bytes", size),
		slog.Int("rows", rows),
		slog.Int("columns", cols))
	return rec
}

// findExisting checks the known-good directory and the output partition for
// the expected bhavcopy. The known-good directory keeps the legacy flat
// YYYYMM month folders; the output root uses the partitioned layout.
func (p *Pipeline) findExisting(date time.Time, name string) (string, bool) {
	if p.existingDir != "" {
		legacy := filepath.Join(p.existingDir, date.Format("200601"), name)
		if files.Exists(legacy) {
			return legacy, true
		}
	}
	partitioned := p.layout.RawFile(date, name)
	if files.Exists(partitioned) {
		return files.RelativePath(p.layout.Root, partitioned), true
	}
	return "", false
}

// extractArchive stages the zip in the month partition, extracts it there,
// and removes the staged archive. A bad archive leaves nothing behind.
func (p *Pipeline) extractArchive(date time.Time, content []byte) error {
	destDir := p.layout.RawDir(date)
	if err := files.EnsureDirectory(destDir); err != nil {
		return errors.Wrap(errors.CodeArchive, "failed to create month partition", err)
	}

	zipPath := filepath.Join(destDir, fmt.Sprintf("bhavcopy_%s.zip", date.Format("20060102")))
	if err := os.WriteFile(zipPath, content, 0644); err != nil {
		return errors.Wrap(errors.CodeArchive, "failed to stage archive", err)
	}

	if err := extractZip(zipPath, destDir); err != nil {
		os.Remove(zipPath)
		return errors.Archive(err)
	}

	return os.Remove(zipPath)
}

// extractZip extracts every file in the archive into destDir. Entries that
// would escape destDir are rejected.
func extractZip(zipPath, destDir string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, entry := range reader.File {
		target := filepath.Join(destDir, filepath.Base(entry.Name))
		if entry.FileInfo().IsDir() {
			continue
		}
		if strings.Contains(entry.Name, "..") {
			return fmt.Errorf("archive entry %q escapes destination", entry.Name)
		}

		src, err := entry.Open()
		if err != nil {
			return err
		}
		dst, err := os.Create(target)
		if err != nil {
			src.Close()
			return err
		}
		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return err
		}
	}

	return nil
}
