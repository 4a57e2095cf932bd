package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"nsecli/internal/acquire"
	"nsecli/internal/config"
	"nsecli/internal/files"
	"nsecli/internal/holiday"
	"nsecli/internal/infrastructure"
	"nsecli/internal/ledger"

	pipeerrors "nsecli/internal/errors"
)

func main() {
	var logger *slog.Logger
	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Error("downloader panicked",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))
			} else {
				fmt.Fprintf(os.Stderr, "panic: %v\n", r)
			}
			os.Exit(1)
		}
	}()

	today := time.Now().Format("2006-01-02")
	startStr := flag.String("start-date", today, "start date in YYYY-MM-DD format (default: today)")
	endStr := flag.String("end-date", today, "end date in YYYY-MM-DD format (default: today)")
	outputDir := flag.String("output-dir", "./data", "output directory for downloaded data")
	existingDir := flag.String("existing-dir", "", "directory where existing documents are kept (required)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve paths: %v\n", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create required directories: %v\n", err)
		os.Exit(1)
	}

	runStamp := time.Now().Format("20060102_150405")
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = paths.GetLogPath(fmt.Sprintf("nse_download-%s.log", runStamp))
	}

	runID := uuid.NewString()
	logger = infrastructure.MustInitializeLogger(cfg.Logging).With(slog.String("run_id", runID))
	defer infrastructure.CloseLogFile()

	if *existingDir == "" {
		logger.Error("missing required --existing-dir flag")
		flag.Usage()
		os.Exit(1)
	}

	startDate, err := time.Parse("2006-01-02", *startStr)
	if err != nil {
		logger.Error("invalid --start-date, use YYYY-MM-DD", slog.String("error", err.Error()))
		os.Exit(1)
	}
	endDate, err := time.Parse("2006-01-02", *endStr)
	if err != nil {
		logger.Error("invalid --end-date, use YYYY-MM-DD", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if startDate.After(endDate) {
		logger.Error("start date must be before or equal to end date")
		os.Exit(1)
	}
	if endDate.After(time.Now()) {
		logger.Error("end date must be in the past or today")
		os.Exit(1)
	}
	if startDate.Before(cfg.MinStartTime()) {
		logger.Error("start date is before the earliest available data",
			slog.String("minimum", cfg.Source.MinStartDate))
		os.Exit(1)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		logger.Error("failed to create output dir", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("starting NSE bhavcopy download",
		slog.String("start_date", *startStr),
		slog.String("end_date", *endStr),
		slog.String("output_dir", *outputDir),
		slog.String("existing_dir", *existingDir))

	oracle := holiday.NewOracle(paths.HolidayFile, logger)
	if oracle.Mode() == holiday.ModeRecurring {
		logger.Warn("holiday calendar running in degraded recurring mode",
			slog.String("holiday_file", paths.HolidayFile))
	}

	client, err := acquire.NewClient(cfg.Source, logger)
	if err != nil {
		logger.Error("failed to create fetch client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	statusLedger := ledger.New(ledger.AcquisitionLayout{}, logger)
	layout := files.NewLayout(*outputDir, files.EntityCapitalMarket)
	pipeline := acquire.NewPipeline(client, oracle, statusLedger, layout, *existingDir, cfg.Source.ThrottleDelay, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runErr := pipeline.Run(ctx, startDate, endDate)
	if runErr != nil {
		// A hard interruption does not flush a partial ledger.
		if errors.Is(runErr, context.Canceled) {
			logger.Error("interrupted by user")
		} else {
			logger.Error("download run aborted", slog.String("error", runErr.Error()))
		}
		os.Exit(1)
	}

	if err := statusLedger.Serialize(paths.GetLogPath(fmt.Sprintf("download_status-%s.csv", runStamp))); err != nil {
		var pe *pipeerrors.PipelineError
		if !errors.As(err, &pe) || pe.Code != pipeerrors.CodeLedgerCollision {
			logger.Error("failed to write status report", slog.String("error", err.Error()))
		}
	}
	if err := statusLedger.WriteFailedJSON(paths.GetLogPath(fmt.Sprintf("failed_downloads-%s.json", runStamp))); err != nil {
		logger.Error("failed to write failed-dates file", slog.String("error", err.Error()))
	}

	statusLedger.Summarize()
	logger.Info("NSE bhavcopy download process completed")
}
