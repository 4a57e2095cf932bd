package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"nsecli/internal/config"
	"nsecli/internal/convert"
	"nsecli/internal/files"
	"nsecli/internal/infrastructure"
	"nsecli/internal/ledger"

	pipeerrors "nsecli/internal/errors"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <raw_root> <output_root>\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Converts raw NSE bhavcopy CSV files into daily parquet files under a")
	fmt.Fprintln(os.Stderr, "date-partitioned raw/curated directory structure.")
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
}

func main() {
	var logger *slog.Logger
	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Error("converter panicked",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))
			} else {
				fmt.Fprintf(os.Stderr, "panic: %v\n", r)
			}
			os.Exit(1)
		}
	}()

	pattern := flag.String("pattern", convert.DefaultPattern, "glob pattern to match input CSV files")
	force := flag.Bool("force", false, "re-copy inputs and re-write curated files even if they exist")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 2 {
		usage()
		os.Exit(1)
	}
	rawRoot := flag.Arg(0)
	outputRoot := flag.Arg(1)

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
		cfg.Logging.FilePath = paths.GetLogPath(fmt.Sprintf("build_daily_parquet-%s.log", runStamp))
	}

	runID := uuid.NewString()
	logger = infrastructure.MustInitializeLogger(cfg.Logging).With(slog.String("run_id", runID))
	defer infrastructure.CloseLogFile()

	if _, err := os.Stat(rawRoot); err != nil {
		logger.Error("raw root is not accessible",
			slog.String("raw_root", rawRoot),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := os.MkdirAll(outputRoot, 0755); err != nil {
		logger.Error("failed to create output root", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("starting daily parquet build",
		slog.String("raw_root", rawRoot),
		slog.String("output_root", outputRoot),
		slog.String("pattern", *pattern),
		slog.Bool("force", *force))

	statusLedger := ledger.New(ledger.ConversionLayout{}, logger)
	layout := files.NewLayout(outputRoot, files.EntityCapitalMarket)
	pipeline := convert.NewPipeline(rawRoot, layout, *pattern, *force, statusLedger, logger)

	if err := pipeline.Run(); err != nil {
		logger.Error("conversion run aborted", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := statusLedger.Serialize(paths.GetLogPath(fmt.Sprintf("file_processing_status-%s.csv", runStamp))); err != nil {
		var pe *pipeerrors.PipelineError
		if !errors.As(err, &pe) || pe.Code != pipeerrors.CodeLedgerCollision {
			logger.Error("failed to write status report", slog.String("error", err.Error()))
		}
	}

	statusLedger.Summarize()
	logger.Info("done building daily parquet files")
}
