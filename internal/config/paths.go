package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths resolves the directories the pipelines work in. All paths are
// absolute after construction.
type Paths struct {
	DataDir     string
	LogsDir     string
	HolidayFile string
}

// NewPaths builds a Paths instance from the configured directories,
// resolving relative paths against the current working directory.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	dataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}
	logsDir, err := filepath.Abs(cfg.LogsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve logs dir: %w", err)
	}

	holidayFile := cfg.HolidayFile
	if holidayFile == "" {
		holidayFile = filepath.Join(dataDir, "nse_holidays.csv")
	} else if !filepath.IsAbs(holidayFile) {
		holidayFile, err = filepath.Abs(holidayFile)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve holiday file: %w", err)
		}
	}

	return &Paths{
		DataDir:     dataDir,
		LogsDir:     logsDir,
		HolidayFile: holidayFile,
	}, nil
}

// GetLogPath returns the absolute path for a log artifact.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetDataPath returns the absolute path for a file under the data dir.
func (p *Paths) GetDataPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// EnsureDirectories creates the data and logs directories if missing.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
