package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NSE_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://www.nseindia.com", cfg.Source.BaseURL)
	assert.Equal(t, "/api/reports", cfg.Source.ReportsPath)
	assert.Equal(t, 300*time.Second, cfg.Source.CookieRefreshInterval)
	assert.Equal(t, 2*time.Second, cfg.Source.ThrottleDelay)
	assert.Equal(t, "2010-02-01", cfg.Source.MinStartDate)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "data", cfg.Paths.DataDir)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("NSE_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("NSE_SOURCE_BASE_URL", "http://localhost:9999")
	t.Setenv("NSE_SOURCE_THROTTLE_DELAY", "500ms")
	t.Setenv("NSE_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", cfg.Source.BaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Source.ThrottleDelay)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_FileValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
logging:
  file_path: /var/log/nse/pipeline.log
paths:
  holiday_file: /srv/nse/nse_holidays.csv
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))
	t.Setenv("NSE_CONFIG_FILE", configFile)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/log/nse/pipeline.log", cfg.Logging.FilePath)
	assert.Equal(t, "/srv/nse/nse_holidays.csv", cfg.Paths.HolidayFile)
	// Defaults survive when the file does not set them.
	assert.Equal(t, "https://www.nseindia.com", cfg.Source.BaseURL)
}

func TestLoad_InvalidMinStartDate(t *testing.T) {
	t.Setenv("NSE_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("NSE_SOURCE_MIN_START_DATE", "01/02/2010")

	_, err := Load()
	assert.Error(t, err)
}

func TestMinStartTime(t *testing.T) {
	cfg := &Config{}
	cfg.Source.MinStartDate = "2010-02-01"
	assert.Equal(t, time.Date(2010, 2, 1, 0, 0, 0, 0, time.UTC), cfg.MinStartTime())
}

func TestNewPaths_HolidayFileDefault(t *testing.T) {
	paths, err := NewPaths(PathsConfig{DataDir: "testdata", LogsDir: "logs"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.DataDir, "nse_holidays.csv"), paths.HolidayFile)
}
