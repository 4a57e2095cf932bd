package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Source  SourceConfig  `yaml:"source" envconfig:"SOURCE"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
}

// SourceConfig contains settings for the NSE reports endpoint
type SourceConfig struct {
	BaseURL               string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://www.nseindia.com"`
	ReportsPath           string        `yaml:"reports_path" envconfig:"REPORTS_PATH" default:"/api/reports"`
	Referer               string        `yaml:"referer" envconfig:"REFERER" default:"https://www.nseindia.com/report-detail/eq_security"`
	UserAgent             string        `yaml:"user_agent" envconfig:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"`
	RequestTimeout        time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ArchiveTimeout        time.Duration `yaml:"archive_timeout" envconfig:"ARCHIVE_TIMEOUT" default:"60s"`
	CookieRefreshInterval time.Duration `yaml:"cookie_refresh_interval" envconfig:"COOKIE_REFRESH_INTERVAL" default:"300s"`
	ThrottleDelay         time.Duration `yaml:"throttle_delay" envconfig:"THROTTLE_DELAY" default:"2s"`
	MinStartDate          string        `yaml:"min_start_date" envconfig:"MIN_START_DATE" default:"2010-02-01"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir     string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	LogsDir     string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
	HolidayFile string `yaml:"holiday_file" envconfig:"HOLIDAY_FILE"`
}

// Load loads configuration from environment variables and an optional
// config file. Environment variables take precedence over file values.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("NSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Source.BaseURL == "" {
		envConfig.Source.BaseURL = fileConfig.Source.BaseURL
	}
	if envConfig.Source.ReportsPath == "" {
		envConfig.Source.ReportsPath = fileConfig.Source.ReportsPath
	}
	if envConfig.Source.CookieRefreshInterval == 0 {
		envConfig.Source.CookieRefreshInterval = fileConfig.Source.CookieRefreshInterval
	}
	if envConfig.Source.ThrottleDelay == 0 {
		envConfig.Source.ThrottleDelay = fileConfig.Source.ThrottleDelay
	}
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if envConfig.Paths.DataDir == "" {
		envConfig.Paths.DataDir = fileConfig.Paths.DataDir
	}
	if envConfig.Paths.LogsDir == "" {
		envConfig.Paths.LogsDir = fileConfig.Paths.LogsDir
	}
	if envConfig.Paths.HolidayFile == "" {
		envConfig.Paths.HolidayFile = fileConfig.Paths.HolidayFile
	}

	return envConfig
}

func (c *Config) validate() error {
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source base URL must not be empty")
	}
	if c.Source.CookieRefreshInterval <= 0 {
		return fmt.Errorf("cookie refresh interval must be positive, got %s", c.Source.CookieRefreshInterval)
	}
	if c.Source.ThrottleDelay < 0 {
		return fmt.Errorf("throttle delay must not be negative, got %s", c.Source.ThrottleDelay)
	}
	if _, err := time.Parse("2006-01-02", c.Source.MinStartDate); err != nil {
		return fmt.Errorf("invalid min start date %q: %w", c.Source.MinStartDate, err)
	}
	return nil
}

// MinStartTime returns the earliest date the downloader accepts.
func (c *Config) MinStartTime() time.Time {
	t, _ := time.Parse("2006-01-02", c.Source.MinStartDate)
	return t
}

// getConfigFilePath returns the config file location, overridable via env
func getConfigFilePath() string {
	if path := os.Getenv("NSE_CONFIG_FILE"); path != "" {
		return path
	}
	return "config.yaml"
}
