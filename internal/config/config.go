// Package config assembles service settings from an optional YAML file and
// environment variables, with the environment taking precedence.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mossdale/weather-ingest/internal/domain"
)

// Config holds every recognized setting for an ingest run.
type Config struct {
	// InputPath is the raw CSV snapshot produced by the scraper collaborator.
	InputPath string `yaml:"input_path"`
	// ArchivePath accumulates raw rows across runs; the same-day guard
	// scans it. Delete or rename the file to force a re-run.
	ArchivePath string `yaml:"archive_path"`
	// StorePath is the SQLite database file. StoreDSN, when set, overrides
	// it with a full driver DSN.
	StorePath string `yaml:"store_path"`
	StoreDSN  string `yaml:"store_dsn"`

	// MetricsAddr, when non-empty, serves /healthz and /metrics while the
	// run is in progress.
	MetricsAddr string `yaml:"metrics_addr"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// SameDayGuard skips the whole run when the archive already holds a
	// record scraped today. Intentionally coarse; see pipeline docs.
	SameDayGuard bool `yaml:"same_day_guard"`

	// Plausibility bounds for the validator.
	TempMinF   int `yaml:"temp_min_f"`
	TempMaxF   int `yaml:"temp_max_f"`
	WindMaxMph int `yaml:"wind_max_mph"`
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_PATH (if any), then environment variable overrides, then validation.
func Load() (*Config, error) {
	bounds := domain.DefaultBounds()
	cfg := &Config{
		InputPath:    "data/raw_weather.csv",
		ArchivePath:  "data/raw_archive.csv",
		StorePath:    "data/weather.db",
		LogLevel:     "info",
		LogFormat:    "text",
		SameDayGuard: true,
		TempMinF:     bounds.TempMinF,
		TempMaxF:     bounds.TempMaxF,
		WindMaxMph:   bounds.WindMaxMph,
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Bounds returns the configured plausibility ranges as domain bounds.
func (c *Config) Bounds() domain.Bounds {
	return domain.Bounds{TempMinF: c.TempMinF, TempMaxF: c.TempMaxF, WindMaxMph: c.WindMaxMph}
}

func applyEnv(cfg *Config) {
	setString(&cfg.InputPath, "INPUT_PATH")
	setString(&cfg.ArchivePath, "ARCHIVE_PATH")
	setString(&cfg.StorePath, "STORE_PATH")
	setString(&cfg.StoreDSN, "STORE_DSN")
	setString(&cfg.MetricsAddr, "METRICS_ADDR")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setBool(&cfg.SameDayGuard, "SAME_DAY_GUARD")
	setInt(&cfg.TempMinF, "TEMP_MIN_F")
	setInt(&cfg.TempMaxF, "TEMP_MAX_F")
	setInt(&cfg.WindMaxMph, "WIND_MAX_MPH")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *Config) validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("INPUT_PATH is required")
	}
	if c.StorePath == "" && c.StoreDSN == "" {
		return fmt.Errorf("one of STORE_PATH or STORE_DSN is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q (allowed: json, text)", c.LogFormat)
	}
	if c.TempMinF >= c.TempMaxF {
		return fmt.Errorf("temperature bounds inverted: min %d >= max %d", c.TempMinF, c.TempMaxF)
	}
	if c.WindMaxMph <= 0 {
		return fmt.Errorf("wind ceiling must be positive, got %d", c.WindMaxMph)
	}
	return nil
}
