// Package config loads the scraper's YAML configuration, with defaults
// that work against the production upstreams out of the box.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the scraper and the exporters.
type Config struct {
	// DataDir is the root of the persisted station and train files.
	DataDir string `yaml:"data_dir"`

	// Timezone is the IANA zone train times live in.
	Timezone string `yaml:"timezone"`

	// IntradaySplitHour separates late-evening from small-hour times in
	// naive Trenord timestamps.
	IntradaySplitHour int `yaml:"intraday_split_hour"`

	Regions      Regions `yaml:"regions"`
	ViaggiaTreno Source  `yaml:"viaggiatreno"`
	Trenord      Source  `yaml:"trenord"`
	Logging      Logging `yaml:"logging"`
}

// Regions bounds the region sweep, both ends inclusive.
type Regions struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Source configures one upstream API client. An empty BaseURL selects the
// client's production default.
type Source struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
}

// Timeout returns the source's HTTP timeout.
func (s Source) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Logging configures log output.
type Logging struct {
	Level string `yaml:"level"`
}

// Default returns the production configuration.
func Default() *Config {
	return &Config{
		DataDir:           "data",
		Timezone:          "Europe/Rome",
		IntradaySplitHour: 4,
		Regions:           Regions{Min: 1, Max: 22},
		ViaggiaTreno:      Source{TimeoutSeconds: 30, MaxRetries: 3},
		Trenord:           Source{TimeoutSeconds: 30, MaxRetries: 3},
		Logging:           Logging{Level: "info"},
	}
}

// Load reads the configuration file at path over the defaults. A missing
// file yields the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// SlogLevel maps the configured log level to a slog.Level, defaulting to
// info for unknown values.
func (c *Config) SlogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
