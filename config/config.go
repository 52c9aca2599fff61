// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the settings that choose where plant data comes from
// and how it is searched.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Source kinds.
const (
	SourceCSV   = "csv"
	SourceJSON  = "json"
	SourceHTTP  = "http"
	SourceStore = "store"
)

// Matcher names.
const (
	MatcherEdit        = "edit"
	MatcherSubsequence = "subsequence"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// SourceConfig selects where partition rows are read from.
type SourceConfig struct {
	// Kind is one of csv, json, http or store.
	// Default: csv
	Kind string `yaml:"kind"`

	// Dir holds safe.<ext> and toxic.<ext> for csv and json sources.
	// Default: "data"
	Dir string `yaml:"dir"`

	// URL is the base address partition files are fetched from.
	// Example: "https://example.org/furry-garden/data"
	URL string `yaml:"url"`

	// Format is the file format fetched by http sources (csv or json).
	// Default: csv
	Format string `yaml:"format"`

	// DBPath is the BadgerDB directory read by store sources.
	DBPath string `yaml:"db_path"`

	// TimeoutSecs bounds each HTTP request.
	// Default: 30
	TimeoutSecs int `yaml:"timeout_secs"`

	// Attempts is how many times an HTTP fetch is tried.
	// Default: 1
	Attempts int `yaml:"attempts"`

	// RetryDelayMillis is the base backoff between HTTP attempts.
	// Default: 500
	RetryDelayMillis int `yaml:"retry_delay_ms"`
}

// SearchConfig tunes the fuzzy index.
type SearchConfig struct {
	// Matcher is edit or subsequence.
	// Default: edit
	Matcher string `yaml:"matcher"`

	// Tolerance is the highest accepted match distance, between 0 and 1.
	// Default: 0.3
	Tolerance float64 `yaml:"tolerance"`

	// Weights overrides per-field weights, keyed by field name
	// (common_name, additional_names, latin_name, localized_name).
	Weights map[string]float64 `yaml:"weights,omitempty"`
}

// Config is the root configuration.
type Config struct {
	Source   SourceConfig `yaml:"source"`
	Search   SearchConfig `yaml:"search"`
	LogLevel string       `yaml:"log_level"`
}

// Option is a functional option for configuring a Config.
type Option func(*Config)

// WithSourceKind sets the source kind.
func WithSourceKind(kind string) Option {
	return func(c *Config) {
		c.Source.Kind = kind
	}
}

// WithDir sets the data directory of file sources.
func WithDir(dir string) Option {
	return func(c *Config) {
		c.Source.Dir = dir
	}
}

// WithURL selects an HTTP source at the given base URL.
func WithURL(url string) Option {
	return func(c *Config) {
		c.Source.Kind = SourceHTTP
		c.Source.URL = url
	}
}

// WithDBPath selects a store source at the given BadgerDB path.
func WithDBPath(path string) Option {
	return func(c *Config) {
		c.Source.Kind = SourceStore
		c.Source.DBPath = path
	}
}

// WithMatcher sets the matcher name.
func WithMatcher(name string) Option {
	return func(c *Config) {
		c.Search.Matcher = name
	}
}

// WithTolerance sets the match tolerance.
func WithTolerance(tolerance float64) Option {
	return func(c *Config) {
		c.Search.Tolerance = tolerance
	}
}

// WithFieldWeight sets the weight of one indexed field.
func WithFieldWeight(field string, weight float64) Option {
	return func(c *Config) {
		if c.Search.Weights == nil {
			c.Search.Weights = make(map[string]float64)
		}
		c.Search.Weights[field] = weight
	}
}

// WithLogLevel sets the log level name.
func WithLogLevel(level string) Option {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// DefaultConfig returns a Config reading CSV files from ./data with the
// default edit-distance matcher.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:             SourceCSV,
			Dir:              "data",
			Format:           SourceCSV,
			TimeoutSecs:      30,
			Attempts:         1,
			RetryDelayMillis: 500,
		},
		Search: SearchConfig{
			Matcher:   MatcherEdit,
			Tolerance: 0.3,
		},
		LogLevel: "info",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithURL("https://example.org/furry-garden/data"),
//	    WithTolerance(0.2),
//	)
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize puts names in canonical lower case and fills zero values that
// have defaults.
func (c *Config) Normalize() {
	c.Source.Kind = strings.ToLower(strings.TrimSpace(c.Source.Kind))
	c.Source.Format = strings.ToLower(strings.TrimSpace(c.Source.Format))
	c.Search.Matcher = strings.ToLower(strings.TrimSpace(c.Search.Matcher))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Source.URL = strings.TrimRight(strings.TrimSpace(c.Source.URL), "/")

	if c.Source.Kind == "" {
		c.Source.Kind = SourceCSV
	}
	if c.Source.Format == "" {
		c.Source.Format = SourceCSV
	}
	if c.Search.Matcher == "" {
		c.Search.Matcher = MatcherEdit
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Source.TimeoutSecs == 0 {
		c.Source.TimeoutSecs = 30
	}
	if c.Source.Attempts == 0 {
		c.Source.Attempts = 1
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Source.Kind {
	case SourceCSV, SourceJSON:
		if c.Source.Dir == "" {
			return fmt.Errorf("%w: source dir is required for %s sources", ErrInvalidConfig, c.Source.Kind)
		}
	case SourceHTTP:
		if c.Source.URL == "" {
			return fmt.Errorf("%w: source url is required for http sources", ErrInvalidConfig)
		}
		if c.Source.Format != SourceCSV && c.Source.Format != SourceJSON {
			return fmt.Errorf("%w: source format must be csv or json, got %q", ErrInvalidConfig, c.Source.Format)
		}
	case SourceStore:
		if c.Source.DBPath == "" {
			return fmt.Errorf("%w: source db_path is required for store sources", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown source kind %q", ErrInvalidConfig, c.Source.Kind)
	}

	if c.Source.TimeoutSecs < 0 {
		return fmt.Errorf("%w: timeout_secs must not be negative", ErrInvalidConfig)
	}
	if c.Source.Attempts < 1 {
		return fmt.Errorf("%w: attempts must be at least 1", ErrInvalidConfig)
	}
	if c.Source.RetryDelayMillis < 0 {
		return fmt.Errorf("%w: retry_delay_ms must not be negative", ErrInvalidConfig)
	}

	if c.Search.Matcher != MatcherEdit && c.Search.Matcher != MatcherSubsequence {
		return fmt.Errorf("%w: unknown matcher %q", ErrInvalidConfig, c.Search.Matcher)
	}
	if c.Search.Tolerance < 0 || c.Search.Tolerance > 1 {
		return fmt.Errorf("%w: tolerance must be between 0 and 1", ErrInvalidConfig)
	}
	for field, weight := range c.Search.Weights {
		switch field {
		case "common_name", "additional_names", "latin_name", "localized_name":
		default:
			return fmt.Errorf("%w: unknown weighted field %q", ErrInvalidConfig, field)
		}
		if weight < 0 {
			return fmt.Errorf("%w: weight of %s must not be negative", ErrInvalidConfig, field)
		}
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Timeout returns the HTTP request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Source.TimeoutSecs) * time.Second
}

// RetryDelay returns the base backoff between HTTP attempts.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Source.RetryDelayMillis) * time.Millisecond
}

// ParseLogLevel maps debug, info, warn or error to a slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", level)
	}
}
