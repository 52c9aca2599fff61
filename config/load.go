package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FURRYGARDEN_"

// Load reads a YAML config from path on top of the defaults. If the file does
// not exist, the defaults are used. Environment overrides are applied last.
// The result is validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
			}
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFiles loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides fields from FURRYGARDEN_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}

	str("SOURCE", &c.Source.Kind)
	str("DATA_DIR", &c.Source.Dir)
	str("DATA_URL", &c.Source.URL)
	str("DATA_FORMAT", &c.Source.Format)
	str("DB_PATH", &c.Source.DBPath)
	str("MATCHER", &c.Search.Matcher)
	str("LOG_LEVEL", &c.LogLevel)

	if err := num("HTTP_TIMEOUT_SECS", &c.Source.TimeoutSecs); err != nil {
		return err
	}
	if err := num("HTTP_ATTEMPTS", &c.Source.Attempts); err != nil {
		return err
	}
	if err := num("HTTP_RETRY_DELAY_MS", &c.Source.RetryDelayMillis); err != nil {
		return err
	}

	if v, ok := lookup(EnvPrefix + "TOLERANCE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %sTOLERANCE: %w", ErrInvalidConfig, EnvPrefix, err)
		}
		c.Search.Tolerance = f
	}
	return nil
}
