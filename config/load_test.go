package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "furrygarden.yaml")
	content := `
source:
  kind: http
  url: https://example.org/furry-garden/data/
  format: json
  attempts: 3
search:
  matcher: subsequence
  tolerance: 0.4
  weights:
    localized_name: 0.5
log_level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceHTTP, cfg.Source.Kind)
	assert.Equal(t, "https://example.org/furry-garden/data", cfg.Source.URL)
	assert.Equal(t, SourceJSON, cfg.Source.Format)
	assert.Equal(t, 3, cfg.Source.Attempts)
	assert.Equal(t, 30, cfg.Source.TimeoutSecs, "unset fields keep defaults")
	assert.Equal(t, MatcherSubsequence, cfg.Search.Matcher)
	assert.Equal(t, 0.4, cfg.Search.Tolerance)
	assert.Equal(t, 0.5, cfg.Search.Weights["localized_name"])
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, SourceCSV, cfg.Source.Kind)
	assert.Equal(t, "data", cfg.Source.Dir)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  tolerance: 3\n"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FURRYGARDEN_SOURCE", "json")
	t.Setenv("FURRYGARDEN_DATA_DIR", "/srv/plants")
	t.Setenv("FURRYGARDEN_TOLERANCE", "0.1")
	t.Setenv("FURRYGARDEN_HTTP_ATTEMPTS", "4")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, SourceJSON, cfg.Source.Kind)
	assert.Equal(t, "/srv/plants", cfg.Source.Dir)
	assert.Equal(t, 0.1, cfg.Search.Tolerance)
	assert.Equal(t, 4, cfg.Source.Attempts)
}

func TestApplyEnv_BadNumbers(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == "FURRYGARDEN_HTTP_TIMEOUT_SECS" {
			return "soon", true
		}
		return "", false
	}
	err := DefaultConfig().ApplyEnv(lookup)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	lookup = func(key string) (string, bool) {
		if key == "FURRYGARDEN_TOLERANCE" {
			return "low", true
		}
		return "", false
	}
	err = DefaultConfig().ApplyEnv(lookup)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("FURRYGARDEN_MATCHER=subsequence\n"), 0o644))

	// Registers cleanup that unsets the variable after the test.
	t.Setenv("FURRYGARDEN_MATCHER", "")
	require.NoError(t, os.Unsetenv("FURRYGARDEN_MATCHER"))

	require.NoError(t, LoadEnvFiles(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "subsequence", os.Getenv("FURRYGARDEN_MATCHER"))
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := NewConfig(WithURL("https://example.org/data"), WithTolerance(0.25))
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceHTTP, loaded.Source.Kind)
	assert.Equal(t, 0.25, loaded.Search.Tolerance)
}
