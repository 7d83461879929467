package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
dataset:
  path: "`+filepath.Join(dir, "data", "flights.csv")+`"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, FormatCSV, cfg.Dataset.Format)
	assert.Equal(t, DefaultToleranceSeconds, cfg.Tolerance())
	assert.Equal(t, 60*time.Second, cfg.Refresh.DownloadTimeout)
	assert.Equal(t, "body", cfg.Refresh.LinkSelector)
	assert.False(t, cfg.Database.Enabled())
	assert.DirExists(t, filepath.Join(dir, "data"))
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
dataset:
  format: "NDJSON"
  path: "`+filepath.Join(t.TempDir(), "flights.json")+`"
prediction:
  tolerance_seconds: 0
refresh:
  download_timeout: "5s"
rate_limit:
  rps: 2.5
  burst: 3
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, FormatNDJSON, cfg.Dataset.Format)
	assert.Equal(t, 0, cfg.Tolerance())
	assert.Equal(t, 5*time.Second, cfg.Refresh.DownloadTimeout)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
`)
	t.Setenv("PORT", "7070")
	t.Setenv("DATASET_PATH", filepath.Join(t.TempDir(), "other.csv"))
	t.Setenv("TOLERANCE_SECONDS", "60")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, FormatCSV, cfg.Dataset.Format)
	assert.Equal(t, 60, cfg.Tolerance())
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown format", "dataset:\n  format: parquet\n"},
		{"mysql without database", "dataset:\n  format: mysql\n"},
		{"negative tolerance", "prediction:\n  tolerance_seconds: -1\n"},
		{"bad duration", "refresh:\n  download_timeout: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDatasetFileExtensions(t *testing.T) {
	assert.Equal(t, []string{".csv"}, DatasetConfig{Format: FormatCSV}.FileExtensions())
	assert.Equal(t, []string{".json", ".ndjson"}, DatasetConfig{Format: FormatNDJSON}.FileExtensions())
	assert.Equal(t, []string{".csv", ".json", ".ndjson"}, DatasetConfig{Format: FormatMySQL}.FileExtensions())
}
