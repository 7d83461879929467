// config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Dataset formats understood by the record sources.
const (
	FormatNDJSON = "ndjson"
	FormatCSV    = "csv"
	FormatMySQL  = "mysql"
)

// DefaultToleranceSeconds is the matching window around the requested departure and arrival times.
const DefaultToleranceSeconds = 900

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// Enabled reports whether a database was configured at all.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != "" && d.DBName != ""
}

type DatasetConfig struct {
	Format string `yaml:"format"` // ndjson, csv or mysql
	Path   string `yaml:"path"`   // local file for ndjson/csv, download target for mysql imports
}

// FileExtensions lists the file extensions a downloaded dataset may have for this format.
// mysql imports accept every format the file sources can decode.
func (d DatasetConfig) FileExtensions() []string {
	switch d.Format {
	case FormatCSV:
		return []string{".csv"}
	case FormatNDJSON:
		return []string{".json", ".ndjson"}
	default:
		return []string{".csv", ".json", ".ndjson"}
	}
}

type PredictionConfig struct {
	ToleranceSeconds *int `yaml:"tolerance_seconds"`
}

type EncodingsConfig struct {
	Path string `yaml:"path"`
}

type RefreshConfig struct {
	IndexPageURL       string        `yaml:"index_page_url"`
	LinkSelector       string        `yaml:"link_selector"`
	DatasetURL         string        `yaml:"dataset_url"`
	DownloadTimeoutStr string        `yaml:"download_timeout"`
	DownloadTimeout    time.Duration `yaml:"-"` // Parsed duration
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"rps"`
	Burst             int     `yaml:"burst"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Dataset    DatasetConfig    `yaml:"dataset"`
	Prediction PredictionConfig `yaml:"prediction"`
	Encodings  EncodingsConfig  `yaml:"encodings"`
	Refresh    RefreshConfig    `yaml:"refresh"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

// Tolerance returns the configured matching window in seconds.
func (c *Config) Tolerance() int {
	if c.Prediction.ToleranceSeconds == nil {
		return DefaultToleranceSeconds
	}
	return *c.Prediction.ToleranceSeconds
}

// LoadConfig reads the YAML file at configPath, applies environment overrides
// (optionally sourced from a .env file next to the working directory) and fills defaults.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN Config: could not load .env file: %v", err)
	}

	cfg := &Config{}
	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigPath returns the first existing config file among the usual locations,
// or "" when none exists (environment-only configuration).
func FindConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	potentialPaths := []string{
		"config.yaml",
		"config/config.yaml",
		"../config/config.yaml",
	}
	for _, p := range potentialPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString("PORT", &cfg.Server.Port)
	setString("DB_HOST", &cfg.Database.Host)
	setString("DB_PORT", &cfg.Database.Port)
	setString("DB_USER", &cfg.Database.User)
	setString("DB_PASSWORD", &cfg.Database.Password)
	setString("DB_NAME", &cfg.Database.DBName)
	setString("DATASET_PATH", &cfg.Dataset.Path)
	setString("DATASET_FORMAT", &cfg.Dataset.Format)
	setString("ENCODINGS_PATH", &cfg.Encodings.Path)

	if v := os.Getenv("TOLERANCE_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Prediction.ToleranceSeconds = &n
		} else {
			log.Printf("WARN Config: ignoring TOLERANCE_SECONDS=%q: %v", v, err)
		}
	}
}

func (c *Config) applyDefaults() error {
	if c.Server.Port == "" {
		c.Server.Port = "8000"
	}
	if c.Database.Port == "" {
		c.Database.Port = "3306"
	}
	c.Dataset.Format = strings.ToLower(strings.TrimSpace(c.Dataset.Format))
	if c.Dataset.Format == "" {
		c.Dataset.Format = formatFromPath(c.Dataset.Path)
	}
	if c.Dataset.Path == "" && c.Dataset.Format != FormatMySQL {
		c.Dataset.Path = "flights_data.json"
	}
	if c.Refresh.LinkSelector == "" {
		c.Refresh.LinkSelector = "body"
	}

	if c.Refresh.DownloadTimeoutStr != "" {
		d, err := time.ParseDuration(c.Refresh.DownloadTimeoutStr)
		if err != nil {
			return fmt.Errorf("failed to parse refresh.download_timeout: %w", err)
		}
		c.Refresh.DownloadTimeout = d
	} else {
		c.Refresh.DownloadTimeout = 60 * time.Second // Default
	}

	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 10
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}

	// Make sure the directory for the local dataset exists, the refresher downloads into it.
	if c.Dataset.Path != "" {
		if err := os.MkdirAll(filepath.Dir(c.Dataset.Path), 0755); err != nil {
			return fmt.Errorf("failed to create directory for dataset: %w", err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Dataset.Format {
	case FormatNDJSON, FormatCSV:
	case FormatMySQL:
		if !c.Database.Enabled() {
			return fmt.Errorf("dataset format %q requires database.host and database.dbname", FormatMySQL)
		}
	default:
		return fmt.Errorf("unknown dataset format %q (use ndjson, csv or mysql)", c.Dataset.Format)
	}
	if c.Tolerance() < 0 {
		return fmt.Errorf("prediction.tolerance_seconds must be >= 0, got %d", c.Tolerance())
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values must be positive")
	}
	return nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	default:
		return FormatNDJSON
	}
}
