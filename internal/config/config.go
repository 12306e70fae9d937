// Package config provides configuration management for chronology.
//
// Values come from three layers, later layers winning: built-in defaults,
// an optional YAML file, and CHRONOLOGY_* environment variables. Command
// line flags are applied by the caller on top of the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	AppName    = "Chronology Backend"
	AppVersion = "0.1.0"
	APIPrefix  = "/api/v1"

	// DefaultFile is read from the working directory when no path is given.
	DefaultFile = "chronology.yaml"
)

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	// Server settings
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`

	// Storage settings
	Storage      string `yaml:"storage"`
	DatabasePath string `yaml:"database_path"`
	Seed         bool   `yaml:"seed"`
	DatasetDir   string `yaml:"dataset_dir"`

	// Dataset content paging
	DatasetRowLimit int `yaml:"dataset_row_limit"`
	MaxDatasetRows  int `yaml:"max_dataset_rows"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Client settings
	APIURL        string        `yaml:"api_url"`
	ClientTimeout time.Duration `yaml:"client_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:            "0.0.0.0",
		Port:            8000,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		Storage:         StorageSQLite,
		DatabasePath:    "chronology.db",
		Seed:            true,
		DatasetDir:      "dataset",
		DatasetRowLimit: 100,
		MaxDatasetRows:  1000,
		LogLevel:        "info",
		LogFormat:       "json",
		APIURL:          "http://localhost:8000" + APIPrefix,
		ClientTimeout:   10 * time.Second,
	}
}

// Load builds a configuration from defaults, the YAML file at path and the
// environment. An empty path tries DefaultFile; a missing file is not an
// error unless path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv returns the defaults overlaid with environment variables.
func LoadFromEnv() *Config {
	cfg := DefaultConfig()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	if host := os.Getenv("CHRONOLOGY_HOST"); host != "" {
		c.Host = host
	}

	if port := os.Getenv("CHRONOLOGY_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Port = p
		}
	}

	if storage := os.Getenv("CHRONOLOGY_STORAGE"); storage != "" {
		c.Storage = strings.ToLower(storage)
	}

	if db := os.Getenv("CHRONOLOGY_DB"); db != "" {
		c.DatabasePath = db
	}

	if seed := os.Getenv("CHRONOLOGY_SEED"); seed != "" {
		if b, err := strconv.ParseBool(seed); err == nil {
			c.Seed = b
		}
	}

	if dir := os.Getenv("CHRONOLOGY_DATASET_DIR"); dir != "" {
		c.DatasetDir = dir
	}

	if level := os.Getenv("CHRONOLOGY_LOG_LEVEL"); level != "" {
		c.LogLevel = strings.ToLower(level)
	}

	if format := os.Getenv("CHRONOLOGY_LOG_FORMAT"); format != "" {
		c.LogFormat = strings.ToLower(format)
	}

	if origins := os.Getenv("CHRONOLOGY_CORS_ORIGINS"); origins != "" {
		c.CORSOrigins = splitList(origins)
	}

	if apiURL := os.Getenv("CHRONOLOGY_API_URL"); apiURL != "" {
		c.APIURL = strings.TrimRight(apiURL, "/")
	}

	if timeout := os.Getenv("CHRONOLOGY_CLIENT_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.ClientTimeout = d
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return &ConfigError{Field: "CHRONOLOGY_PORT", Message: "must be between 1 and 65535"}
	}
	switch c.Storage {
	case StorageSQLite:
		if c.DatabasePath == "" {
			return &ConfigError{Field: "CHRONOLOGY_DB", Message: "required for sqlite storage"}
		}
	case StorageMemory:
	default:
		return &ConfigError{Field: "CHRONOLOGY_STORAGE", Message: "must be sqlite or memory"}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ConfigError{Field: "CHRONOLOGY_LOG_LEVEL", Message: "must be debug, info, warn or error"}
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return &ConfigError{Field: "CHRONOLOGY_LOG_FORMAT", Message: "must be json or text"}
	}
	if c.DatasetRowLimit < 1 || c.MaxDatasetRows < c.DatasetRowLimit {
		return &ConfigError{Field: "max_dataset_rows", Message: "must be at least dataset_row_limit"}
	}
	return nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Message
}
