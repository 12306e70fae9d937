package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Port != 8000 {
		t.Errorf("Expected port 8000, got %d", cfg.Port)
	}
	if cfg.Storage != StorageSQLite {
		t.Errorf("Expected sqlite storage, got %q", cfg.Storage)
	}
	if cfg.DatabasePath != "chronology.db" {
		t.Errorf("Expected chronology.db, got %q", cfg.DatabasePath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHRONOLOGY_PORT", "9100")
	t.Setenv("CHRONOLOGY_STORAGE", "MEMORY")
	t.Setenv("CHRONOLOGY_SEED", "false")
	t.Setenv("CHRONOLOGY_CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("CHRONOLOGY_API_URL", "http://remote:8000/api/v1/")
	t.Setenv("CHRONOLOGY_CLIENT_TIMEOUT", "3s")

	cfg := LoadFromEnv()
	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Port)
	}
	if cfg.Storage != StorageMemory {
		t.Errorf("Storage = %q, want memory", cfg.Storage)
	}
	if cfg.Seed {
		t.Error("Seed should be false")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.APIURL != "http://remote:8000/api/v1" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.ClientTimeout != 3*time.Second {
		t.Errorf("ClientTimeout = %v", cfg.ClientTimeout)
	}
}

func TestLoadFromEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("CHRONOLOGY_PORT", "not-a-port")
	cfg := LoadFromEnv()
	if cfg.Port != 8000 {
		t.Errorf("Expected default port on invalid env, got %d", cfg.Port)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chronology.yaml")
	content := "port: 8500\nstorage: memory\ndataset_dir: /data/csv\nread_timeout: 5s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHRONOLOGY_PORT", "8600")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8600 {
		t.Errorf("env should override file: port = %d", cfg.Port)
	}
	if cfg.Storage != StorageMemory {
		t.Errorf("Storage = %q", cfg.Storage)
	}
	if cfg.DatasetDir != "/data/csv" {
		t.Errorf("DatasetDir = %q", cfg.DatasetDir)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 30*time.Second {
		t.Errorf("WriteTimeout should keep default, got %v", cfg.WriteTimeout)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := Load(""); err != nil {
		t.Errorf("missing default file should not fail: %v", err)
	}
	if _, err := Load("nope.yaml"); err == nil {
		t.Error("missing explicit file should fail")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("port: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad port", func(c *Config) { c.Port = 0 }, "CHRONOLOGY_PORT"},
		{"bad storage", func(c *Config) { c.Storage = "redis" }, "CHRONOLOGY_STORAGE"},
		{"missing db", func(c *Config) { c.DatabasePath = "" }, "CHRONOLOGY_DB"},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, "CHRONOLOGY_LOG_LEVEL"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "CHRONOLOGY_LOG_FORMAT"},
		{"dataset rows", func(c *Config) { c.MaxDatasetRows = 10 }, "max_dataset_rows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestMemoryStorageNeedsNoDatabase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage = StorageMemory
	cfg.DatabasePath = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("memory storage should not need a database path: %v", err)
	}
}

func TestAddr(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	if got := cfg.Addr(); got != "127.0.0.1:8000" {
		t.Errorf("Addr() = %q", got)
	}
}
