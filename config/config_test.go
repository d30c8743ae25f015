package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Search.PageSize != 15 {
		t.Errorf("default page size = %d, want 15", cfg.Search.PageSize)
	}
	if got := time.Duration(cfg.Search.CacheTTL); got != 5*time.Minute {
		t.Errorf("default cache TTL = %v, want 5m", got)
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics must be enabled by default")
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9091
  rate_limit: 10.5
data:
  dir: /var/lib/supersearch
search:
  page_size: 5
  max_page_size: 50
  cache_ttl: 90s
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9091 {
		t.Errorf("port = %d, want 9091", cfg.Server.Port)
	}
	if cfg.Server.RateLimit != 10.5 {
		t.Errorf("rate limit = %v, want 10.5", cfg.Server.RateLimit)
	}
	if cfg.Data.Dir != "/var/lib/supersearch" {
		t.Errorf("data dir = %q, want /var/lib/supersearch", cfg.Data.Dir)
	}
	if got := time.Duration(cfg.Search.CacheTTL); got != 90*time.Second {
		t.Errorf("cache TTL = %v, want 90s", got)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v, want debug/json", cfg.Logging)
	}

	// Values the file omits keep their defaults.
	if cfg.Index.Workers != 4 {
		t.Errorf("workers = %d, want default 4", cfg.Index.Workers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatal("expected an error for an explicitly named missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 9091\n")

	t.Setenv("SUPERSEARCH_PORT", "7070")
	t.Setenv("SUPERSEARCH_DATA_DIR", "/tmp/ss")
	t.Setenv("SUPERSEARCH_CACHE_TTL", "45s")
	t.Setenv("SUPERSEARCH_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Environment wins over the file.
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Data.Dir != "/tmp/ss" {
		t.Errorf("data dir = %q, want /tmp/ss", cfg.Data.Dir)
	}
	if got := time.Duration(cfg.Search.CacheTTL); got != 45*time.Second {
		t.Errorf("cache TTL = %v, want 45s", got)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level = %q, want warn", cfg.Logging.Level)
	}
}

func TestEnvOverrideRejectsBadNumber(t *testing.T) {
	t.Setenv("SUPERSEARCH_PORT", "not-a-port")

	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "SUPERSEARCH_PORT") {
		t.Errorf("Load() error = %v, want a SUPERSEARCH_PORT parse error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"port too low", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"zero rate limit", func(c *Config) { c.Server.RateLimit = 0 }, "server.rate_limit"},
		{"empty data dir", func(c *Config) { c.Data.Dir = "" }, "data.dir"},
		{"zero workers", func(c *Config) { c.Index.Workers = 0 }, "index.workers"},
		{"zero page size", func(c *Config) { c.Search.PageSize = 0 }, "search.page_size"},
		{"max below page size", func(c *Config) { c.Search.MaxPageSize = 3 }, "search.max_page_size"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	path := writeConfigFile(t, "search:\n  cache_ttl: nonsense\n")

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "duration") {
		t.Errorf("Load() error = %v, want a duration parse error", err)
	}
}

func TestLoadRejectsInvalidValuesFromFile(t *testing.T) {
	path := writeConfigFile(t, "search:\n  page_size: -1\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected a validation error for a negative page size")
	}
}
