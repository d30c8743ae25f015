// Package config provides the application configuration for the search
// engine. Values come from built-in defaults, an optional YAML file, and
// SUPERSEARCH_* environment variable overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" or "5m" parse
// directly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	MaxRequestBytes int64   `yaml:"max_request_bytes"`
	RateLimit       float64 `yaml:"rate_limit"` // requests per second
	RateBurst       int     `yaml:"rate_burst"`
}

// DataConfig holds filesystem locations for persisted state.
type DataConfig struct {
	Dir           string `yaml:"dir"`             // index snapshots and the document store live here
	StopWordsFile string `yaml:"stop_words_file"` // optional; built-in list when empty
}

// IndexConfig holds indexing settings.
type IndexConfig struct {
	Workers int `yaml:"workers"` // concurrent article parsers
}

// SearchConfig holds query-side settings.
type SearchConfig struct {
	PageSize        int      `yaml:"page_size"`
	MaxPageSize     int      `yaml:"max_page_size"`
	CacheTTL        Duration `yaml:"cache_ttl"`
	CacheMaxEntries int      `yaml:"cache_max_entries"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Config is the root configuration object.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Data    DataConfig    `yaml:"data"`
	Index   IndexConfig   `yaml:"index"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// Default returns the configuration used when no file or overrides are
// present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			MaxRequestBytes: 10 * 1024 * 1024,
			RateLimit:       50,
			RateBurst:       100,
		},
		Data: DataConfig{
			Dir: "data",
		},
		Index: IndexConfig{
			Workers: 4,
		},
		Search: SearchConfig{
			PageSize:        15,
			MaxPageSize:     100,
			CacheTTL:        Duration(5 * time.Minute),
			CacheMaxEntries: 1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (when
// path is non-empty), and environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- path is operator-supplied configuration
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers SUPERSEARCH_* environment variables over the current
// values. Unset variables leave the value untouched.
func (c *Config) applyEnv() error {
	if v := os.Getenv("SUPERSEARCH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SUPERSEARCH_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("SUPERSEARCH_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("SUPERSEARCH_STOP_WORDS_FILE"); v != "" {
		c.Data.StopWordsFile = v
	}
	if v := os.Getenv("SUPERSEARCH_INDEX_WORKERS"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SUPERSEARCH_INDEX_WORKERS %q: %w", v, err)
		}
		c.Index.Workers = workers
	}
	if v := os.Getenv("SUPERSEARCH_PAGE_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SUPERSEARCH_PAGE_SIZE %q: %w", v, err)
		}
		c.Search.PageSize = size
	}
	if v := os.Getenv("SUPERSEARCH_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SUPERSEARCH_CACHE_TTL %q: %w", v, err)
		}
		c.Search.CacheTTL = Duration(ttl)
	}
	if v := os.Getenv("SUPERSEARCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SUPERSEARCH_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	return nil
}

// Validate reports the first configuration value that is out of range.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxRequestBytes < 1 {
		return fmt.Errorf("server.max_request_bytes must be positive, got %d", c.Server.MaxRequestBytes)
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("server.rate_limit must be positive, got %v", c.Server.RateLimit)
	}
	if c.Server.RateBurst < 1 {
		return fmt.Errorf("server.rate_burst must be positive, got %d", c.Server.RateBurst)
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir cannot be empty")
	}
	if c.Index.Workers < 1 {
		return fmt.Errorf("index.workers must be positive, got %d", c.Index.Workers)
	}
	if c.Search.PageSize < 1 {
		return fmt.Errorf("search.page_size must be positive, got %d", c.Search.PageSize)
	}
	if c.Search.MaxPageSize < c.Search.PageSize {
		return fmt.Errorf("search.max_page_size (%d) cannot be below search.page_size (%d)",
			c.Search.MaxPageSize, c.Search.PageSize)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}
