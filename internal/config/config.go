package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"attribution/internal/models"
)

// Config holds the attribution service configuration.
type Config struct {
	// Server
	Port      int `env:"HTTP_PORT" envDefault:"8080"`
	TimeoutMS int `env:"TIMEOUT_MS" envDefault:"30000"`

	// Storage
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"attribution.db"`

	// Redis; an empty URL disables the result cache and ingestion
	RedisURL      string `env:"REDIS_URL"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Caching (parsed as seconds)
	ResultCacheTTLSec int `env:"RESULT_CACHE_TTL_SEC" envDefault:"600"`
	ConfigCacheTTLSec int `env:"CONFIG_CACHE_TTL_SEC" envDefault:"300"`

	// Attribution
	MinVisitsDefault int    `env:"MIN_VISITS_DEFAULT" envDefault:"10"`
	CTVWindowDays    int    `env:"CTV_WINDOW_DAYS" envDefault:"28"`
	DefaultStrategy  string `env:"DEFAULT_STRATEGY" envDefault:"PRE_AGGREGATED_SUM"`

	// Access
	APIKeys []string `env:"API_KEYS" envSeparator:","`

	// Ingestion
	IngestEnabled       bool   `env:"INGEST_ENABLED" envDefault:"false"`
	IngestStreamKey     string `env:"INGEST_STREAM_KEY" envDefault:"attribution:events"`
	IngestConsumerGroup string `env:"INGEST_CONSUMER_GROUP" envDefault:"attribution"`

	// Computed values (not from env)
	ResultCacheTTL time.Duration   `env:"-"`
	ConfigCacheTTL time.Duration   `env:"-"`
	CTVWindow      time.Duration   `env:"-"`
	Strategy       models.Strategy `env:"-"`

	// Observability
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	PrometheusPort int    `env:"PROMETHEUS_PORT" envDefault:"9091"`
}

// Timeout returns the request timeout as a time.Duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	opts := env.Options{
		Prefix: "",
	}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	keys := cfg.APIKeys[:0]
	for _, k := range cfg.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	cfg.APIKeys = keys

	cfg.ResultCacheTTL = time.Duration(cfg.ResultCacheTTLSec) * time.Second
	cfg.ConfigCacheTTL = time.Duration(cfg.ConfigCacheTTLSec) * time.Second
	cfg.CTVWindow = time.Duration(cfg.CTVWindowDays) * 24 * time.Hour

	strategy, err := models.ParseStrategy(cfg.DefaultStrategy)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_STRATEGY: %w", err)
	}
	cfg.Strategy = strategy

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if c.TimeoutMS < 1 {
		return fmt.Errorf("timeout must be at least 1ms, got %dms", c.TimeoutMS)
	}

	if c.DatabaseDSN == "" {
		return fmt.Errorf("database DSN must be set")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if c.ResultCacheTTL < time.Second {
		return fmt.Errorf("result cache TTL must be at least 1 second")
	}

	if c.ConfigCacheTTL < time.Second {
		return fmt.Errorf("config cache TTL must be at least 1 second")
	}

	if c.MinVisitsDefault < 0 {
		return fmt.Errorf("default min visits must be non-negative, got %d", c.MinVisitsDefault)
	}

	if c.CTVWindowDays < 1 {
		return fmt.Errorf("CTV window must be at least 1 day")
	}

	if c.IngestEnabled && c.RedisURL == "" {
		return fmt.Errorf("ingestion requires REDIS_URL")
	}

	return nil
}
