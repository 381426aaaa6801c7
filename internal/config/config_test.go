package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attribution/internal/models"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, 10*time.Minute, cfg.ResultCacheTTL)
	assert.Equal(t, 5*time.Minute, cfg.ConfigCacheTTL)
	assert.Equal(t, 28*24*time.Hour, cfg.CTVWindow)
	assert.Equal(t, 10, cfg.MinVisitsDefault)
	assert.Equal(t, models.StrategyPreAggregatedSum, cfg.Strategy)
	assert.Empty(t, cfg.APIKeys)
	assert.False(t, cfg.IngestEnabled)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("API_KEYS", " key-a , ,key-b")
	t.Setenv("DEFAULT_STRATEGY", "adm_prefix")
	t.Setenv("CTV_WINDOW_DAYS", "14")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"key-a", "key-b"}, cfg.APIKeys)
	assert.Equal(t, models.StrategyRowLevelDistinct, cfg.Strategy)
	assert.Equal(t, 14*24*time.Hour, cfg.CTVWindow)
}

func TestLoadFromEnv_BadStrategy(t *testing.T) {
	t.Setenv("DEFAULT_STRATEGY", "ROUND_ROBIN")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"bad timeout", func(c *Config) { c.TimeoutMS = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }},
		{"negative min visits", func(c *Config) { c.MinVisitsDefault = -1 }},
		{"zero window", func(c *Config) { c.CTVWindowDays = 0 }},
		{"ingest without redis", func(c *Config) { c.IngestEnabled = true; c.RedisURL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromEnv()
			require.NoError(t, err)
			tt.setup(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
