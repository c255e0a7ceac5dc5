package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, 24, cfg.Session.TTLHours)
	assert.Equal(t, 30, cfg.Session.InactivityMinutes)
	assert.Equal(t, 1000, cfg.Session.MaxSessions)
	assert.Equal(t, 5, cfg.Session.CleanupIntervalMinutes)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
	assert.Equal(t, 3, cfg.Directory.TopK)
	assert.NoError(t, cfg.Validate())
}

func TestSessionConfig_Durations(t *testing.T) {
	cfg := DefaultConfig().Session

	assert.Equal(t, 24*time.Hour, cfg.TTL())
	assert.Equal(t, 30*time.Minute, cfg.InactivityLimit())
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval())
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Session.MaxSessions)
	assert.NotEmpty(t, cfg.Directory.DBPath)
}

func TestLoader_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindline.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": 8080},
		"session": {"max_sessions": 50}
	}`), 0o600))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Session.MaxSessions)
	// Untouched fields keep defaults.
	assert.Equal(t, 24, cfg.Session.TTLHours)
}

func TestLoader_LegacyEnvOverrides(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "48")
	t.Setenv("SESSION_INACTIVITY_MINUTES", "15")
	t.Setenv("MAX_SESSIONS", "200")
	t.Setenv("CLEANUP_INTERVAL_MINUTES", "1")

	cfg, err := NewLoader(filepath.Join(t.TempDir(), "missing.json")).Load()
	require.NoError(t, err)
	assert.Equal(t, 48, cfg.Session.TTLHours)
	assert.Equal(t, 15, cfg.Session.InactivityMinutes)
	assert.Equal(t, 200, cfg.Session.MaxSessions)
	assert.Equal(t, 1, cfg.Session.CleanupIntervalMinutes)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad ttl", func(c *Config) { c.Session.TTLHours = -1 }},
		{"bad inactivity", func(c *Config) { c.Session.InactivityMinutes = 0 }},
		{"bad max sessions", func(c *Config) { c.Session.MaxSessions = 0 }},
		{"bad interval", func(c *Config) { c.Session.CleanupIntervalMinutes = 0 }},
		{"bad provider", func(c *Config) { c.AI.Provider = "bard" }},
		{"bad max tokens", func(c *Config) { c.AI.MaxTokens = 0 }},
		{"bad timeout", func(c *Config) { c.AI.RequestTimeoutSeconds = 0 }},
		{"bad top_k", func(c *Config) { c.Directory.TopK = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
