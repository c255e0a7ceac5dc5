package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// legacyEnvBindings maps config keys to the bare environment variable names
// the original deployment recognized, kept for drop-in compatibility.
var legacyEnvBindings = map[string]string{
	"session.ttl_hours":                "SESSION_TTL_HOURS",
	"session.inactivity_minutes":       "SESSION_INACTIVITY_MINUTES",
	"session.max_sessions":             "MAX_SESSIONS",
	"session.cleanup_interval_minutes": "CLEANUP_INTERVAL_MINUTES",
	"ai.api_key":                       "OPENAI_API_KEY",
}

// Loader handles configuration loading
type Loader struct {
	configPath string
}

// NewLoader creates a new config loader
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// Load loads the configuration from file and environment.
func (l *Loader) Load() (*Config, error) {
	configPath := l.configPath
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".mindline", "mindline.json")
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	// Environment overrides: MINDLINE_* plus the legacy bare names.
	v.SetEnvPrefix("MINDLINE")
	v.AutomaticEnv()
	for key, env := range legacyEnvBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".mindline")
	}
	if cfg.Directory.DBPath == "" {
		cfg.Directory.DBPath = filepath.Join(cfg.DataDir, "directory.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
