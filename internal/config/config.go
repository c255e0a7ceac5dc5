package config

import "time"

// Config represents the main mindline configuration
type Config struct {
	// HTTP server
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Session lifecycle
	Session SessionConfig `json:"session" mapstructure:"session"`

	// Model provider
	AI AIConfig `json:"ai" mapstructure:"ai"`

	// Services directory / retrieval
	Directory DirectoryConfig `json:"directory" mapstructure:"directory"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `json:"host" mapstructure:"host"`
	Port        int      `json:"port" mapstructure:"port"`
	CORSOrigins []string `json:"cors_origins" mapstructure:"cors_origins"`
}

// SessionConfig holds session lifecycle configuration
type SessionConfig struct {
	TTLHours               int `json:"ttl_hours" mapstructure:"ttl_hours"`
	InactivityMinutes      int `json:"inactivity_minutes" mapstructure:"inactivity_minutes"`
	MaxSessions            int `json:"max_sessions" mapstructure:"max_sessions"`
	CleanupIntervalMinutes int `json:"cleanup_interval_minutes" mapstructure:"cleanup_interval_minutes"`
}

// TTL returns the absolute session lifetime.
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// InactivityLimit returns the idle timeout.
func (c SessionConfig) InactivityLimit() time.Duration {
	return time.Duration(c.InactivityMinutes) * time.Minute
}

// CleanupInterval returns the janitor sweep interval.
func (c SessionConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalMinutes) * time.Minute
}

// AIConfig holds model provider configuration
type AIConfig struct {
	Provider              string  `json:"provider" mapstructure:"provider"` // openai, anthropic
	APIKey                string  `json:"api_key" mapstructure:"api_key"`
	Model                 string  `json:"model" mapstructure:"model"`
	Temperature           float64 `json:"temperature" mapstructure:"temperature"`
	MaxTokens             int     `json:"max_tokens" mapstructure:"max_tokens"`
	RequestTimeoutSeconds int     `json:"request_timeout_seconds" mapstructure:"request_timeout_seconds"`
}

// DirectoryConfig holds services directory configuration
type DirectoryConfig struct {
	DBPath         string `json:"db_path" mapstructure:"db_path"`
	DatasetPath    string `json:"dataset_path" mapstructure:"dataset_path"`
	EmbeddingModel string `json:"embedding_model" mapstructure:"embedding_model"`
	TopK           int    `json:"top_k" mapstructure:"top_k"`

	// APIKey overrides ai.api_key for embedding calls. Embeddings always go
	// to OpenAI, so this matters when the chat provider is anthropic.
	APIKey string `json:"api_key,omitempty" mapstructure:"api_key"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Pretty bool   `json:"pretty" mapstructure:"pretty"`
	File   string `json:"file" mapstructure:"file"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5001,
			CORSOrigins: []string{
				"http://localhost:5173",
				"http://localhost:5174",
				"http://localhost:3000",
			},
		},
		Session: SessionConfig{
			TTLHours:               24,
			InactivityMinutes:      30,
			MaxSessions:            1000,
			CleanupIntervalMinutes: 5,
		},
		AI: AIConfig{
			Provider:              "openai",
			Model:                 "gpt-4o",
			Temperature:           0,
			MaxTokens:             1000,
			RequestTimeoutSeconds: 30,
		},
		Directory: DirectoryConfig{
			EmbeddingModel: "text-embedding-3-small",
			TopK:           3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
