package config

import "fmt"

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Session.TTLHours <= 0 {
		return fmt.Errorf("session ttl_hours must be positive, got %d", c.Session.TTLHours)
	}
	if c.Session.InactivityMinutes <= 0 {
		return fmt.Errorf("session inactivity_minutes must be positive, got %d", c.Session.InactivityMinutes)
	}
	if c.Session.MaxSessions <= 0 {
		return fmt.Errorf("session max_sessions must be positive, got %d", c.Session.MaxSessions)
	}
	if c.Session.CleanupIntervalMinutes <= 0 {
		return fmt.Errorf("session cleanup_interval_minutes must be positive, got %d", c.Session.CleanupIntervalMinutes)
	}

	switch c.AI.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("ai provider must be openai or anthropic, got %q", c.AI.Provider)
	}
	if c.AI.MaxTokens <= 0 {
		return fmt.Errorf("ai max_tokens must be positive, got %d", c.AI.MaxTokens)
	}
	if c.AI.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("ai request_timeout_seconds must be positive, got %d", c.AI.RequestTimeoutSeconds)
	}

	if c.Directory.TopK <= 0 {
		return fmt.Errorf("directory top_k must be positive, got %d", c.Directory.TopK)
	}

	return nil
}
