// Package config provides configuration management for the concierge service.
package config

import (
	"fmt"
	"os"
	"time"
)

// Generation backends
const (
	BackendScripted  = "scripted"
	BackendAnthropic = "anthropic"
	BackendOpenAI    = "openai"
)

// Config holds the configuration for the service
type Config struct {
	Backend         string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	Model           string

	ArchiveDir  string
	TypingDelay time.Duration

	TelemetryEnabled bool
	OTLPEndpoint     string
	LogLevel         string
}

// Load loads configuration from environment variables
func Load() Config {
	config := Config{
		Backend:         getenvDefault("CONCIERGE_BACKEND", BackendScripted),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		Model:           os.Getenv("CONCIERGE_MODEL"),
		ArchiveDir:      os.Getenv("CHAT_ARCHIVE_DIR"),
		TypingDelay:     1200 * time.Millisecond, // Default
		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		LogLevel:        getenvDefault("LOG_LEVEL", "info"),
	}

	config.TelemetryEnabled = os.Getenv("TELEMETRY_ENABLED") == "true"

	// Parse typing delay if provided
	if delay := os.Getenv("CONCIERGE_TYPING_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil {
			config.TypingDelay = d
		}
	}

	return config
}

// Validate checks if the required configuration is present
func (c Config) Validate() error {
	switch c.Backend {
	case BackendScripted:
		return nil
	case BackendAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("missing required environment variable: ANTHROPIC_API_KEY")
		}
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("missing required environment variable: OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown backend: %q", c.Backend)
	}
	return nil
}

func getenvDefault(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
