// Package config provides environment-driven application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider identifiers resolved from configuration.
const (
	ProviderAnthropic = "anthropic"
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderMock      = "mock"
)

// Config holds all application configuration.
type Config struct {
	Addr   string
	DBPath string

	// Provider forces a model provider; empty means detect from API keys.
	Provider string
	// Model overrides the provider's default model id.
	Model string

	AnthropicAPIKey string
	GroqAPIKey      string
	OpenAIAPIKey    string

	FanOutTimeout      time.Duration
	IntegrationTimeout time.Duration
	RecallLimit        int
	MaxModelCalls      int

	AllowedOrigin string
	LogLevel      string
	LogFormat     string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:               getEnv("CHRONO_ADDR", ":8000"),
		DBPath:             getEnv("CHRONO_DB_PATH", "./data/chronosynth.db"),
		Provider:           strings.ToLower(getEnv("CHRONO_PROVIDER", "")),
		Model:              getEnv("CHRONO_MODEL", ""),
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		GroqAPIKey:         getEnv("GROQ_API_KEY", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		FanOutTimeout:      getEnvDuration("CHRONO_FANOUT_TIMEOUT", 30*time.Second),
		IntegrationTimeout: getEnvDuration("CHRONO_INTEGRATION_TIMEOUT", 45*time.Second),
		RecallLimit:        getEnvInt("CHRONO_RECALL_LIMIT", 3),
		MaxModelCalls:      getEnvInt("CHRONO_MAX_MODEL_CALLS", 4),
		AllowedOrigin:      getEnv("CHRONO_ALLOWED_ORIGIN", "*"),
		LogLevel:           strings.ToLower(getEnv("CHRONO_LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnv("CHRONO_LOG_FORMAT", "json")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("CHRONO_ADDR cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("CHRONO_DB_PATH cannot be empty")
	}
	switch c.Provider {
	case "", ProviderAnthropic, ProviderGroq, ProviderOpenAI, ProviderMock:
	default:
		return fmt.Errorf("CHRONO_PROVIDER must be one of anthropic, groq, openai, mock")
	}
	if c.FanOutTimeout <= 0 {
		return fmt.Errorf("CHRONO_FANOUT_TIMEOUT must be > 0")
	}
	if c.IntegrationTimeout <= 0 {
		return fmt.Errorf("CHRONO_INTEGRATION_TIMEOUT must be > 0")
	}
	if c.RecallLimit < 0 {
		return fmt.Errorf("CHRONO_RECALL_LIMIT must be >= 0")
	}
	if c.MaxModelCalls < 0 {
		return fmt.Errorf("CHRONO_MAX_MODEL_CALLS must be >= 0")
	}
	return nil
}

// ResolveProvider returns the provider to build, honoring the explicit
// override first and otherwise detecting by API key presence. Without any
// key the mock provider keeps the daemon bootable for local experiments.
func (c *Config) ResolveProvider() string {
	if c.Provider != "" {
		return c.Provider
	}
	if c.AnthropicAPIKey != "" {
		return ProviderAnthropic
	}
	if c.GroqAPIKey != "" {
		return ProviderGroq
	}
	if c.OpenAIAPIKey != "" {
		return ProviderOpenAI
	}
	return ProviderMock
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
