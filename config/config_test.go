package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CHRONO_PROVIDER", "")
}

func TestLoadDefaults(t *testing.T) {
	clearProviderEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, "./data/chronosynth.db", cfg.DBPath)
	assert.Equal(t, 30*time.Second, cfg.FanOutTimeout)
	assert.Equal(t, 45*time.Second, cfg.IntegrationTimeout)
	assert.Equal(t, 3, cfg.RecallLimit)
	assert.Equal(t, 4, cfg.MaxModelCalls)
	assert.Equal(t, "*", cfg.AllowedOrigin)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadOverrides(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("CHRONO_ADDR", "127.0.0.1:9000")
	t.Setenv("CHRONO_FANOUT_TIMEOUT", "90s")
	t.Setenv("CHRONO_RECALL_LIMIT", "5")
	t.Setenv("CHRONO_LOG_FORMAT", "TEXT")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 90*time.Second, cfg.FanOutTimeout)
	assert.Equal(t, 5, cfg.RecallLimit)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadIgnoresUnparseableValues(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("CHRONO_FANOUT_TIMEOUT", "soon")
	t.Setenv("CHRONO_RECALL_LIMIT", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.FanOutTimeout)
	assert.Equal(t, 3, cfg.RecallLimit)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("CHRONO_PROVIDER", "bard")

	_, err := Load()
	assert.ErrorContains(t, err, "CHRONO_PROVIDER")
}

func TestResolveProviderPrecedence(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, ProviderMock, cfg.ResolveProvider())

	cfg.OpenAIAPIKey = "sk-openai"
	assert.Equal(t, ProviderOpenAI, cfg.ResolveProvider())

	cfg.GroqAPIKey = "gsk-groq"
	assert.Equal(t, ProviderGroq, cfg.ResolveProvider())

	cfg.AnthropicAPIKey = "sk-ant"
	assert.Equal(t, ProviderAnthropic, cfg.ResolveProvider())

	cfg.Provider = ProviderOpenAI
	assert.Equal(t, ProviderOpenAI, cfg.ResolveProvider())
}

func TestValidateRejectsNonPositiveTimeouts(t *testing.T) {
	cfg := &Config{
		Addr:               ":8000",
		DBPath:             "x.db",
		FanOutTimeout:      0,
		IntegrationTimeout: time.Second,
	}
	assert.ErrorContains(t, cfg.Validate(), "CHRONO_FANOUT_TIMEOUT")

	cfg.FanOutTimeout = time.Second
	cfg.IntegrationTimeout = -time.Second
	assert.ErrorContains(t, cfg.Validate(), "CHRONO_INTEGRATION_TIMEOUT")
}
