package config

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

var configEnvKeys = []string{
	"PORT", "FRONTEND_URL", "LLM_PROVIDER", "OPENROUTER_API_KEY", "ANTHROPIC_API_KEY",
	"OPENROUTER_BASE_URL", "LLM_MODEL", "LLM_TEMPERATURE", "LLM_MAX_TOKENS",
	"UPSTREAM_TIMEOUT", "APP_URL", "APP_TITLE", "DATABASE_URL", "REDIS_URL", "CACHE_TTL",
	"ANTHROPIC_BASE_URL", "ARCHIVE_QUEUE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ProviderOpenRouter, cfg.Provider)
	assert.Equal(t, "https://openrouter.ai/api/v1/", cfg.OpenRouterURL)
	assert.Equal(t, "", cfg.Model)
	assert.Equal(t, 0.25, cfg.Temperature)
	assert.Equal(t, int64(900), cfg.MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, true, cfg.ArchiveQueue)
	assert.Equal(t, "", cfg.AnthropicURL)
	assert.Equal(t, "", cfg.APIKey())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("LLM_MODEL", "anthropic/claude-3.5-sonnet")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("LLM_MAX_TOKENS", "1200")
	t.Setenv("UPSTREAM_TIMEOUT", "15s")
	t.Setenv("CACHE_TTL", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "or-key", cfg.APIKey())
	assert.Equal(t, "anthropic/claude-3.5-sonnet", cfg.Model)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, int64(1200), cfg.MaxTokens)
	assert.Equal(t, 15*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, time.Duration(0), cfg.CacheTTL)
}

func TestAPIKeyFollowsProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")
	t.Setenv("ANTHROPIC_BASE_URL", "http://localhost:9999/")
	t.Setenv("ARCHIVE_QUEUE", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	assert.Equal(t, "ant-key", cfg.APIKey())
	assert.Equal(t, "http://localhost:9999/", cfg.AnthropicURL)
	assert.Equal(t, false, cfg.ArchiveQueue)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		errorField string
	}{
		{
			name:       "unknown provider",
			env:        map[string]string{"LLM_PROVIDER": "bard"},
			errorField: "LLM_PROVIDER",
		},
		{
			name:       "temperature not a number",
			env:        map[string]string{"LLM_TEMPERATURE": "warm"},
			errorField: "LLM_TEMPERATURE",
		},
		{
			name:       "temperature out of range",
			env:        map[string]string{"LLM_TEMPERATURE": "2.5"},
			errorField: "LLM_TEMPERATURE",
		},
		{
			name:       "max tokens zero",
			env:        map[string]string{"LLM_MAX_TOKENS": "0"},
			errorField: "LLM_MAX_TOKENS",
		},
		{
			name:       "max tokens not an integer",
			env:        map[string]string{"LLM_MAX_TOKENS": "lots"},
			errorField: "LLM_MAX_TOKENS",
		},
		{
			name:       "bad timeout",
			env:        map[string]string{"UPSTREAM_TIMEOUT": "soon"},
			errorField: "UPSTREAM_TIMEOUT",
		},
		{
			name:       "archive queue not a bool",
			env:        map[string]string{"ARCHIVE_QUEUE": "sometimes"},
			errorField: "ARCHIVE_QUEUE",
		},
		{
			name:       "negative cache ttl",
			env:        map[string]string{"CACHE_TTL": "-1h"},
			errorField: "CACHE_TTL",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range test.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected validation error for %s", test.errorField)
			}

			var configErr *ConfigError
			if !errors.As(err, &configErr) {
				t.Fatalf("Expected ConfigError, got %T", err)
			}
			assert.Equal(t, test.errorField, configErr.Field)
		})
	}
}

func TestMissingAPIKeyIsNotAConfigError(t *testing.T) {
	clearEnv(t)

	_, err := Load()

	assert.Equal(t, nil, err)
}
