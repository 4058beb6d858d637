package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
)

// Config holds everything the service needs; it is loaded once and passed
// down explicitly.
type Config struct {
	// Server settings
	Port        string
	FrontendURL string

	// Upstream model settings
	Provider         string
	OpenRouterAPIKey string `json:"-"`
	AnthropicAPIKey  string `json:"-"`
	OpenRouterURL    string
	AnthropicURL     string // empty means the SDK default
	Model            string // empty means the provider default
	Temperature      float64
	MaxTokens        int64
	UpstreamTimeout  time.Duration

	// OpenRouter attribution
	AppURL   string
	AppTitle string

	// Storage settings, both optional
	DatabaseURL string `json:"-"`
	RedisURL    string `json:"-"`
	CacheTTL    time.Duration

	// Queue analyses for cmd/archiver instead of inserting them inline.
	// Only takes effect when both Redis and Postgres are configured.
	ArchiveQueue bool
}

// Load reads configuration from environment variables and a .env file.
// A missing API key is not an error here; requests report it instead.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		FrontendURL:      os.Getenv("FRONTEND_URL"),
		Provider:         getEnvOrDefault("LLM_PROVIDER", ProviderOpenRouter),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		OpenRouterURL:    getEnvOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1/"),
		AnthropicURL:     os.Getenv("ANTHROPIC_BASE_URL"),
		Model:            os.Getenv("LLM_MODEL"),
		AppURL:           os.Getenv("APP_URL"),
		AppTitle:         os.Getenv("APP_TITLE"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
	}

	var err error
	if cfg.Temperature, err = getEnvFloat("LLM_TEMPERATURE", 0.25); err != nil {
		return nil, err
	}
	if cfg.MaxTokens, err = getEnvInt("LLM_MAX_TOKENS", 900); err != nil {
		return nil, err
	}
	if cfg.UpstreamTimeout, err = getEnvDuration("UPSTREAM_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvDuration("CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ArchiveQueue, err = getEnvBool("ARCHIVE_QUEUE", true); err != nil {
		return nil, err
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderOpenRouter, ProviderAnthropic:
	default:
		return &ConfigError{Field: "LLM_PROVIDER", Message: "must be openrouter or anthropic"}
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return &ConfigError{Field: "LLM_TEMPERATURE", Message: "must be between 0 and 2"}
	}
	if c.MaxTokens <= 0 {
		return &ConfigError{Field: "LLM_MAX_TOKENS", Message: "must be positive"}
	}
	if c.UpstreamTimeout <= 0 {
		return &ConfigError{Field: "UPSTREAM_TIMEOUT", Message: "must be positive"}
	}
	if c.CacheTTL < 0 {
		return &ConfigError{Field: "CACHE_TTL", Message: "must not be negative"}
	}
	return nil
}

// APIKey returns the credential for the configured provider.
func (c *Config) APIKey() string {
	if c.Provider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.OpenRouterAPIKey
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be a number"}
	}
	return f, nil
}

func getEnvInt(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be an integer"}
	}
	return i, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, &ConfigError{Field: key, Message: "must be true or false"}
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be a duration such as 30s or 24h"}
	}
	return d, nil
}

type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
