package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jwebster45206/turn-engine/pkg/cascade"
)

// Supported narrator providers
const (
	ProviderMock      = "mock"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Environment  string     `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelName string     `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel     slog.Level // derived from LogLevelName

	Port     string `env:"PORT" envDefault:"8080"`
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	WorkerID string `env:"WORKER_ID"`

	CascadeMergeMode   string        `env:"CASCADE_MERGE_MODE" envDefault:"concurrent"`
	CascadeTimeout     time.Duration `env:"CASCADE_TIMEOUT" envDefault:"5s"`
	EnrichmentCacheTTL time.Duration `env:"ENRICHMENT_CACHE_TTL" envDefault:"10m"`
	FlushCacheOnStart  bool          `env:"ENRICHMENT_CACHE_FLUSH"`
	CatalogPath        string        `env:"CATALOG_PATH"` // places and reference entries, JSON

	LLMProvider           string        `env:"LLM_PROVIDER" envDefault:"mock"`
	AnthropicAPIKey       string        `env:"ANTHROPIC_API_KEY"`
	ModelName             string        `env:"MODEL_NAME" envDefault:"claude-3-5-haiku-latest"`
	NarratorName          string        `env:"NARRATOR_NAME" envDefault:"the narrator"`
	HistoryLimit          int           `env:"HISTORY_LIMIT" envDefault:"20"`
	NarratorQuota         int           `env:"NARRATOR_QUOTA" envDefault:"60"`
	NarratorQuotaInterval time.Duration `env:"NARRATOR_QUOTA_INTERVAL" envDefault:"1h"`

	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"turn-engine"`
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderMock:
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER is %s", ProviderAnthropic)
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	if _, err := c.MergeMode(); err != nil {
		return err
	}
	if c.CascadeTimeout < 0 {
		return fmt.Errorf("CASCADE_TIMEOUT must not be negative")
	}
	if c.NarratorQuota < 0 {
		return fmt.Errorf("NARRATOR_QUOTA must not be negative")
	}
	if c.NarratorQuota > 0 && c.NarratorQuotaInterval <= 0 {
		return fmt.Errorf("NARRATOR_QUOTA_INTERVAL must be positive when a quota is set")
	}
	return nil
}

// MergeMode returns the configured cascade merge mode
func (c *Config) MergeMode() (cascade.MergeMode, error) {
	return cascade.ParseMergeMode(c.CascadeMergeMode)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
