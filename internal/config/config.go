package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v6"

	"github.com/arjunvk/mentorloop/internal/service/provider"
)

// Config aggregates every setting of the service.
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Quota  QuotaConfig
	Store  StoreConfig
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
}

// Addr normalizes PORT into a listen address; both "8080" and ":8080" work.
func (c ServerConfig) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// AIConfig holds provider credentials and the ordered chain specs. The spec
// lists encode the cost/availability policy: cheaper models first, the order
// is configuration, not logic.
type AIConfig struct {
	ArkAPIKey    string `env:"ARK_API_KEY"`
	ArkAccessKey string `env:"ARK_ACCESS_KEY"`
	ArkSecretKey string `env:"ARK_SECRET_KEY"`
	ArkBaseURL   string `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	ArkRegion    string `env:"ARK_REGION" envDefault:"cn-beijing"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`

	AnswerProviders []string `env:"ANSWER_PROVIDERS" envSeparator:"," envDefault:"ark:doubao-seed-1-6-flash,openai:gpt-4o-mini"`
	MatchProviders  []string `env:"MATCH_PROVIDERS" envSeparator:"," envDefault:"openai:gpt-4o-mini"`
}

// Credentials converts the config into the provider factory's shape.
func (c AIConfig) Credentials() provider.Credentials {
	return provider.Credentials{
		Ark: provider.ArkConfig{
			APIKey:    c.ArkAPIKey,
			AccessKey: c.ArkAccessKey,
			SecretKey: c.ArkSecretKey,
			BaseURL:   c.ArkBaseURL,
			Region:    c.ArkRegion,
		},
		OpenAI: provider.OpenAIConfig{
			APIKey:  c.OpenAIAPIKey,
			BaseURL: c.OpenAIBaseURL,
		},
	}
}

// QuotaConfig bounds per-user usage.
type QuotaConfig struct {
	DailyLimit int `env:"DAILY_DOUBT_LIMIT" envDefault:"50"`
}

// StoreConfig selects and locates the persistence backend.
type StoreConfig struct {
	Driver string `env:"STORE_DRIVER" envDefault:"sqlite"`
	Path   string `env:"SQLITE_PATH" envDefault:"data/mentorloop.db"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.Contains(c.Server.Port, " ") {
		return fmt.Errorf("invalid PORT value: %q", c.Server.Port)
	}
	if c.Quota.DailyLimit < 1 {
		return fmt.Errorf("DAILY_DOUBT_LIMIT must be at least 1, got %d", c.Quota.DailyLimit)
	}
	switch c.Store.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER: %q", c.Store.Driver)
	}
	for _, spec := range append(append([]string(nil), c.AI.AnswerProviders...), c.AI.MatchProviders...) {
		vendor, model, ok := strings.Cut(strings.TrimSpace(spec), ":")
		if !ok || vendor == "" || model == "" {
			return fmt.Errorf("invalid provider spec %q, want vendor:model", spec)
		}
	}
	return nil
}
