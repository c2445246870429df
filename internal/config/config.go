package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/lead-agent/internal/leads"
	"github.com/ziadkadry99/lead-agent/internal/llm"
)

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: LEADAGENT_NOTIFY__WEBHOOK_URL -> notify.webhook_url.
const EnvPrefix = "LEADAGENT_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (LEADAGENT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[ProviderType]bool{
	ProviderGroq:       true,
	ProviderOpenAI:     true,
	ProviderOpenRouter: true,
	ProviderGoogle:     true,
	ProviderAnthropic:  true,
	ProviderOllama:     true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of groq, openai, openrouter, google, anthropic, ollama", c.Provider)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	switch c.StateBackend {
	case StateMemory, StateSQLite:
	default:
		return fmt.Errorf("invalid state_backend %q: must be memory or sqlite", c.StateBackend)
	}

	if n := leads.NormalizePhone(c.WhatsAppNumber); n == "" || n != c.WhatsAppNumber {
		return fmt.Errorf("whatsapp_number must be digits including the country code, got %q", c.WhatsAppNumber)
	}

	if c.RateLimitRPM < 0 {
		return fmt.Errorf("rate_limit_rpm must be non-negative")
	}

	if c.Notify.MinPriority != "" {
		if _, ok := leads.ParsePriority(c.Notify.MinPriority); !ok {
			return fmt.Errorf("invalid notify.min_priority %q: must be low, medium or high", c.Notify.MinPriority)
		}
	}
	if c.Notify.WebhookURL != "" {
		u, err := url.Parse(c.Notify.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid notify.webhook_url %q", c.Notify.WebhookURL)
		}
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	return nil
}

// MinPriority returns the parsed notification threshold, defaulting to high.
func (c *Config) MinPriority() leads.Priority {
	if p, ok := leads.ParsePriority(c.Notify.MinPriority); ok {
		return p
	}
	return leads.PriorityHigh
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	return llm.APIKeyEnv(string(provider))
}
