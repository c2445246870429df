package config

import (
	"github.com/ziadkadry99/lead-agent/internal/leads"
	"github.com/ziadkadry99/lead-agent/internal/llm"
)

// DefaultPath is where `leadagent init` writes the configuration.
const DefaultPath = ".leadagent.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderGroq,
		Port:           8080,
		DataDir:        ".leadagent",
		StateBackend:   StateMemory,
		WhatsAppNumber: leads.DefaultWhatsAppNumber,
		AgentName:      "Ana",
		CompanyName:    leads.DefaultCompanyName,
		RateLimitRPM:   30,
		Notify: NotifyConfig{
			MinPriority: string(leads.PriorityHigh),
		},
		LogLevel: "info",
	}
}

// ResolvedModel returns the configured model or the provider default.
func (c *Config) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	return llm.DefaultModels[string(c.Provider)]
}
