package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/lead-agent/internal/config"
	"github.com/ziadkadry99/lead-agent/internal/conversation"
	"github.com/ziadkadry99/lead-agent/internal/db"
	"github.com/ziadkadry99/lead-agent/internal/leads"
	"github.com/ziadkadry99/lead-agent/internal/llm"
)

// loadConfig loads and validates the config, providing a user-friendly error.
// The configured log level applies unless --verbose was given.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `leadagent init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	if !verbose {
		level, _ := logrus.ParseLevel(cfg.LogLevel)
		logger.SetLevel(level)
	}
	return cfg, nil
}

// createLLMProviderFromConfig creates the rate-limited LLM provider.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.ResolvedModel())
	if err != nil {
		return nil, err
	}
	return llm.NewRateLimitedProvider(provider, cfg.RateLimitRPM), nil
}

// createStateStore returns the conversation state backend named in the config.
func createStateStore(cfg *config.Config, database *db.DB) conversation.StateStore {
	if cfg.StateBackend == config.StateSQLite {
		return conversation.NewSQLStore(database)
	}
	return conversation.NewMemoryStore()
}

func personaFromConfig(cfg *config.Config) conversation.Persona {
	return conversation.Persona{AgentName: cfg.AgentName, CompanyName: cfg.CompanyName}
}

func handoffFromConfig(cfg *config.Config) *leads.HandoffBuilder {
	return leads.NewHandoffBuilder(cfg.WhatsAppNumber, cfg.CompanyName)
}
