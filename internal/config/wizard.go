package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/lead-agent/internal/leads"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .leadagent.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to leadagent! Let's configure your qualification agent.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"groq", "openai", "openrouter", "google", "anthropic", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.Model = cfg.ResolvedModel()

	// 2. API key check.
	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" {
		if os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: set %s before starting the server.\n\n", envVar)
		} else {
			fmt.Printf("\nFound %s in environment.\n\n", envVar)
		}
	}

	// 3. Model override.
	modelPrompt := promptui.Prompt{
		Label:   "Model",
		Default: cfg.Model,
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model prompt: %w", err)
	}

	// 4. Handoff number.
	numberPrompt := promptui.Prompt{
		Label:   "WhatsApp number for handoffs",
		Default: cfg.WhatsAppNumber,
		Validate: func(s string) error {
			if n := leads.NormalizePhone(s); len(n) < 12 {
				return fmt.Errorf("include country and area code")
			}
			return nil
		},
	}
	number, err := numberPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("number prompt: %w", err)
	}
	cfg.WhatsAppNumber = leads.NormalizePhone(number)

	// 5. Persona.
	agentPrompt := promptui.Prompt{Label: "Agent name", Default: cfg.AgentName}
	if cfg.AgentName, err = agentPrompt.Run(); err != nil {
		return nil, fmt.Errorf("agent name prompt: %w", err)
	}
	companyPrompt := promptui.Prompt{Label: "Company name", Default: cfg.CompanyName}
	if cfg.CompanyName, err = companyPrompt.Run(); err != nil {
		return nil, fmt.Errorf("company name prompt: %w", err)
	}

	// 6. State backend.
	backendPrompt := promptui.Select{
		Label: "Conversation state backend",
		Items: []string{"memory", "sqlite"},
	}
	_, backend, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend selection: %w", err)
	}
	cfg.StateBackend = StateBackend(backend)

	// 7. Port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port prompt: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 8. Hot-lead webhook.
	webhookPrompt := promptui.Prompt{
		Label: "Hot lead webhook URL (leave empty to skip)",
	}
	if cfg.Notify.WebhookURL, err = webhookPrompt.Run(); err != nil {
		return nil, fmt.Errorf("webhook prompt: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(DefaultPath); err != nil {
		return nil, err
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}
