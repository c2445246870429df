package llm

import (
	"fmt"
	"os"
)

// DefaultModels maps each provider to the model used when none is configured.
var DefaultModels = map[string]string{
	"groq":       "llama-3.3-70b-versatile",
	"openai":     "gpt-4o-mini",
	"openrouter": "meta-llama/llama-3.3-70b-instruct",
	"google":     "gemini-2.0-flash",
	"anthropic":  "claude-haiku-4-5-20251001",
	"ollama":     "llama3.1",
}

// apiKeyEnv names the environment variable holding each hosted provider's key.
var apiKeyEnv = map[string]string{
	"groq":       "GROQ_API_KEY",
	"openai":     "OPENAI_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
	"google":     "GOOGLE_API_KEY",
	"anthropic":  "ANTHROPIC_API_KEY",
}

// APIKeyEnv returns the environment variable a provider reads its key from,
// or "" for providers that need none.
func APIKeyEnv(providerType string) string {
	return apiKeyEnv[providerType]
}

// NewProvider creates a new LLM provider based on the given provider type and model.
// Supported provider types: "groq", "openai", "openrouter", "google", "anthropic", "ollama".
func NewProvider(providerType string, model string) (Provider, error) {
	if model == "" {
		model = DefaultModels[providerType]
	}

	if providerType == "ollama" {
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = DefaultOllamaHost
		}
		return NewOllamaProvider(host, model), nil
	}

	envName, ok := apiKeyEnv[providerType]
	if !ok {
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
	apiKey := os.Getenv(envName)
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable is not set", envName)
	}

	switch providerType {
	case "anthropic":
		return NewAnthropicProvider(apiKey, model), nil
	case "openai":
		return NewOpenAIProvider(apiKey, model), nil
	case "groq":
		return NewCompatibleProvider("groq", GroqBaseURL, apiKey, model), nil
	case "openrouter":
		return NewCompatibleProvider("openrouter", OpenRouterBaseURL, apiKey, model), nil
	default:
		return NewCompatibleProvider("google", GoogleBaseURL, apiKey, model), nil
	}
}
