package llm

// modelPricing holds per-model pricing in USD per 1M tokens.
type modelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

var priceTable = map[string]modelPricing{
	// Groq
	"llama-3.3-70b-versatile": {InputPerMillion: 0.59, OutputPerMillion: 0.79},
	"llama-3.1-8b-instant":    {InputPerMillion: 0.05, OutputPerMillion: 0.08},

	// OpenAI
	"gpt-4o":      {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-4o-mini": {InputPerMillion: 0.15, OutputPerMillion: 0.60},

	// OpenRouter
	"meta-llama/llama-3.3-70b-instruct": {InputPerMillion: 0.13, OutputPerMillion: 0.40},

	"gemini-2.0-flash":          {InputPerMillion: 0.10, OutputPerMillion: 0.40},
	"claude-haiku-4-5-20251001": {InputPerMillion: 0.80, OutputPerMillion: 4.00},
}

// EstimateCost returns the estimated cost in USD for one completion.
// Unknown models (including local Ollama ones) cost 0.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := priceTable[model]
	if !ok {
		return 0
	}
	return (float64(inputTokens)*pricing.InputPerMillion + float64(outputTokens)*pricing.OutputPerMillion) / 1_000_000.0
}
