package llm

import "context"

// Provider generates chat replies. Implementations must be safe for
// concurrent use; conversations for different leads call it in parallel.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
