package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/lead-agent/internal/leads"
	"github.com/ziadkadry99/lead-agent/internal/llm"
)

// ErrEmptyReply is returned when the model answers with only whitespace.
var ErrEmptyReply = errors.New("generation returned an empty reply")

// Generator produces the agent's next reply from an instruction and the
// ordered history. It is the only call that may block on the network.
type Generator interface {
	Generate(ctx context.Context, instruction string, history []leads.Turn) (string, error)
}

// LLMGenerator adapts an llm.Provider to Generator.
type LLMGenerator struct {
	provider    llm.Provider
	model       string
	temperature float64
	log         *logrus.Entry
}

// NewLLMGenerator wraps provider. An empty model uses the provider default.
func NewLLMGenerator(provider llm.Provider, model string, logger *logrus.Logger) *LLMGenerator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LLMGenerator{
		provider:    provider,
		model:       model,
		temperature: 0.7,
		log:         logger.WithField("provider", provider.Name()),
	}
}

func (g *LLMGenerator) Generate(ctx context.Context, instruction string, history []leads.Turn) (string, error) {
	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: instruction})
	for _, t := range history {
		role := llm.RoleUser
		if t.Role == leads.RoleAgent {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Content})
	}

	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		Model:       g.model,
		Messages:    msgs,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generating reply: %w", err)
	}

	g.log.WithFields(logrus.Fields{
		"model":         resp.Model,
		"input_tokens":  resp.InputTokens,
		"output_tokens": resp.OutputTokens,
		"cost_usd":      llm.EstimateCost(resp.Model, resp.InputTokens, resp.OutputTokens),
	}).Debug("reply generated")

	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}
