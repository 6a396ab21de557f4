package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
	"github.com/kirillkom/support-rag-bot/internal/core/ports"
)

// ResponseGenerator submits a conversation to the completion service.
// Decoding parameters come from configuration. It performs no retries of its
// own: retry policy lives in the service adapter's resilience executor.
type ResponseGenerator struct {
	svc         ports.CompletionService
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

func NewResponseGenerator(svc ports.CompletionService, maxTokens int, temperature float64, timeout time.Duration) *ResponseGenerator {
	if maxTokens <= 0 {
		maxTokens = 300
	}
	if temperature <= 0 {
		temperature = 0.7
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ResponseGenerator{
		svc:         svc,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
	}
}

// Generate appends the user prompt to the session, submits the full turn
// sequence, and on success records the assistant turn before returning it.
func (g *ResponseGenerator) Generate(ctx context.Context, session *domain.ConversationSession, userPrompt string) (string, error) {
	session.Append(domain.ConversationTurn{Role: domain.RoleUser, Content: userPrompt})

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.svc.Complete(callCtx, session.Turns(), g.maxTokens, g.temperature)
	if err != nil {
		return "", domain.WrapError(domain.ErrGenerationFailed, "generate answer", err)
	}

	text = strings.TrimSpace(text)
	session.Append(domain.ConversationTurn{Role: domain.RoleAssistant, Content: text})
	return text, nil
}
