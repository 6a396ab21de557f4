package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
)

// FallbackResponder produces an answer when retrieval finds nothing. Tier
// one asks the generation service with a relaxed no-context prompt so that
// greetings and small talk still get a natural reply; tier two is a static
// rule table, used when generation is unavailable too.
type FallbackResponder struct {
	generator *ResponseGenerator
}

func NewFallbackResponder(generator *ResponseGenerator) *FallbackResponder {
	return &FallbackResponder{generator: generator}
}

func (f *FallbackResponder) Respond(ctx context.Context, queryText string) string {
	session := domain.NewConversationSession(fallbackSystemPrompt)
	reply, err := f.generator.Generate(ctx, session, queryText)
	if err == nil && strings.TrimSpace(reply) != "" {
		return reply
	}
	if err != nil {
		slog.Warn("fallback_generation_unavailable", "error", err)
	}
	return staticFallbackReply(queryText)
}

func staticFallbackReply(queryText string) string {
	lower := strings.ToLower(queryText)

	for _, token := range []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening", "hola"} {
		if strings.Contains(lower, token) {
			return greetingReply
		}
	}
	for _, token := range []string{"thank", "thanks", "gracias"} {
		if strings.Contains(lower, token) {
			return gratitudeReply
		}
	}
	for _, token := range []string{"bye", "goodbye", "see you", "farewell"} {
		if strings.Contains(lower, token) {
			return farewellReply
		}
	}
	return noInformationReply
}
