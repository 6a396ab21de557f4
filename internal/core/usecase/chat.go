package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
)

// ChatOptions tunes the answer pipeline. Zero values fall back to defaults.
type ChatOptions struct {
	PivotLanguage string
	MaxResults    int
}

// ChatUseCase orchestrates one chat request: query translation, scope
// resolution, retrieval, context assembly, generation, and response
// translation. Every collaborator failure resolves to a textual answer;
// the only error Answer returns is the caller's own cancellation.
type ChatUseCase struct {
	translator *TranslationGateway
	scopes     *BotScopeResolver
	retriever  *DocumentRetriever
	generator  *ResponseGenerator
	fallback   *FallbackResponder
	opts       ChatOptions
}

func NewChatUseCase(
	translator *TranslationGateway,
	scopes *BotScopeResolver,
	retriever *DocumentRetriever,
	generator *ResponseGenerator,
	fallback *FallbackResponder,
	opts ChatOptions,
) *ChatUseCase {
	if opts.PivotLanguage == "" {
		opts.PivotLanguage = "en"
	}
	opts.PivotLanguage = NormalizeLanguage(opts.PivotLanguage)
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaultMaxResults
	}

	return &ChatUseCase{
		translator: translator,
		scopes:     scopes,
		retriever:  retriever,
		generator:  generator,
		fallback:   fallback,
		opts:       opts,
	}
}

func (uc *ChatUseCase) Answer(ctx context.Context, query domain.Query) (*domain.ChatAnswer, error) {
	queryText := strings.TrimSpace(query.Text)
	if queryText == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer", errors.New("query text is required"))
	}

	queryLang := NormalizeLanguage(query.Language)
	if queryLang == "" {
		queryLang = uc.opts.PivotLanguage
	}

	var degraded []string
	searchText := queryText
	if queryLang != uc.opts.PivotLanguage {
		outcome := uc.translator.Translate(ctx, queryText, queryLang, uc.opts.PivotLanguage)
		searchText = outcome.TranslatedText
		if !outcome.Success {
			degraded = append(degraded, "query")
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scope := uc.scopes.Resolve(ctx, query.BotID)

	result := uc.retriever.Retrieve(ctx, searchText, scope, uc.opts.MaxResults)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !result.Succeeded {
		slog.Error("retrieval_failed", "bot_id", scope.BotID, "detail", result.ErrorDetail)
		return uc.finalize(ctx, retrievalFailureReply, nil, queryLang, domain.OutcomeRetrievalError, degraded)
	}

	if result.Empty() {
		slog.Info("retrieval_no_hits", "bot_id", scope.BotID, "scoped", !scope.IsUnscoped())
		reply := uc.fallback.Respond(ctx, searchText)
		return uc.finalize(ctx, reply, nil, queryLang, domain.OutcomeFallback, degraded)
	}

	contextText, sources := assembleContext(result.Hits)
	slog.Info("context_assembled", "hits", len(result.Hits), "context_chars", len(contextText))

	session := domain.NewConversationSession(answerSystemPrompt)
	answerText, err := uc.generator.Generate(ctx, session, buildAnswerPrompt(searchText, contextText))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		slog.Error("generation_failed", "error", err)
		return uc.finalize(ctx, generationFailureReply, nil, queryLang, domain.OutcomeGenerationError, degraded)
	}

	return uc.finalize(ctx, answerText, sources, queryLang, domain.OutcomeAnswered, degraded)
}

// finalize translates the answer back to the caller's language (best-effort)
// and guarantees a non-nil sources slice.
func (uc *ChatUseCase) finalize(ctx context.Context, text string, sources []domain.SourceCitation, queryLang string, outcome domain.AnswerOutcome, degraded []string) (*domain.ChatAnswer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if queryLang != uc.opts.PivotLanguage {
		result := uc.translator.Translate(ctx, text, uc.opts.PivotLanguage, queryLang)
		text = result.TranslatedText
		if !result.Success {
			degraded = append(degraded, "answer")
		}
	}

	if sources == nil {
		sources = []domain.SourceCitation{}
	}
	return &domain.ChatAnswer{Text: text, Sources: sources, Outcome: outcome, DegradedTranslations: degraded}, nil
}
