package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
)

type chatSearchFake struct {
	mu      sync.Mutex
	filters []string
	hits    []domain.IndexHit
	err     error
}

func (f *chatSearchFake) Search(_ context.Context, _, filterExpression string, _ int) ([]domain.IndexHit, error) {
	f.mu.Lock()
	f.filters = append(f.filters, filterExpression)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func (f *chatSearchFake) IndexDocument(context.Context, domain.IndexEntry) error { return nil }

type chatTranslatorFake struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *chatTranslatorFake) Translate(_ context.Context, text, fromLang, toLang string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fromLang+">"+toLang)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "[" + toLang + "] " + text, nil
}

type chatCompletionFake struct {
	mu       sync.Mutex
	sessions [][]domain.ConversationTurn
	reply    string
	err      error
}

func (f *chatCompletionFake) Complete(_ context.Context, turns []domain.ConversationTurn, _ int, _ float64) (string, error) {
	copied := make([]domain.ConversationTurn, len(turns))
	copy(copied, turns)
	f.mu.Lock()
	f.sessions = append(f.sessions, copied)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type chatRegistryFake struct {
	docIDs map[string][]string
}

func (f *chatRegistryFake) GetDocumentIDs(_ context.Context, botID string) ([]string, error) {
	ids, ok := f.docIDs[botID]
	if !ok {
		return nil, domain.WrapError(domain.ErrBotNotFound, "get document ids", errors.New(botID))
	}
	return ids, nil
}

func newChatUseCaseForTest(search *chatSearchFake, translator *chatTranslatorFake, completion *chatCompletionFake, registry *chatRegistryFake) *ChatUseCase {
	generator := NewResponseGenerator(completion, 300, 0.7, time.Second)
	return NewChatUseCase(
		NewTranslationGateway(translator, time.Second),
		NewBotScopeResolver(registry),
		NewDocumentRetriever(search, time.Second),
		generator,
		NewFallbackResponder(generator),
		ChatOptions{PivotLanguage: "en", MaxResults: 3},
	)
}

func docHit(id, file string, score float64, highlights ...string) domain.IndexHit {
	return domain.IndexHit{
		DocumentID: id,
		FileName:   file,
		PageCount:  2,
		Score:      score,
		Highlights: map[string][]string{"paragraph_content": highlights},
	}
}

func TestAnswerEnglishQueryWithHitsSkipsTranslation(t *testing.T) {
	search := &chatSearchFake{hits: []domain.IndexHit{
		docHit("d1", "refunds.pdf", 2.4, "Refunds are processed within 14 days."),
		docHit("d2", "policies.pdf", 1.1, "The refund policy covers all plans."),
	}}
	translator := &chatTranslatorFake{}
	completion := &chatCompletionFake{reply: "Refunds take up to 14 days."}
	uc := newChatUseCaseForTest(search, translator, completion, &chatRegistryFake{})

	answer, err := uc.Answer(context.Background(), domain.Query{Text: "refund policy", Language: "en"})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Text == "" {
		t.Fatalf("expected non-empty answer")
	}
	if len(answer.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(answer.Sources))
	}
	if len(translator.calls) != 0 {
		t.Fatalf("expected no translation calls, got %v", translator.calls)
	}
	if answer.Sources[0].FileName != "refunds.pdf" || answer.Sources[1].FileName != "policies.pdf" {
		t.Fatalf("sources out of retrieval order: %+v", answer.Sources)
	}
	if answer.Outcome != domain.OutcomeAnswered {
		t.Fatalf("expected answered outcome, got %s", answer.Outcome)
	}
}

func TestAnswerSpanishQueryNoHitsTakesFallbackAndTranslatesBack(t *testing.T) {
	search := &chatSearchFake{}
	translator := &chatTranslatorFake{}
	completion := &chatCompletionFake{reply: "I can still help with general questions."}
	uc := newChatUseCaseForTest(search, translator, completion, &chatRegistryFake{})

	answer, err := uc.Answer(context.Background(), domain.Query{Text: "¿cuál es la política?", Language: "es"})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(answer.Sources) != 0 {
		t.Fatalf("expected empty sources on fallback path, got %d", len(answer.Sources))
	}
	if !strings.HasPrefix(answer.Text, "[es] ") {
		t.Fatalf("expected answer translated back to es, got %q", answer.Text)
	}
	if len(translator.calls) != 2 || translator.calls[0] != "es>en" || translator.calls[1] != "en>es" {
		t.Fatalf("unexpected translation calls: %v", translator.calls)
	}
	if answer.Outcome != domain.OutcomeFallback {
		t.Fatalf("expected fallback outcome, got %s", answer.Outcome)
	}
}

func TestAnswerAppliesBotScopeFilter(t *testing.T) {
	search := &chatSearchFake{hits: []domain.IndexHit{docHit("d1", "a.pdf", 1.0, "scoped content here")}}
	completion := &chatCompletionFake{reply: "ok"}
	registry := &chatRegistryFake{docIDs: map[string][]string{"b1": {"d1"}}}
	uc := newChatUseCaseForTest(search, &chatTranslatorFake{}, completion, registry)

	if _, err := uc.Answer(context.Background(), domain.Query{Text: "anything", Language: "en", BotID: "b1"}); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(search.filters) != 1 || search.filters[0] != "id eq 'd1'" {
		t.Fatalf("expected filter id eq 'd1', got %v", search.filters)
	}
}

func TestAnswerUnknownBotWidensToUnscoped(t *testing.T) {
	search := &chatSearchFake{hits: []domain.IndexHit{docHit("d9", "x.pdf", 1.0, "unscoped passage text")}}
	completion := &chatCompletionFake{reply: "ok"}
	uc := newChatUseCaseForTest(search, &chatTranslatorFake{}, completion, &chatRegistryFake{})

	answer, err := uc.Answer(context.Background(), domain.Query{Text: "anything", Language: "en", BotID: "missing"})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if search.filters[0] != "" {
		t.Fatalf("expected unscoped search for unknown bot, got filter %q", search.filters[0])
	}
	if len(answer.Sources) != 1 {
		t.Fatalf("expected retrieval to proceed unscoped")
	}
}

func TestAnswerRetrievalFailureYieldsApologyWithEmptySources(t *testing.T) {
	search := &chatSearchFake{err: errors.New("index unavailable")}
	completion := &chatCompletionFake{reply: "should not be used"}
	uc := newChatUseCaseForTest(search, &chatTranslatorFake{}, completion, &chatRegistryFake{})

	answer, err := uc.Answer(context.Background(), domain.Query{Text: "refund policy", Language: "en"})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Text != retrievalFailureReply {
		t.Fatalf("expected retrieval apology, got %q", answer.Text)
	}
	if len(answer.Sources) != 0 {
		t.Fatalf("expected empty sources on error path")
	}
	if len(completion.sessions) != 0 {
		t.Fatalf("generation must not run after retrieval failure")
	}
	if answer.Outcome != domain.OutcomeRetrievalError {
		t.Fatalf("expected retrieval_error outcome, got %s", answer.Outcome)
	}
}

func TestAnswerGenerationFailureYieldsApologyWithEmptySources(t *testing.T) {
	search := &chatSearchFake{hits: []domain.IndexHit{docHit("d1", "a.pdf", 1.0, "some relevant passage")}}
	completion := &chatCompletionFake{err: errors.New("service unavailable")}
	uc := newChatUseCaseForTest(search, &chatTranslatorFake{}, completion, &chatRegistryFake{})

	answer, err := uc.Answer(context.Background(), domain.Query{Text: "refund policy", Language: "en"})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Text != generationFailureReply {
		t.Fatalf("expected generation apology, got %q", answer.Text)
	}
	if len(answer.Sources) != 0 {
		t.Fatalf("expected empty sources when generation fails")
	}
}

func TestAnswerTranslationFailureDegradesToOriginalText(t *testing.T) {
	search := &chatSearchFake{hits: []domain.IndexHit{docHit("d1", "a.pdf", 1.0, "passage about politique")}}
	translator := &chatTranslatorFake{err: errors.New("quota exceeded")}
	completion := &chatCompletionFake{reply: "réponse"}
	uc := newChatUseCaseForTest(search, translator, completion, &chatRegistryFake{})

	answer, err := uc.Answer(context.Background(), domain.Query{Text: "politique de remboursement", Language: "fr"})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	// Both directions degrade: the pipeline proceeds with original text.
	if answer.Text != "réponse" {
		t.Fatalf("expected untranslated generated answer, got %q", answer.Text)
	}
	if len(answer.DegradedTranslations) != 2 ||
		answer.DegradedTranslations[0] != "query" ||
		answer.DegradedTranslations[1] != "answer" {
		t.Fatalf("expected degraded query and answer translations, got %v", answer.DegradedTranslations)
	}
}

func TestAnswerEmptyQueryIsInvalidInput(t *testing.T) {
	uc := newChatUseCaseForTest(&chatSearchFake{}, &chatTranslatorFake{}, &chatCompletionFake{}, &chatRegistryFake{})
	_, err := uc.Answer(context.Background(), domain.Query{Text: "   ", Language: "en"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAnswerSessionIsolationAcrossConcurrentRequests(t *testing.T) {
	search := &chatSearchFake{hits: []domain.IndexHit{docHit("d1", "a.pdf", 1.0, "shared passage content")}}
	completion := &chatCompletionFake{reply: "ok"}
	uc := newChatUseCaseForTest(search, &chatTranslatorFake{}, completion, &chatRegistryFake{})

	const requests = 8
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.Answer(context.Background(), domain.Query{Text: "question", Language: "en"}); err != nil {
				t.Errorf("Answer() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if len(completion.sessions) != requests {
		t.Fatalf("expected %d generation calls, got %d", requests, len(completion.sessions))
	}
	for _, turns := range completion.sessions {
		systemTurns := 0
		for _, turn := range turns {
			if turn.Role == domain.RoleSystem {
				systemTurns++
			}
		}
		if systemTurns != 1 {
			t.Fatalf("expected exactly one system turn per session, got %d", systemTurns)
		}
		if len(turns) != 2 {
			t.Fatalf("expected system+user turns only, got %d turns", len(turns))
		}
	}
}

func TestAnswerCancelledContextReturnsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uc := newChatUseCaseForTest(&chatSearchFake{}, &chatTranslatorFake{}, &chatCompletionFake{}, &chatRegistryFake{})
	_, err := uc.Answer(ctx, domain.Query{Text: "question", Language: "en"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
