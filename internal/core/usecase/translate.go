package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
	"github.com/kirillkom/support-rag-bot/internal/core/ports"
)

// TranslationGateway wraps the external translation service with best-effort
// semantics: any failure degrades to the original text, it never propagates
// an error into the pipeline.
type TranslationGateway struct {
	svc     ports.Translator
	timeout time.Duration
}

func NewTranslationGateway(svc ports.Translator, timeout time.Duration) *TranslationGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TranslationGateway{svc: svc, timeout: timeout}
}

func (g *TranslationGateway) Translate(ctx context.Context, text, fromLang, toLang string) domain.TranslationOutcome {
	fromLang = NormalizeLanguage(fromLang)
	toLang = NormalizeLanguage(toLang)

	if text == "" || fromLang == "" || toLang == "" || fromLang == toLang {
		return domain.TranslationNoop(text, fromLang, toLang)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	translated, err := g.svc.Translate(callCtx, text, fromLang, toLang)
	if err != nil {
		slog.Warn("translation_degraded", "from", fromLang, "to", toLang, "error", err)
		return domain.TranslationDegraded(text, fromLang, toLang, err)
	}
	if strings.TrimSpace(translated) == "" {
		slog.Warn("translation_degraded", "from", fromLang, "to", toLang, "error", "empty result")
		return domain.TranslationDegraded(text, fromLang, toLang, errors.New("empty translation result"))
	}

	return domain.TranslationOutcome{
		Success:        true,
		TranslatedText: translated,
		SourceLanguage: fromLang,
		TargetLanguage: toLang,
	}
}

// NormalizeLanguage lowercases and trims a language code. Region subtags are
// kept as-is ("zh-Hans" and "zh-hans" compare equal).
func NormalizeLanguage(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}
