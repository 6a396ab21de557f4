package extractor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
	"github.com/kirillkom/support-rag-bot/internal/core/ports"
)

// Composite dispatches extraction by filename extension. Unknown extensions
// fall through to the default extractor.
type Composite struct {
	byExtension map[string]ports.TextExtractor
	fallback    ports.TextExtractor
}

func NewComposite(fallback ports.TextExtractor) *Composite {
	return &Composite{
		byExtension: make(map[string]ports.TextExtractor),
		fallback:    fallback,
	}
}

func (c *Composite) Register(extension string, extractor ports.TextExtractor) {
	c.byExtension[normalizeExtension(extension)] = extractor
}

func (c *Composite) Extract(ctx context.Context, doc *domain.Document) (domain.ExtractedText, error) {
	ext := normalizeExtension(filepath.Ext(doc.Filename))
	if extractor, ok := c.byExtension[ext]; ok {
		return extractor.Extract(ctx, doc)
	}
	if c.fallback == nil {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("unsupported file type: "+ext))
	}
	return c.fallback.Extract(ctx, doc)
}

func normalizeExtension(extension string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(extension)), ".")
}
