package ports

import (
	"context"
	"io"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
)

// SearchIndex is the external full-text index. Search returns raw scored hits
// with stored fields and native highlights; relevance scoring is the index's
// concern. An empty filterExpression means no restriction.
type SearchIndex interface {
	Search(ctx context.Context, queryText, filterExpression string, topN int) ([]domain.IndexHit, error)
	IndexDocument(ctx context.Context, entry domain.IndexEntry) error
}

// Translator is the external translation service. It fails on quota/network
// errors; converting failure into best-effort behavior is the caller's job.
type Translator interface {
	Translate(ctx context.Context, text, fromLang, toLang string) (string, error)
}

// CompletionService is the external text-generation service.
type CompletionService interface {
	Complete(ctx context.Context, turns []domain.ConversationTurn, maxTokens int, temperature float64) (string, error)
}

// BotRegistry resolves a bot to its associated document identifiers.
// Returns domain.ErrBotNotFound for unknown bots.
type BotRegistry interface {
	GetDocumentIDs(ctx context.Context, botID string) ([]string, error)
}

// BotReader is the read model for bot records exposed over HTTP.
type BotReader interface {
	GetByID(ctx context.Context, id string) (*domain.Bot, error)
	List(ctx context.Context) ([]domain.Bot, error)
}

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SavePageCount(ctx context.Context, id string, pageCount int) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes indexing events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (domain.ExtractedText, error)
}
