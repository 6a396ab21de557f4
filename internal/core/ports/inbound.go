package ports

import (
	"context"
	"io"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
)

// ChatService is the inbound contract for the answer pipeline. It never
// returns an application error: every failure state resolves to a textual
// answer. The returned error is non-nil only when ctx is cancelled.
type ChatService interface {
	Answer(ctx context.Context, query domain.Query) (*domain.ChatAnswer, error)
}

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous indexing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}
