package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
	"github.com/kirillkom/support-rag-bot/internal/core/ports"
)

// ProcessDocumentUseCase turns an uploaded document into a searchable index
// entry: extract text, derive paragraph content, push into the search index.
type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.TextExtractor
	index     ports.SearchIndex
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	index ports.SearchIndex,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:      repo,
		extractor: extractor,
		index:     index,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.processPipeline(ctx, documentID); err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	extracted, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(extracted.Text) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}

	entry := domain.IndexEntry{
		DocumentID:       doc.ID,
		FileName:         doc.Filename,
		FileType:         fileType(doc.Filename),
		PageCount:        extracted.PageCount,
		Content:          extracted.Text,
		ParagraphContent: paragraphContent(extracted.Text),
	}
	if err := uc.index.IndexDocument(ctx, entry); err != nil {
		return fmt.Errorf("index document: %w", err)
	}

	if err := uc.repo.SavePageCount(ctx, doc.ID, extracted.PageCount); err != nil {
		return fmt.Errorf("save page count: %w", err)
	}
	return nil
}

// paragraphContent re-joins the text as blank-line-separated paragraphs so
// the retriever's paragraph-split highlight rule has stable boundaries.
func paragraphContent(text string) string {
	rawParagraphs := strings.Split(text, "\n\n")
	paragraphs := make([]string, 0, len(rawParagraphs))
	for _, paragraph := range rawParagraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		paragraphs = append(paragraphs, paragraph)
	}
	return strings.Join(paragraphs, "\n\n")
}

func fileType(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}
