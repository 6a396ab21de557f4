package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	pdfreader "github.com/ledongthuc/pdf"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
	"github.com/kirillkom/support-rag-bot/internal/core/ports"
)

type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (domain.ExtractedText, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return domain.ExtractedText{}, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return domain.ExtractedText{}, fmt.Errorf("read source document: %w", err)
	}

	parsed, err := pdfreader.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return domain.ExtractedText{}, fmt.Errorf("parse pdf: %w", err)
	}

	pageCount := parsed.NumPage()
	var pages []string
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		page := parsed.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return domain.ExtractedText{}, fmt.Errorf("extract pdf page %d: %w", pageNum, err)
		}
		text = strings.TrimSpace(text)
		if text != "" {
			pages = append(pages, text)
		}
	}

	return domain.ExtractedText{
		Text:      strings.Join(pages, "\n\n"),
		PageCount: pageCount,
	}, nil
}
