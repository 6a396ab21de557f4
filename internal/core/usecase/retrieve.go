package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
	"github.com/kirillkom/support-rag-bot/internal/core/ports"
)

const (
	defaultMaxResults     = 3
	paragraphHighlightCap = 2
	paragraphMinimumChars = 30
	contentPreviewChars   = 300
	paragraphFieldName    = "paragraph_content"
	contentFieldName      = "content"
)

// DocumentRetriever issues a scoped search against the external index and
// normalizes failures into a RetrievalResult value.
type DocumentRetriever struct {
	index   ports.SearchIndex
	timeout time.Duration
}

func NewDocumentRetriever(index ports.SearchIndex, timeout time.Duration) *DocumentRetriever {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &DocumentRetriever{index: index, timeout: timeout}
}

func (r *DocumentRetriever) Retrieve(ctx context.Context, queryText string, scope domain.DocumentScope, maxResults int) domain.RetrievalResult {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	searchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.index.Search(searchCtx, queryText, buildFilterExpression(scope), maxResults)
	if err != nil {
		return domain.RetrievalResult{Succeeded: false, ErrorDetail: err.Error()}
	}

	hits := make([]domain.SearchHit, 0, len(raw))
	for _, indexHit := range raw {
		hits = append(hits, domain.SearchHit{
			DocumentID: indexHit.DocumentID,
			FileName:   indexHit.FileName,
			PageCount:  indexHit.PageCount,
			Score:      indexHit.Score,
			Highlights: selectHighlights(indexHit, queryText),
		})
	}
	return domain.RetrievalResult{Hits: hits, Succeeded: true}
}

// buildFilterExpression restricts the search to the scope's document ids as
// a logical OR of equality predicates. Unscoped searches get no filter.
func buildFilterExpression(scope domain.DocumentScope) string {
	if scope.IsUnscoped() {
		return ""
	}
	parts := make([]string, 0, len(scope.DocumentIDs))
	for _, id := range scope.DocumentIDs {
		parts = append(parts, fmt.Sprintf("id eq '%s'", id))
	}
	return strings.Join(parts, " or ")
}

// selectHighlights picks the snippets justifying a hit, by priority:
// native paragraph highlights, native content highlights, paragraphs that
// mention a query term, and finally a content prefix.
func selectHighlights(hit domain.IndexHit, queryText string) []string {
	if fragments := hit.Highlights[paragraphFieldName]; len(fragments) > 0 {
		return fragments
	}
	if fragments := hit.Highlights[contentFieldName]; len(fragments) > 0 {
		return fragments
	}
	if highlights := matchingParagraphs(hit.ParagraphContent, queryText); len(highlights) > 0 {
		return highlights
	}
	if preview := contentPreview(hit.Content); preview != "" {
		return []string{preview}
	}
	return nil
}

func matchingParagraphs(paragraphContent, queryText string) []string {
	if paragraphContent == "" {
		return nil
	}

	terms := strings.Fields(strings.ToLower(queryText))
	if len(terms) == 0 {
		return nil
	}

	highlights := make([]string, 0, paragraphHighlightCap)
	for _, paragraph := range strings.Split(paragraphContent, "\n\n") {
		if utf8.RuneCountInString(paragraph) <= paragraphMinimumChars {
			continue
		}
		lower := strings.ToLower(paragraph)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				highlights = append(highlights, paragraph)
				break
			}
		}
		if len(highlights) >= paragraphHighlightCap {
			break
		}
	}
	return highlights
}

// contentPreview cuts on rune boundaries; a byte slice would split multibyte
// content mid-rune and feed invalid UTF-8 into the prompt and the response.
func contentPreview(content string) string {
	if content == "" {
		return ""
	}
	if utf8.RuneCountInString(content) <= contentPreviewChars {
		return content
	}
	runes := []rune(content)
	return string(runes[:contentPreviewChars]) + "..."
}
