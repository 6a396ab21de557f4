package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
)

type retrieveIndexFake struct {
	gotQuery  string
	gotFilter string
	gotTopN   int
	hits      []domain.IndexHit
	err       error
}

func (f *retrieveIndexFake) Search(_ context.Context, queryText, filterExpression string, topN int) ([]domain.IndexHit, error) {
	f.gotQuery = queryText
	f.gotFilter = filterExpression
	f.gotTopN = topN
	return f.hits, f.err
}

func (f *retrieveIndexFake) IndexDocument(context.Context, domain.IndexEntry) error { return nil }

func TestRetrieveBuildsScopedFilter(t *testing.T) {
	index := &retrieveIndexFake{}
	retriever := NewDocumentRetriever(index, time.Second)

	scope := domain.DocumentScope{BotID: "b1", DocumentIDs: []string{"d1", "d2"}}
	result := retriever.Retrieve(context.Background(), "refund", scope, 3)
	if !result.Succeeded {
		t.Fatalf("expected success, got %q", result.ErrorDetail)
	}
	if index.gotFilter != "id eq 'd1' or id eq 'd2'" {
		t.Fatalf("unexpected filter: %q", index.gotFilter)
	}
	if index.gotTopN != 3 {
		t.Fatalf("expected topN=3, got %d", index.gotTopN)
	}
}

func TestRetrieveUnscopedSearchHasNoFilter(t *testing.T) {
	index := &retrieveIndexFake{}
	retriever := NewDocumentRetriever(index, time.Second)

	retriever.Retrieve(context.Background(), "refund", domain.DocumentScope{BotID: "b1"}, 3)
	if index.gotFilter != "" {
		t.Fatalf("expected empty filter, got %q", index.gotFilter)
	}
}

func TestRetrieveErrorBecomesFailedResult(t *testing.T) {
	index := &retrieveIndexFake{err: errors.New("503 from index")}
	retriever := NewDocumentRetriever(index, time.Second)

	result := retriever.Retrieve(context.Background(), "refund", domain.DocumentScope{}, 3)
	if result.Succeeded {
		t.Fatalf("expected failed result")
	}
	if !strings.Contains(result.ErrorDetail, "503") {
		t.Fatalf("expected error detail to carry cause, got %q", result.ErrorDetail)
	}
	if len(result.Hits) != 0 {
		t.Fatalf("failed result must carry no hits")
	}
}

func TestRetrieveDefaultsMaxResults(t *testing.T) {
	index := &retrieveIndexFake{}
	retriever := NewDocumentRetriever(index, time.Second)

	retriever.Retrieve(context.Background(), "q", domain.DocumentScope{}, 0)
	if index.gotTopN != defaultMaxResults {
		t.Fatalf("expected default topN=%d, got %d", defaultMaxResults, index.gotTopN)
	}
}

func TestSelectHighlightsPrefersNativeParagraphFragments(t *testing.T) {
	hit := domain.IndexHit{
		Content:          "full content body",
		ParagraphContent: "a paragraph that mentions refund and is long enough to qualify",
		Highlights: map[string][]string{
			"paragraph_content": {"<em>refund</em> within 14 days"},
			"content":           {"content fragment"},
		},
	}
	got := selectHighlights(hit, "refund")
	if len(got) != 1 || got[0] != "<em>refund</em> within 14 days" {
		t.Fatalf("expected paragraph fragments, got %v", got)
	}
}

func TestSelectHighlightsFallsBackToContentFragments(t *testing.T) {
	hit := domain.IndexHit{
		Highlights: map[string][]string{"content": {"content fragment one", "content fragment two"}},
	}
	got := selectHighlights(hit, "refund")
	if len(got) != 2 || got[0] != "content fragment one" {
		t.Fatalf("expected content fragments, got %v", got)
	}
}

func TestSelectHighlightsScansParagraphsForQueryTerms(t *testing.T) {
	paragraphs := strings.Join([]string{
		"short one",
		"This long paragraph talks about the refund process in careful detail.",
		"This unrelated paragraph talks about something else entirely, at length.",
		"A second long paragraph mentioning refund timelines and processing windows.",
		"A third matching paragraph about refund exceptions that must be cut by the cap.",
	}, "\n\n")
	hit := domain.IndexHit{ParagraphContent: paragraphs}

	got := selectHighlights(hit, "Refund policy")
	if len(got) != paragraphHighlightCap {
		t.Fatalf("expected %d paragraphs, got %d: %v", paragraphHighlightCap, len(got), got)
	}
	if !strings.Contains(got[0], "refund process") || !strings.Contains(got[1], "refund timelines") {
		t.Fatalf("paragraphs out of document order: %v", got)
	}
}

func TestSelectHighlightsLastResortContentPreview(t *testing.T) {
	long := strings.Repeat("x", contentPreviewChars+50)
	hit := domain.IndexHit{Content: long}

	got := selectHighlights(hit, "nomatch")
	if len(got) != 1 {
		t.Fatalf("expected single preview, got %v", got)
	}
	if len(got[0]) != contentPreviewChars+3 || !strings.HasSuffix(got[0], "...") {
		t.Fatalf("expected %d-char preview with ellipsis, got %d chars", contentPreviewChars+3, len(got[0]))
	}
}

func TestContentPreviewTruncatesOnRuneBoundaries(t *testing.T) {
	content := "a" + strings.Repeat("日", contentPreviewChars+100)
	got := contentPreview(content)

	if !utf8.ValidString(got) {
		t.Fatalf("preview is not valid UTF-8: %q", got)
	}
	body := strings.TrimSuffix(got, "...")
	if body == got {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if n := utf8.RuneCountInString(body); n != contentPreviewChars {
		t.Fatalf("expected %d-rune preview, got %d", contentPreviewChars, n)
	}
}

func TestContentPreviewKeepsShortMultibyteContent(t *testing.T) {
	content := strings.Repeat("ü", contentPreviewChars)
	if got := contentPreview(content); got != content {
		t.Fatalf("content at the limit must not be truncated, got %d runes", utf8.RuneCountInString(got))
	}
}

func TestParagraphMinimumCountsRunesNotBytes(t *testing.T) {
	// 20 runes but 60 bytes: long enough only when miscounted in bytes.
	short := strings.Repeat("答", 18) + "退款"
	if got := selectHighlights(domain.IndexHit{ParagraphContent: short}, "退款"); got != nil {
		t.Fatalf("expected no highlights for a 20-rune paragraph, got %v", got)
	}

	long := strings.Repeat("答", 29) + "退款"
	if got := selectHighlights(domain.IndexHit{ParagraphContent: long}, "退款"); len(got) != 1 || got[0] != long {
		t.Fatalf("expected the 31-rune paragraph to qualify, got %v", got)
	}
}

func TestSelectHighlightsNothingAvailable(t *testing.T) {
	if got := selectHighlights(domain.IndexHit{}, "q"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
