package azsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
	"github.com/kirillkom/support-rag-bot/internal/infrastructure/resilience"
)

const (
	apiVersion      = "2023-11-01"
	highlightFields = "content,paragraph_content"
)

// Client talks to an Azure AI Search index over its REST surface.
type Client struct {
	endpoint   string
	apiKey     string
	indexName  string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	HTTPTimeout        time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(endpoint, apiKey, indexName string, options Options) *Client {
	httpTimeout := options.HTTPTimeout
	if httpTimeout <= 0 {
		httpTimeout = 30 * time.Second
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		indexName:  indexName,
		httpClient: &http.Client{Timeout: httpTimeout},
		executor:   options.ResilienceExecutor,
	}
}

type searchRequest struct {
	Search           string `json:"search"`
	Top              int    `json:"top"`
	Filter           string `json:"filter,omitempty"`
	Highlight        string `json:"highlight"`
	HighlightPreTag  string `json:"highlightPreTag"`
	HighlightPostTag string `json:"highlightPostTag"`
}

type searchDocument struct {
	ID               string              `json:"id"`
	FileName         string              `json:"file_name"`
	FileType         string              `json:"file_type"`
	PageCount        int                 `json:"page_count"`
	Content          string              `json:"content"`
	ParagraphContent string              `json:"paragraph_content"`
	Score            float64             `json:"@search.score"`
	Highlights       map[string][]string `json:"@search.highlights"`
}

type searchResponse struct {
	Value []searchDocument `json:"value"`
}

func (c *Client) Search(ctx context.Context, queryText, filterExpression string, topN int) ([]domain.IndexHit, error) {
	request := searchRequest{
		Search:           queryText,
		Top:              topN,
		Filter:           filterExpression,
		Highlight:        highlightFields,
		HighlightPreTag:  "<em>",
		HighlightPostTag: "</em>",
	}
	path := fmt.Sprintf("/indexes/%s/docs/search?api-version=%s", c.indexName, apiVersion)

	var response searchResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, request, &response, "search")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "azsearch.search", call, resilience.ClassifyHTTPError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("search", err)
	}

	hits := make([]domain.IndexHit, 0, len(response.Value))
	for _, doc := range response.Value {
		hits = append(hits, domain.IndexHit{
			DocumentID:       doc.ID,
			FileName:         doc.FileName,
			PageCount:        doc.PageCount,
			Content:          doc.Content,
			ParagraphContent: doc.ParagraphContent,
			Score:            doc.Score,
			Highlights:       doc.Highlights,
		})
	}
	return hits, nil
}

type indexAction struct {
	Action           string `json:"@search.action"`
	ID               string `json:"id"`
	FileName         string `json:"file_name"`
	FileType         string `json:"file_type"`
	PageCount        int    `json:"page_count"`
	Content          string `json:"content"`
	ParagraphContent string `json:"paragraph_content"`
}

type indexBatch struct {
	Value []indexAction `json:"value"`
}

func (c *Client) IndexDocument(ctx context.Context, entry domain.IndexEntry) error {
	batch := indexBatch{Value: []indexAction{{
		Action:           "mergeOrUpload",
		ID:               entry.DocumentID,
		FileName:         entry.FileName,
		FileType:         entry.FileType,
		PageCount:        entry.PageCount,
		Content:          entry.Content,
		ParagraphContent: entry.ParagraphContent,
	}}}
	path := fmt.Sprintf("/indexes/%s/docs/index?api-version=%s", c.indexName, apiVersion)

	var response struct {
		Value []struct {
			Key        string `json:"key"`
			Status     bool   `json:"status"`
			StatusCode int    `json:"statusCode"`
		} `json:"value"`
	}
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, batch, &response, "index")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "azsearch.index", call, resilience.ClassifyHTTPError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded("index document", err)
	}

	for _, result := range response.Value {
		if !result.Status {
			return fmt.Errorf("index document %s: status %d", result.Key, result.StatusCode)
		}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("azsearch %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &resilience.HTTPStatusError{
			Service:    "azsearch",
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(respBody),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
