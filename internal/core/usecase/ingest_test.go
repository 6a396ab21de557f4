package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
)

type ingestRepoFake struct {
	created *domain.Document
	err     error
}

func (f *ingestRepoFake) Create(_ context.Context, doc *domain.Document) error {
	f.created = doc
	return f.err
}

func (f *ingestRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *ingestRepoFake) UpdateStatus(context.Context, string, domain.DocumentStatus, string) error {
	return nil
}

func (f *ingestRepoFake) SavePageCount(context.Context, string, int) error { return nil }

type ingestStorageFake struct {
	savedKey string
	saved    []byte
	err      error
}

func (f *ingestStorageFake) Save(_ context.Context, key string, body io.Reader) error {
	if f.err != nil {
		return f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.saved = data
	return nil
}

func (f *ingestStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

type ingestQueueFake struct {
	published []string
	err       error
}

func (f *ingestQueueFake) PublishDocumentUploaded(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *ingestQueueFake) SubscribeDocumentUploaded(context.Context, func(context.Context, string) error) error {
	return nil
}

func TestUploadStoresPersistsAndPublishes(t *testing.T) {
	repo := &ingestRepoFake{}
	storage := &ingestStorageFake{}
	queue := &ingestQueueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue)

	doc, err := uc.Upload(context.Background(), "Refund Policy.pdf", "application/pdf", bytes.NewBufferString("%PDF-"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.ID == "" {
		t.Fatalf("expected generated document id")
	}
	if doc.Status != domain.StatusUploaded {
		t.Fatalf("expected status=uploaded, got %s", doc.Status)
	}
	if !strings.HasSuffix(storage.savedKey, "_Refund_Policy.pdf") {
		t.Fatalf("unexpected storage key: %q", storage.savedKey)
	}
	if string(storage.saved) != "%PDF-" {
		t.Fatalf("body not written to storage")
	}
	if repo.created == nil || repo.created.ID != doc.ID {
		t.Fatalf("metadata not persisted")
	}
	if len(queue.published) != 1 || queue.published[0] != doc.ID {
		t.Fatalf("indexing event not published: %v", queue.published)
	}
}

func TestUploadStorageFailureSkipsPersistAndPublish(t *testing.T) {
	repo := &ingestRepoFake{}
	queue := &ingestQueueFake{}
	uc := NewIngestDocumentUseCase(repo, &ingestStorageFake{err: errors.New("disk full")}, queue)

	if _, err := uc.Upload(context.Background(), "a.txt", "text/plain", bytes.NewBufferString("x")); err == nil {
		t.Fatalf("expected error")
	}
	if repo.created != nil {
		t.Fatalf("metadata must not be persisted after storage failure")
	}
	if len(queue.published) != 0 {
		t.Fatalf("event must not be published after storage failure")
	}
}

func TestUploadPublishFailurePropagates(t *testing.T) {
	uc := NewIngestDocumentUseCase(&ingestRepoFake{}, &ingestStorageFake{}, &ingestQueueFake{err: errors.New("nats down")})

	if _, err := uc.Upload(context.Background(), "a.txt", "text/plain", bytes.NewBufferString("x")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Refund Policy.pdf", "Refund_Policy.pdf"},
		{"../../etc/passwd", "passwd"},
		{"résumé.pdf", "r_sum_.pdf"},
		{"ok-name_1.txt", "ok-name_1.txt"},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
