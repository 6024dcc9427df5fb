package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
)

// --- Mock indexer ---

type mockIndexer struct {
	indexed commonModels.Document
	fail    bool
}

func (m *mockIndexer) IndexDocument(ctx context.Context, doc commonModels.Document) (commonModels.Document, error) {
	if m.fail {
		return doc, errors.New("indexing failed")
	}
	m.indexed = doc
	doc.Status = commonModels.DocumentIndexed
	doc.ChunkIds = []string{"c1", "c2"}
	return doc, nil
}

func (m *mockIndexer) DeleteDocument(ctx context.Context, documentId string) error { return nil }

// --- Unit Tests ---

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected docType
	}{
		{"test.pdf", pdfDoc},
		{"DOC.DOCX", textDoc},
		{"notes.txt", textDoc},
		{"image.png", unsupportedDoc},
	}

	for _, tt := range tests {
		if got := getDocType(tt.path); got != tt.expected {
			t.Errorf("getDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestJoinPages(t *testing.T) {
	pages := []rawPage{
		{Number: 1, Content: "Page one content."},
		{Number: 2, Content: ""},
		{Number: 3, Content: "Page three content."},
	}
	got := joinPages(pages)
	want := "Page one content.\n\nPage three content."
	if got != want {
		t.Errorf("joinPages = %q, want %q", got, want)
	}
}

func TestProcessDocumentIngestion(t *testing.T) {
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "ingest-trace")

	newUpload := func(t *testing.T, name string, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("writing upload: %v", err)
		}
		return path
	}

	t.Run("Success", func(t *testing.T) {
		path := newUpload(t, "notes.txt", "test content for ingestion")
		ix := &mockIndexer{}
		job := jobModel.Job{
			Id:         "job-1",
			DocumentId: "doc-1",
			Payload:    jobModel.IngestPayload{DocumentName: "notes.txt", SourcePath: path},
		}

		result := ProcessDocumentIngestion(ctx, job, ix)

		if result.Status != jobModel.JobStatusComplete {
			t.Fatalf("status = %v, want COMPLETE (error: %s)", result.Status, result.Error.Message)
		}
		if result.Payload.ChunkCount != 2 {
			t.Errorf("chunk count = %d, want 2", result.Payload.ChunkCount)
		}
		if ix.indexed.Id != "doc-1" {
			t.Errorf("indexer got document id %s", ix.indexed.Id)
		}
		if ix.indexed.RawText != "test content for ingestion" {
			t.Errorf("extracted text = %q", ix.indexed.RawText)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("upload file not removed after successful ingestion")
		}
	})

	t.Run("Unsupported_Type", func(t *testing.T) {
		path := newUpload(t, "image.png", "not a document")
		job := jobModel.Job{Payload: jobModel.IngestPayload{SourcePath: path}}

		result := ProcessDocumentIngestion(ctx, job, &mockIndexer{})
		if result.Status != jobModel.JobStatusError {
			t.Errorf("status = %v, want Error", result.Status)
		}
	})

	t.Run("Missing_File", func(t *testing.T) {
		job := jobModel.Job{Payload: jobModel.IngestPayload{SourcePath: "does/not/exist.txt"}}

		result := ProcessDocumentIngestion(ctx, job, &mockIndexer{})
		if result.Status != jobModel.JobStatusError {
			t.Errorf("status = %v, want Error", result.Status)
		}
	})

	t.Run("Indexing_Failure_Keeps_File", func(t *testing.T) {
		path := newUpload(t, "notes.txt", "content")
		job := jobModel.Job{DocumentId: "doc-1", Payload: jobModel.IngestPayload{SourcePath: path}}

		result := ProcessDocumentIngestion(ctx, job, &mockIndexer{fail: true})
		if result.Status != jobModel.JobStatusError {
			t.Errorf("status = %v, want Error", result.Status)
		}
		if _, err := os.Stat(path); err != nil {
			t.Error("upload removed even though indexing failed")
		}
	})
}
