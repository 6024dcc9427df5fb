package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
)

type mockEmbedder struct {
	OnGetEmbedding func(ctx context.Context, query string) ([]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.5, 0.5}, nil
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	return nil, errors.New("not used")
}

type mockVectorDB struct {
	hits     []commonModels.RetrievedChunk
	OnSearch func(limit uint64) ([]commonModels.RetrievedChunk, error)
}

func (m *mockVectorDB) EnsureCollection(ctx context.Context, name string) error { return nil }

func (m *mockVectorDB) UpsertBatch(ctx context.Context, collection string, chunks []commonModels.Chunk, vectors [][]float32) error {
	return nil
}

func (m *mockVectorDB) Search(ctx context.Context, collection string, vector []float32, limit uint64) ([]commonModels.RetrievedChunk, error) {
	if m.OnSearch != nil {
		return m.OnSearch(limit)
	}
	return m.hits, nil
}

func (m *mockVectorDB) DeleteByDocument(ctx context.Context, collection string, documentId string) error {
	return nil
}

type mockRegistry struct {
	docs map[string]commonModels.Document
}

func (m *mockRegistry) SaveDocument(ctx context.Context, doc commonModels.Document) error {
	m.docs[doc.Id] = doc
	return nil
}

func (m *mockRegistry) GetDocument(ctx context.Context, id string) (commonModels.Document, bool) {
	doc, ok := m.docs[id]
	return doc, ok
}

func (m *mockRegistry) SetStatus(ctx context.Context, id string, status commonModels.DocumentStatus, chunkIds []string) error {
	return nil
}

func registryWith(statuses map[string]commonModels.DocumentStatus) *mockRegistry {
	docs := make(map[string]commonModels.Document, len(statuses))
	for id, status := range statuses {
		docs[id] = commonModels.Document{Id: id, Status: status}
	}
	return &mockRegistry{docs: docs}
}

func hit(chunkId, docId string, seq int, score float64) commonModels.RetrievedChunk {
	return commonModels.RetrievedChunk{
		ChunkId:       chunkId,
		DocumentId:    docId,
		Text:          "chunk text",
		SequenceIndex: seq,
		Score:         score,
	}
}

func TestRetrieve_FiltersNonIndexedDocuments(t *testing.T) {
	vdb := &mockVectorDB{hits: []commonModels.RetrievedChunk{
		hit("c1", "indexed-doc", 0, 0.9),
		hit("c2", "pending-doc", 0, 0.95),
		hit("c3", "deleted-doc", 0, 0.85),
		hit("c4", "unknown-doc", 0, 0.8),
	}}
	registry := registryWith(map[string]commonModels.DocumentStatus{
		"indexed-doc": commonModels.DocumentIndexed,
		"pending-doc": commonModels.DocumentPending,
		"deleted-doc": commonModels.DocumentDeleted,
	})
	r := NewRetriever(&mockEmbedder{}, vdb, registry)

	result, err := r.Retrieve(context.Background(), "query")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(result.Chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(result.Chunks))
	}
	if result.Chunks[0].ChunkId != "c1" {
		t.Errorf("kept chunk %s, want c1", result.Chunks[0].ChunkId)
	}
	if result.Degraded {
		t.Error("result marked degraded with a surviving chunk")
	}
}

func TestRetrieve_DeterministicOrderAndTopK(t *testing.T) {
	var hits []commonModels.RetrievedChunk
	// c-low ties with c-tie on score; sequence index breaks the tie
	hits = append(hits,
		hit("c-top", "doc-a", 3, 0.9),
		hit("c-tie", "doc-a", 2, 0.5),
		hit("c-low", "doc-a", 1, 0.5),
		hit("c-mid", "doc-a", 0, 0.7),
		hit("c-5", "doc-a", 4, 0.45),
		hit("c-6", "doc-a", 5, 0.4),
		hit("c-7", "doc-a", 6, 0.35),
	)
	vdb := &mockVectorDB{hits: hits}
	registry := registryWith(map[string]commonModels.DocumentStatus{
		"doc-a": commonModels.DocumentIndexed,
	})
	r := NewRetriever(&mockEmbedder{}, vdb, registry)

	result, err := r.Retrieve(context.Background(), "query")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(result.Chunks) != config.RetrieveTopK {
		t.Fatalf("got %d chunks, want top-k %d", len(result.Chunks), config.RetrieveTopK)
	}
	wantOrder := []string{"c-top", "c-mid", "c-low", "c-tie", "c-5"}
	for i, want := range wantOrder {
		if result.Chunks[i].ChunkId != want {
			t.Errorf("position %d: got %s, want %s", i, result.Chunks[i].ChunkId, want)
		}
	}
}

func TestRetrieve_ThresholdDropsWeakMatches(t *testing.T) {
	vdb := &mockVectorDB{hits: []commonModels.RetrievedChunk{
		hit("c-strong", "doc-a", 0, 0.6),
		hit("c-weak", "doc-a", 1, 0.05),
	}}
	registry := registryWith(map[string]commonModels.DocumentStatus{
		"doc-a": commonModels.DocumentIndexed,
	})
	r := NewRetriever(&mockEmbedder{}, vdb, registry)

	result, err := r.Retrieve(context.Background(), "query")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(result.Chunks) != 1 || result.Chunks[0].ChunkId != "c-strong" {
		t.Errorf("threshold did not drop weak match: %+v", result.Chunks)
	}
}

func TestRetrieve_EmptyCorpusIsDegradedNotError(t *testing.T) {
	vdb := &mockVectorDB{}
	registry := registryWith(nil)
	r := NewRetriever(&mockEmbedder{}, vdb, registry)

	result, err := r.Retrieve(context.Background(), "query")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if !result.Degraded {
		t.Error("empty corpus must be reported as degraded")
	}
	if len(result.Chunks) != 0 {
		t.Errorf("got %d chunks from empty corpus", len(result.Chunks))
	}
}

func TestRetrieve_EmbeddingFailureDegrades(t *testing.T) {
	embedder := &mockEmbedder{
		OnGetEmbedding: func(ctx context.Context, query string) ([]float32, error) {
			return nil, errors.New("provider down")
		},
	}
	r := NewRetriever(embedder, &mockVectorDB{}, registryWith(nil))

	result, err := r.Retrieve(context.Background(), "query")
	if err != nil {
		t.Fatalf("embedding failure should degrade, not error: %v", err)
	}
	if !result.Degraded {
		t.Error("result not marked degraded after embedding failure")
	}
}

func TestRetrieve_OverFetchesCandidates(t *testing.T) {
	var gotLimit uint64
	vdb := &mockVectorDB{
		OnSearch: func(limit uint64) ([]commonModels.RetrievedChunk, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	r := NewRetriever(&mockEmbedder{}, vdb, registryWith(nil))

	if _, err := r.Retrieve(context.Background(), "query"); err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	want := uint64(config.RetrieveTopK * config.CandidateMultiplier)
	if gotLimit != want {
		t.Errorf("search limit = %d, want %d", gotLimit, want)
	}
}

func TestOverlapOchiai(t *testing.T) {
	tests := []struct {
		name  string
		query string
		text  string
		want  float64
	}{
		{"identical", "refund policy", "refund policy", 1.0},
		{"disjoint", "refund policy", "shipping rates", 0.0},
		{"empty text", "refund policy", "", 0.0},
		{"case insensitive", "Refund POLICY", "refund policy", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := overlapOchiai(toTokenSet(tt.query), tt.text)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("overlapOchiai(%q, %q) = %v, want %v", tt.query, tt.text, got, tt.want)
			}
		})
	}
}

func TestRescoreHybridBlendsScores(t *testing.T) {
	candidates := []commonModels.RetrievedChunk{
		{ChunkId: "c1", Text: "refund policy", Score: 0.5},
	}
	rescoreHybrid("refund policy", candidates)
	want := config.HybridAlpha*0.5 + (1-config.HybridAlpha)*1.0
	if diff := candidates[0].Score - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("blended score = %v, want %v", candidates[0].Score, want)
	}
}
