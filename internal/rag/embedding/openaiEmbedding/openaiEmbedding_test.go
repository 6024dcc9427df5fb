package openaiEmbedding

import (
	"testing"

	"github.com/openai/openai-go"
)

func TestVectorsByIndex_OrdersByIndex(t *testing.T) {
	res := &openai.CreateEmbeddingResponse{Data: []openai.Embedding{
		{Index: 1, Embedding: []float64{0.3, 0.4}},
		{Index: 0, Embedding: []float64{0.1, 0.2}},
	}}

	vectors := vectorsByIndex(res)
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	if vectors[0][0] != 0.1 || vectors[1][0] != 0.3 {
		t.Errorf("vectors not ordered by response index: %v", vectors)
	}
}

func TestFirstVector(t *testing.T) {
	got, err := firstVector([][]float32{{0.5, 0.6}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != 0.5 {
		t.Errorf("got %v, want the first vector", got)
	}

	if _, err := firstVector(nil); err == nil {
		t.Error("empty response should be an error, got nil")
	}
}
