package vectorDB

import (
	"context"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
)

// DataProcessor is the capability surface the core needs from the
// vector database: committed upserts, similarity search and
// delete-by-document. A completed UpsertBatch must be visible to a
// Search issued after it returns.
type DataProcessor interface {
	EnsureCollection(ctx context.Context, collectionName string) error
	UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.Chunk, vectors [][]float32) error
	Search(ctx context.Context, collectionName string, vector []float32, limit uint64) ([]commonModels.RetrievedChunk, error)
	DeleteByDocument(ctx context.Context, collectionName string, documentId string) error
}
