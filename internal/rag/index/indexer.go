package index

import (
	"context"
	"fmt"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/rag/chunker"
	"github.com/akolanti/DocQA/internal/rag/embedding"
	"github.com/akolanti/DocQA/internal/rag/vectorDB"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"github.com/google/uuid"
)

// Indexer makes a document searchable. IndexDocument is all-or-nothing:
// the registry status flips to INDEXED only after every chunk is
// committed, and a failed run rolls back whatever it half-wrote.
// Re-indexing the same document id replaces the previous chunk set.
type Indexer interface {
	IndexDocument(ctx context.Context, doc commonModels.Document) (commonModels.Document, error)
	DeleteDocument(ctx context.Context, documentId string) error
}

type indexer struct {
	embedder embedding.Embedder
	vectors  vectorDB.DataProcessor
	registry commonModels.DocumentRegistry
	logger   *logger_i.Logger
}

func NewIndexer(embedder embedding.Embedder, vectors vectorDB.DataProcessor, registry commonModels.DocumentRegistry) Indexer {
	return &indexer{
		embedder: embedder,
		vectors:  vectors,
		registry: registry,
		logger:   logger_i.NewLogger("Indexer"),
	}
}

func (ix *indexer) IndexDocument(ctx context.Context, doc commonModels.Document) (commonModels.Document, error) {
	log := ix.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", doc.Id)

	if doc.Id == "" {
		doc.Id = uuid.NewString()
	}
	doc.Status = commonModels.DocumentPending
	if err := ix.registry.SaveDocument(ctx, doc); err != nil {
		return doc, fmt.Errorf("registering document: %w", err)
	}

	chunks, err := chunker.Split(doc.RawText, config.ChunkSize, config.ChunkOverlap, config.BoundaryLookback)
	if err != nil {
		return ix.fail(ctx, doc, fmt.Errorf("chunking: %w", err))
	}
	for i := range chunks {
		chunks[i].Id = uuid.NewString()
		chunks[i].DocumentId = doc.Id
	}
	log.Info("Chunked document", "chunks", len(chunks))

	// Embed everything before touching the vector store. A provider
	// failure here leaves the previous chunk set fully searchable.
	vectors, err := ix.embedAll(ctx, chunks)
	if err != nil {
		return ix.fail(ctx, doc, fmt.Errorf("embedding: %w", err))
	}

	// Re-indexing drops the old points first so stale chunks cannot
	// outlive the document revision that produced them.
	if err := ix.vectors.DeleteByDocument(ctx, config.VectorCollectionName, doc.Id); err != nil {
		return ix.fail(ctx, doc, fmt.Errorf("clearing previous chunks: %w", err))
	}

	for start := 0; start < len(chunks); start += config.IngestBatchSize {
		end := min(start+config.IngestBatchSize, len(chunks))
		if err := ix.vectors.UpsertBatch(ctx, config.VectorCollectionName, chunks[start:end], vectors[start:end]); err != nil {
			ix.rollback(ctx, doc.Id)
			return ix.fail(ctx, doc, fmt.Errorf("upserting chunks: %w", err))
		}
	}

	chunkIds := make([]string, len(chunks))
	for i, chunk := range chunks {
		chunkIds[i] = chunk.Id
	}
	doc.Status = commonModels.DocumentIndexed
	doc.ChunkIds = chunkIds
	if err := ix.registry.SetStatus(ctx, doc.Id, commonModels.DocumentIndexed, chunkIds); err != nil {
		return ix.fail(ctx, doc, fmt.Errorf("recording indexed status: %w", err))
	}
	log.Info("Indexed document", "chunks", len(chunkIds))
	return doc, nil
}

func (ix *indexer) embedAll(ctx context.Context, chunks []commonModels.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += config.IngestBatchSize {
		end := min(start+config.IngestBatchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Text)
		}
		batch, err := ix.embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(batch), len(texts))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (ix *indexer) rollback(ctx context.Context, documentId string) {
	if err := ix.vectors.DeleteByDocument(ctx, config.VectorCollectionName, documentId); err != nil {
		ix.logger.Error("Rollback failed, stale chunks may remain hidden behind FAILED status",
			"documentId", documentId, "error:", err)
	}
}

func (ix *indexer) fail(ctx context.Context, doc commonModels.Document, cause error) (commonModels.Document, error) {
	log := ix.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", doc.Id)
	log.Error("Indexing failed", "error:", cause)
	doc.Status = commonModels.DocumentFailed
	if err := ix.registry.SetStatus(ctx, doc.Id, commonModels.DocumentFailed, nil); err != nil {
		log.Error("Could not record FAILED status", "error:", err)
	}
	return doc, fmt.Errorf("%w: %w", commonModels.ErrIndexingFailed, cause)
}

func (ix *indexer) DeleteDocument(ctx context.Context, documentId string) error {
	log := ix.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", documentId)

	doc, found := ix.registry.GetDocument(ctx, documentId)
	if !found {
		return commonModels.ErrDocumentNotFound
	}
	if doc.Status == commonModels.DocumentDeleted {
		// repeat deletes are a no-op
		return nil
	}

	if err := ix.vectors.DeleteByDocument(ctx, config.VectorCollectionName, documentId); err != nil {
		log.Error("Error deleting document chunks", "error:", err)
		return err
	}
	if err := ix.registry.SetStatus(ctx, documentId, commonModels.DocumentDeleted, nil); err != nil {
		return err
	}
	log.Info("Deleted document")
	return nil
}
