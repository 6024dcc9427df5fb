package commonModels

import "context"

// DocumentRegistry tracks document status and chunk ownership outside
// the vector store. The retriever only surfaces chunks of INDEXED
// documents, which is what keeps half-written chunk sets invisible
// while an upsert is in flight.
type DocumentRegistry interface {
	SaveDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, id string) (Document, bool)
	SetStatus(ctx context.Context, id string, status DocumentStatus, chunkIds []string) error
}
