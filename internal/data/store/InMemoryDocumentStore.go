package store

import (
	"context"
	"sync"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
)

type InMemoryDocumentStore struct {
	docMutex *sync.RWMutex
	docMap   map[string]commonModels.Document
}

func InitDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		docMutex: new(sync.RWMutex),
		docMap:   make(map[string]commonModels.Document),
	}
}

func (store *InMemoryDocumentStore) SaveDocument(ctx context.Context, doc commonModels.Document) error {
	store.docMutex.Lock()
	defer store.docMutex.Unlock()
	store.docMap[doc.Id] = doc
	return nil
}

func (store *InMemoryDocumentStore) GetDocument(ctx context.Context, id string) (commonModels.Document, bool) {
	store.docMutex.RLock()
	defer store.docMutex.RUnlock()
	doc, found := store.docMap[id]
	return doc, found
}

func (store *InMemoryDocumentStore) SetStatus(ctx context.Context, id string, status commonModels.DocumentStatus, chunkIds []string) error {
	store.docMutex.Lock()
	defer store.docMutex.Unlock()

	doc, found := store.docMap[id]
	if !found {
		return commonModels.ErrDocumentNotFound
	}
	doc.Status = status
	if chunkIds != nil {
		doc.ChunkIds = chunkIds
	}
	store.docMap[id] = doc
	return nil
}
