package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/data/redisStore"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

const documentKeyPrefix = "document:"

// RedisDocumentStore is the document registry. Retrieval trusts the
// status recorded here, so a status only flips to INDEXED after the full
// chunk set is committed.
type RedisDocumentStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisDocumentStore(ctx context.Context) *RedisDocumentStore {
	store := redisStore.GetRedisStore(ctx, config.RedisDocumentStore)
	if store == nil {
		return nil
	}
	return &RedisDocumentStore{
		store:  store,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func documentKey(id string) string {
	return documentKeyPrefix + id
}

func (s *RedisDocumentStore) SaveDocument(ctx context.Context, doc commonModels.Document) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", doc.Id)
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, documentKey(doc.Id), data, 0)
	if err != nil {
		log.Error("Error saving document", "error:", err)
		return err
	}
	log.Debug("Saved document", "status", doc.Status)
	return nil
}

func (s *RedisDocumentStore) GetDocument(ctx context.Context, id string) (commonModels.Document, bool) {
	var doc commonModels.Document
	val, err := s.store.Get(ctx, documentKey(id))
	if s.store.IsNil(err) {
		return doc, false
	} else if err != nil {
		s.logger.Error("Error reading document", "documentId", id, "error:", err)
		return doc, false
	}

	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return doc, false
	}
	return doc, true
}

func (s *RedisDocumentStore) SetStatus(ctx context.Context, id string, status commonModels.DocumentStatus, chunkIds []string) error {
	doc, found := s.GetDocument(ctx, id)
	if !found {
		return commonModels.ErrDocumentNotFound
	}
	doc.Status = status
	if chunkIds != nil {
		doc.ChunkIds = chunkIds
	}
	return s.SaveDocument(ctx, doc)
}

func TestDocumentStore(store *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}
