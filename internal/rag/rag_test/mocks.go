package rag_test

import (
	"context"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/sessionModel"
)

// MockRetriever implements retrieve.Retriever
type MockRetriever struct {
	OnRetrieve func(ctx context.Context, query string) (commonModels.RetrievalResult, error)
}

func (m *MockRetriever) Retrieve(ctx context.Context, query string) (commonModels.RetrievalResult, error) {
	if m.OnRetrieve != nil {
		return m.OnRetrieve(ctx, query)
	}
	return commonModels.RetrievalResult{
		Chunks: []commonModels.RetrievedChunk{
			{ChunkId: "chunk-1", DocumentId: "doc-1", Text: "default context", Score: 0.9},
		},
	}, nil
}

// MockRewriter implements rewrite.Rewriter
type MockRewriter struct {
	OnRewrite func(ctx context.Context, history []sessionModel.Turn, utterance string) string
}

func (m *MockRewriter) Rewrite(ctx context.Context, history []sessionModel.Turn, utterance string) string {
	if m.OnRewrite != nil {
		return m.OnRewrite(ctx, history, utterance)
	}
	return utterance
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, systemInstruction string, prompt string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, systemInstruction string, prompt string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, systemInstruction, prompt)
	}
	return "mocked llm response", nil
}

// MockIndexer implements index.Indexer
type MockIndexer struct {
	OnIndexDocument  func(ctx context.Context, doc commonModels.Document) (commonModels.Document, error)
	OnDeleteDocument func(ctx context.Context, documentId string) error
}

func (m *MockIndexer) IndexDocument(ctx context.Context, doc commonModels.Document) (commonModels.Document, error) {
	if m.OnIndexDocument != nil {
		return m.OnIndexDocument(ctx, doc)
	}
	doc.Status = commonModels.DocumentIndexed
	doc.ChunkIds = []string{"chunk-1"}
	return doc, nil
}

func (m *MockIndexer) DeleteDocument(ctx context.Context, documentId string) error {
	if m.OnDeleteDocument != nil {
		return m.OnDeleteDocument(ctx, documentId)
	}
	return nil
}

// MockSessionStore wraps a real in-memory history so tests can assert
// what got recorded. OnAppendTurns lets a test force append failures.
type MockSessionStore struct {
	Histories     map[string][]sessionModel.Turn
	OnGetHistory  func(ctx context.Context, id string, limit int) ([]sessionModel.Turn, error)
	OnAppendTurns func(ctx context.Context, id string, turns ...sessionModel.Turn) error
}

func NewMockSessionStore(ids ...string) *MockSessionStore {
	histories := make(map[string][]sessionModel.Turn)
	for _, id := range ids {
		histories[id] = []sessionModel.Turn{}
	}
	return &MockSessionStore{Histories: histories}
}

func (m *MockSessionStore) CreateSession(ctx context.Context) (sessionModel.Session, error) {
	return sessionModel.Session{Id: "new-session"}, nil
}

func (m *MockSessionStore) GetSession(ctx context.Context, id string) (sessionModel.Session, error) {
	if _, ok := m.Histories[id]; !ok {
		return sessionModel.Session{}, sessionModel.ErrSessionNotFound
	}
	return sessionModel.Session{Id: id, Status: sessionModel.SessionActive}, nil
}

func (m *MockSessionStore) ListSessions(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.Histories))
	for id := range m.Histories {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MockSessionStore) GetHistory(ctx context.Context, id string, limit int) ([]sessionModel.Turn, error) {
	if m.OnGetHistory != nil {
		return m.OnGetHistory(ctx, id, limit)
	}
	history, ok := m.Histories[id]
	if !ok {
		return nil, sessionModel.ErrSessionNotFound
	}
	return history, nil
}

func (m *MockSessionStore) AppendTurns(ctx context.Context, id string, turns ...sessionModel.Turn) error {
	if m.OnAppendTurns != nil {
		return m.OnAppendTurns(ctx, id, turns...)
	}
	if _, ok := m.Histories[id]; !ok {
		return sessionModel.ErrSessionNotFound
	}
	m.Histories[id] = append(m.Histories[id], turns...)
	return nil
}

func (m *MockSessionStore) Clear(ctx context.Context, id string) error {
	if _, ok := m.Histories[id]; !ok {
		return sessionModel.ErrSessionNotFound
	}
	m.Histories[id] = []sessionModel.Turn{}
	return nil
}

func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	delete(m.Histories, id)
	return nil
}
