package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/domain/sessionModel"
	"github.com/akolanti/DocQA/internal/rag"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

type mockRagService struct {
	OnAnswer func(ctx context.Context, sessionId string, utterance string) (rag.AnswerResult, error)
}

func (m *mockRagService) Answer(ctx context.Context, sessionId string, utterance string) (rag.AnswerResult, error) {
	if m.OnAnswer != nil {
		return m.OnAnswer(ctx, sessionId, utterance)
	}
	return rag.AnswerResult{SessionId: sessionId, Answer: "mocked answer"}, nil
}

func (m *mockRagService) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	return job
}

func (m *mockRagService) DeleteDocument(ctx context.Context, documentId string) error {
	return nil
}

type mockRetriever struct {
	OnRetrieve func(ctx context.Context, query string) (commonModels.RetrievalResult, error)
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string) (commonModels.RetrievalResult, error) {
	if m.OnRetrieve != nil {
		return m.OnRetrieve(ctx, query)
	}
	return commonModels.RetrievalResult{}, nil
}

type mockSessions struct {
	sessionModel.SessionStore
	createdCount int
}

func (m *mockSessions) CreateSession(ctx context.Context) (sessionModel.Session, error) {
	m.createdCount++
	return sessionModel.Session{Id: "fresh-session", Status: sessionModel.SessionActive}, nil
}

func TestHandleAsk(t *testing.T) {
	logger_i.Init()
	ctx := context.Background()

	t.Run("Uses_Given_Session", func(t *testing.T) {
		sessions := &mockSessions{}
		svc := &mockRagService{
			OnAnswer: func(ctx context.Context, sessionId string, utterance string) (rag.AnswerResult, error) {
				return rag.AnswerResult{
					SessionId:      sessionId,
					Answer:         "Paris",
					RewrittenQuery: "capital of France",
					Sources: commonModels.RetrievalResult{Chunks: []commonModels.RetrievedChunk{
						{ChunkId: "chunk-1", DocumentId: "doc-1", SequenceIndex: 0, Score: 0.9},
					}},
				}, nil
			},
		}
		server := NewServer(svc, &mockRetriever{}, sessions)

		_, output, err := server.handleAsk(ctx, nil, AskInput{SessionId: "session-1", Message: "what is the capital?"})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if output.SessionId != "session-1" {
			t.Errorf("Expected session-1, got %s", output.SessionId)
		}
		if output.Answer != "Paris" {
			t.Errorf("Expected answer Paris, got %s", output.Answer)
		}
		if output.RewrittenQuery != "capital of France" {
			t.Errorf("Expected rewritten query in output, got %q", output.RewrittenQuery)
		}
		if len(output.Sources) != 1 || output.Sources[0].ChunkId != "chunk-1" {
			t.Errorf("Expected one source chunk-1, got %+v", output.Sources)
		}
		if sessions.createdCount != 0 {
			t.Errorf("Expected no session creation, got %d", sessions.createdCount)
		}
	})

	t.Run("Creates_Session_When_Missing", func(t *testing.T) {
		sessions := &mockSessions{}
		server := NewServer(&mockRagService{}, &mockRetriever{}, sessions)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Message: "hello"})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if sessions.createdCount != 1 {
			t.Errorf("Expected one created session, got %d", sessions.createdCount)
		}
		if output.SessionId != "fresh-session" {
			t.Errorf("Expected fresh-session, got %s", output.SessionId)
		}
	})

	t.Run("Answer_Error_Surfaces", func(t *testing.T) {
		svc := &mockRagService{
			OnAnswer: func(ctx context.Context, sessionId string, utterance string) (rag.AnswerResult, error) {
				return rag.AnswerResult{}, sessionModel.ErrSessionDeleted
			},
		}
		server := NewServer(svc, &mockRetriever{}, &mockSessions{})

		_, _, err := server.handleAsk(ctx, nil, AskInput{SessionId: "gone", Message: "hello"})
		if !errors.Is(err, sessionModel.ErrSessionDeleted) {
			t.Errorf("Expected ErrSessionDeleted, got %v", err)
		}
	})
}

func TestHandleSearch(t *testing.T) {
	logger_i.Init()
	ctx := context.Background()

	t.Run("Returns_Chunks", func(t *testing.T) {
		retriever := &mockRetriever{
			OnRetrieve: func(ctx context.Context, query string) (commonModels.RetrievalResult, error) {
				return commonModels.RetrievalResult{Chunks: []commonModels.RetrievedChunk{
					{ChunkId: "chunk-1", DocumentId: "doc-1", Text: "Paris is the capital of France.", Score: 0.95},
				}}, nil
			},
		}
		server := NewServer(&mockRagService{}, retriever, &mockSessions{})

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "capital"})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if output.Count != 1 {
			t.Errorf("Expected count 1, got %d", output.Count)
		}
		if output.Results[0].Content != "Paris is the capital of France." {
			t.Errorf("Expected chunk text in result, got %q", output.Results[0].Content)
		}
	})

	t.Run("Degraded_Flag_Passes_Through", func(t *testing.T) {
		retriever := &mockRetriever{
			OnRetrieve: func(ctx context.Context, query string) (commonModels.RetrievalResult, error) {
				return commonModels.RetrievalResult{Degraded: true}, nil
			},
		}
		server := NewServer(&mockRagService{}, retriever, &mockSessions{})

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "nothing here"})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !output.Degraded || output.Count != 0 {
			t.Errorf("Expected empty degraded result, got %+v", output)
		}
	})
}
