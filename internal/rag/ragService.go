package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/domain/sessionModel"
	"github.com/akolanti/DocQA/internal/metrics"
	"github.com/akolanti/DocQA/internal/rag/index"
	"github.com/akolanti/DocQA/internal/rag/ingest"
	"github.com/akolanti/DocQA/internal/rag/llm"
	"github.com/akolanti/DocQA/internal/rag/retrieve"
	"github.com/akolanti/DocQA/internal/rag/rewrite"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - Real work happens down low bruh
  - This is the PUBLIC contract.
  - It defines the "behavior" (what handlers and workers can do).
  - We expose this to keep callers decoupled from our specific logic.

2. service (Private Struct):
  - down low stuff
  - This is the PRIVATE implementation.
  - It holds the "state" (retriever, rewriter, indexer, LLM clients).
  - It is lowercase to prevent external packages from accessing our
    internal dependencies directly.

3. Pointer Receiver (*service):
  - By defining methods on (*service), the struct IMPLICITLY satisfies
    the Service interface.
  - if it quacks like a duck, -it's a duck (Duck Typing)

4. Dependency Injection (NewService):
  - This constructor links the private struct to the public interface.
  - It allows us to swap real DBs for mocks during testing without
    changing the caller's code.
*/

// AnswerResult is what one question-answer exchange produces.
type AnswerResult struct {
	SessionId      string
	Answer         string
	RewrittenQuery string
	Sources        commonModels.RetrievalResult
}

// Service is the single entry point for answering and ingestion.
// Answer is synchronous; ingestion arrives as jobs from the worker pool.
type Service interface {
	Answer(ctx context.Context, sessionId string, utterance string) (AnswerResult, error)
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	DeleteDocument(ctx context.Context, documentId string) error
}

type service struct {
	retriever   retrieve.Retriever
	rewriter    rewrite.Rewriter
	llmProvider llm.Provider
	indexer     index.Indexer
	sessions    sessionModel.SessionStore
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(retriever retrieve.Retriever, rewriter rewrite.Rewriter, llm llm.Provider, indexer index.Indexer, sessions sessionModel.SessionStore) Service {
	return &service{
		retriever:   retriever,
		rewriter:    rewriter,
		llmProvider: llm,
		indexer:     indexer,
		sessions:    sessions,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

func (s *service) Answer(ctx context.Context, sessionId string, utterance string) (AnswerResult, error) {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", sessionId)

	start := time.Now()
	status := "error"
	defer func() { metrics.CaptureJobMetrics(status, time.Since(start)) }()

	// History first: a dead session must fail before any provider call.
	history, err := s.sessions.GetHistory(ctx, sessionId, config.PromptHistoryTurns)
	if err != nil {
		return AnswerResult{}, err
	}

	rewritten := s.executeRewriteStep(ctx, inMethodLogger, history, utterance)

	sources, err := s.executeRetrieveStep(ctx, inMethodLogger, rewritten)
	if err != nil {
		sources = commonModels.RetrievalResult{Degraded: true}
	}

	prompt := BuildAnswerPrompt(history, sources, utterance)

	answer, err := s.executeGenerationStep(ctx, inMethodLogger, prompt)
	if err != nil {
		// history stays untouched, the client can safely retry
		return AnswerResult{}, fmt.Errorf("%w: %w", commonModels.ErrGenerationFailed, err)
	}

	now := time.Now().UTC()
	err = s.sessions.AppendTurns(ctx, sessionId,
		sessionModel.Turn{Role: sessionModel.RoleUser, Content: utterance, Timestamp: now},
		sessionModel.Turn{Role: sessionModel.RoleAssistant, Content: answer, Timestamp: now, RetrievedChunkIds: sources.ChunkIds()},
	)
	if err != nil {
		inMethodLogger.Error("Could not record exchange", "error", err)
		return AnswerResult{}, err
	}

	status = "ok"
	return AnswerResult{
		SessionId:      sessionId,
		Answer:         answer,
		RewrittenQuery: rewritten,
		Sources:        sources,
	}, nil
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("Document_ingestion", time.Since(start)) }()
	j := ingest.ProcessDocumentIngestion(ctx, job, s.indexer)
	if j.Status != jobModel.JobStatusComplete {
		return s.jobError(j, fmt.Errorf("ingest document failed: %s", j.Error.Message), "INGESTION_FAILURE", true)
	}
	return j
}

func (s *service) DeleteDocument(ctx context.Context, documentId string) error {
	return s.indexer.DeleteDocument(ctx, documentId)
}
