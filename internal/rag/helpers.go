package rag

import (
	"context"
	"net/http"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/domain/sessionModel"
	"github.com/akolanti/DocQA/internal/metrics"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

func (s *service) executeRewriteStep(ctx context.Context, log *logger_i.Logger, history []sessionModel.Turn, utterance string) string {
	log.Debug("Answer", "Current Step", "rewrite")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("rewrite", time.Since(start)) }()

	return s.rewriter.Rewrite(ctx, history, utterance)
}

func (s *service) executeRetrieveStep(ctx context.Context, log *logger_i.Logger, query string) (commonModels.RetrievalResult, error) {
	log.Debug("Answer", "Current Step", "retrieve")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	return s.retriever.Retrieve(ctx, query)
}

func (s *service) executeGenerationStep(ctx context.Context, log *logger_i.Logger, prompt string) (string, error) {
	log.Debug("Answer", "Current Step", "generate")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	callCtx, cancel := context.WithTimeout(ctx, config.GenerationTimeout)
	defer cancel()

	return s.llmProvider.Generate(callCtx, config.SystemInstruction, prompt)
}
