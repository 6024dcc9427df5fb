package ingest

import (
	"context"
	"os"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/rag/index"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

var logger *logger_i.Logger

// ProcessDocumentIngestion extracts the uploaded file and hands the
// document to the indexer. The uploaded temp file is removed once the
// document is committed.
func ProcessDocumentIngestion(ctx context.Context, job jobModel.Job, ix index.Indexer) jobModel.Job {
	logger = logger_i.NewLogger("Document Ingestion ")
	logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	docName := job.Payload.DocumentName
	docPath := job.Payload.SourcePath

	logger.Debug("Processing document", "filename", docName, "path", docPath)

	job.CurrentStep = jobModel.IngestExtracting
	docType := getDocType(docPath)
	logger.Debug("Processing document", "type", docType)
	if docType == unsupportedDoc {
		logger.Error("Unsupported document type", "path", docPath)
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Unsupported document type"
		return job
	}

	rawPages, err := extractText(docPath, docType)
	if err != nil {
		logger.Error("Error processing document", "error", err)
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Error extracting document content"
		return job
	}
	logger.Debug("Processing document", "Number of raw pages: ", len(rawPages))

	doc := commonModels.Document{
		Id:         job.DocumentId,
		Name:       docName,
		SourceURI:  docPath,
		UploadedAt: time.Now().UTC(),
		RawText:    joinPages(rawPages),
	}

	job.CurrentStep = jobModel.IngestEmbedding
	indexed, err := ix.IndexDocument(ctx, doc)
	if err != nil {
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Error indexing document"
		logger.Error("Error processing document", "error", err)
		return job
	}

	job.Payload.ChunkCount = len(indexed.ChunkIds)
	err = os.Remove(docPath)
	if err != nil {
		logger.Error("Error removing file", "error", err)
	}
	job.Status = jobModel.JobStatusComplete
	job.CurrentStep = jobModel.Complete
	return job
}
