package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/DocQA/internal/api"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/domain/sessionModel"
	"github.com/akolanti/DocQA/internal/rag"
)

func ToInitJobResponse(id string, documentId string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:         id,
		DocumentId: documentId,
		StatusURL:  fmt.Sprintf("status/%s", id), //pass "status/job.Id"
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:     string(job.Status),
		ChunkCount: job.Payload.ChunkCount,
	}

	return api.JobResponse{
		Id:         job.Id,
		DocumentId: job.DocumentId,
		StartTime:  job.CreatedTime,
		EndTime:    job.EndTime,
		Error:      errorPtr,
		Result:     result,
	}
}

func ToAskResponse(question string, result rag.AnswerResult) api.AskResponse {
	sources := make([]api.SourceResponse, 0, len(result.Sources.Chunks))
	for _, chunk := range result.Sources.Chunks {
		sources = append(sources, api.SourceResponse{
			ChunkId:       chunk.ChunkId,
			DocumentId:    chunk.DocumentId,
			SequenceIndex: chunk.SequenceIndex,
			Score:         chunk.Score,
		})
	}

	rewritten := result.RewrittenQuery
	if rewritten == question {
		rewritten = ""
	}

	return api.AskResponse{
		SessionId:      result.SessionId,
		Question:       question,
		RewrittenQuery: rewritten,
		Answer:         result.Answer,
		Sources:        sources,
		Degraded:       result.Sources.Degraded,
	}
}

func ToSessionResponse(session sessionModel.Session) api.SessionResponse {
	return api.SessionResponse{
		Id:           session.Id,
		CreatedAt:    session.CreatedAt,
		LastActiveAt: session.LastActiveAt,
		Status:       string(session.Status),
	}
}

func ToHistoryResponse(sessionId string, turns []sessionModel.Turn) api.HistoryResponse {
	out := make([]api.TurnResponse, 0, len(turns))
	for _, turn := range turns {
		out = append(out, api.TurnResponse{
			Role:              string(turn.Role),
			Content:           turn.Content,
			Timestamp:         turn.Timestamp,
			RetrievedChunkIds: turn.RetrievedChunkIds,
		})
	}
	return api.HistoryResponse{SessionId: sessionId, Turns: out}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
