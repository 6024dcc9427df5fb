package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id         string            `json:"id" example:"job_cz109"`
	DocumentId string            `json:"document_id" example:"doc_550"`
	Result     Result            `json:"result"`
	Error      *JobOutgoingError `json:"error,omitempty"`
	StartTime  time.Time         `json:"start_time"`
	EndTime    time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type Result struct {
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count,omitempty"`
}

type InitJobResponse struct {
	Id         string `json:"id"`
	DocumentId string `json:"document_id"`
	StatusURL  string `json:"status_url"`
}

type SourceResponse struct {
	ChunkId       string  `json:"chunk_id"`
	DocumentId    string  `json:"document_id"`
	SequenceIndex int     `json:"sequence_index"`
	Score         float64 `json:"score"`
}

type AskResponse struct {
	SessionId        string           `json:"session_id"`
	Question         string           `json:"question"`
	RewrittenQuery   string           `json:"rewritten_query,omitempty"`
	Answer           string           `json:"answer"`
	Sources          []SourceResponse `json:"sources"`
	Degraded         bool             `json:"degraded,omitempty"`
	ProcessingTimeMs int64            `json:"processing_time_ms"`
}

type SessionResponse struct {
	Id           string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	Status       string    `json:"status"`
}

type SessionListResponse struct {
	Sessions []string `json:"sessions"`
}

type TurnResponse struct {
	Role              string    `json:"role"`
	Content           string    `json:"content"`
	Timestamp         time.Time `json:"timestamp"`
	RetrievedChunkIds []string  `json:"retrieved_chunk_ids,omitempty"`
}

type HistoryResponse struct {
	SessionId string         `json:"session_id"`
	Turns     []TurnResponse `json:"turns"`
}

// requests---------------------

type AskRequest struct {
	SessionId string `json:"session_id"`
	Message   string `json:"message" validate:"required"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}

type IngestDocumentRequest struct {
	DocumentName string `json:"document_name" validate:"required"`
}
