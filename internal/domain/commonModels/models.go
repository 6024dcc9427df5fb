package commonModels

import (
	"errors"
	"time"
)

type DocumentStatus string

const (
	DocumentPending DocumentStatus = "PENDING"
	DocumentIndexed DocumentStatus = "INDEXED"
	DocumentFailed  DocumentStatus = "FAILED"
	DocumentDeleted DocumentStatus = "DELETED"
)

// Document is the unit of ingestion. ChunkIds is filled once the whole
// chunk set has been committed to the vector store.
type Document struct {
	Id         string         `json:"document_id"`
	SourceURI  string         `json:"source_uri"`
	Name       string         `json:"doc_name"`
	RawText    string         `json:"-"`
	UploadedAt time.Time      `json:"uploaded_at"`
	Status     DocumentStatus `json:"status"`
	ChunkIds   []string       `json:"chunk_ids,omitempty"`
}

// Chunk is the unit of retrieval. The embedding itself lives in the
// vector store and is never materialized here.
type Chunk struct {
	Id            string `json:"chunk_id"`
	DocumentId    string `json:"document_id"`
	Text          string `json:"content"`
	SequenceIndex int    `json:"sequence_index"`
}

// RetrievedChunk is one scored hit coming back from the vector store.
type RetrievedChunk struct {
	ChunkId       string  `json:"chunk_id"`
	DocumentId    string  `json:"document_id"`
	Text          string  `json:"content"`
	SequenceIndex int     `json:"sequence_index"`
	Score         float64 `json:"score"`
}

// RetrievalResult is sorted by descending score, ties broken by sequence
// index then document id. Degraded means the caller got no usable
// grounding and the model must be told to say so.
type RetrievalResult struct {
	Chunks   []RetrievedChunk `json:"chunks"`
	Degraded bool             `json:"degraded"`
}

func (r RetrievalResult) ChunkIds() []string {
	ids := make([]string, 0, len(r.Chunks))
	for _, c := range r.Chunks {
		ids = append(ids, c.ChunkId)
	}
	return ids
}

func (r RetrievalResult) Texts() []string {
	texts := make([]string, 0, len(r.Chunks))
	for _, c := range r.Chunks {
		texts = append(texts, c.Text)
	}
	return texts
}

var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrDocumentNotFound = errors.New("document not found")
	ErrIndexingFailed   = errors.New("document indexing failed")
	ErrGenerationFailed = errors.New("answer generation failed")
)
