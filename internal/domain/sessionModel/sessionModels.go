package sessionModel

import (
	"context"
	"errors"
	"time"
)

type SessionStatus string

const (
	SessionActive  SessionStatus = "ACTIVE"
	SessionCleared SessionStatus = "CLEARED"
	SessionDeleted SessionStatus = "DELETED"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Session struct {
	Id           string        `json:"session_id"`
	CreatedAt    time.Time     `json:"created_at"`
	LastActiveAt time.Time     `json:"last_active_at"`
	Status       SessionStatus `json:"status"`
}

// Turn is immutable once appended. RetrievedChunkIds carries grounding
// provenance on assistant turns.
type Turn struct {
	Role              Role      `json:"role"`
	Content           string    `json:"content"`
	Timestamp         time.Time `json:"timestamp"`
	RetrievedChunkIds []string  `json:"retrieved_chunk_ids,omitempty"`
}

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionDeleted  = errors.New("session deleted")
)

// SessionStore owns all conversation state. AppendTurns must be atomic:
// either every turn in the call lands, in order, or none do. Deleted
// sessions are tombstoned so ErrSessionDeleted stays distinguishable
// from ErrSessionNotFound.
type SessionStore interface {
	CreateSession(ctx context.Context) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	ListSessions(ctx context.Context) ([]string, error)
	GetHistory(ctx context.Context, id string, limit int) ([]Turn, error)
	AppendTurns(ctx context.Context, id string, turns ...Turn) error
	Clear(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
