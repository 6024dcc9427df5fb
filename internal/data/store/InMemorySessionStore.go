package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/DocQA/internal/domain/sessionModel"
	"github.com/google/uuid"
)

// InMemorySessionStore is the fallback when Redis is offline. The single
// lock makes AppendTurns all-or-nothing without a transaction.
type InMemorySessionStore struct {
	sessionLock *sync.RWMutex
	sessionMap  map[string]sessionModel.Session
	historyMap  map[string][]sessionModel.Turn
}

func InitSessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		sessionLock: new(sync.RWMutex),
		sessionMap:  make(map[string]sessionModel.Session),
		historyMap:  make(map[string][]sessionModel.Turn),
	}
}

func (store *InMemorySessionStore) CreateSession(ctx context.Context) (sessionModel.Session, error) {
	store.sessionLock.Lock()
	defer store.sessionLock.Unlock()

	now := time.Now().UTC()
	session := sessionModel.Session{
		Id:           uuid.NewString(),
		CreatedAt:    now,
		LastActiveAt: now,
		Status:       sessionModel.SessionActive,
	}
	store.sessionMap[session.Id] = session
	store.historyMap[session.Id] = make([]sessionModel.Turn, 0)
	return session, nil
}

func (store *InMemorySessionStore) GetSession(ctx context.Context, id string) (sessionModel.Session, error) {
	store.sessionLock.RLock()
	defer store.sessionLock.RUnlock()
	return store.lookup(id)
}

// callers hold at least the read lock
func (store *InMemorySessionStore) lookup(id string) (sessionModel.Session, error) {
	session, ok := store.sessionMap[id]
	if !ok {
		return sessionModel.Session{}, sessionModel.ErrSessionNotFound
	}
	if session.Status == sessionModel.SessionDeleted {
		return sessionModel.Session{}, sessionModel.ErrSessionDeleted
	}
	return session, nil
}

func (store *InMemorySessionStore) ListSessions(ctx context.Context) ([]string, error) {
	store.sessionLock.RLock()
	defer store.sessionLock.RUnlock()

	ids := make([]string, 0, len(store.sessionMap))
	for id, session := range store.sessionMap {
		if session.Status == sessionModel.SessionDeleted {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (store *InMemorySessionStore) GetHistory(ctx context.Context, id string, limit int) ([]sessionModel.Turn, error) {
	store.sessionLock.RLock()
	defer store.sessionLock.RUnlock()

	if _, err := store.lookup(id); err != nil {
		return nil, err
	}
	history := store.historyMap[id]
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]sessionModel.Turn, len(history))
	copy(out, history)
	return out, nil
}

func (store *InMemorySessionStore) AppendTurns(ctx context.Context, id string, turns ...sessionModel.Turn) error {
	store.sessionLock.Lock()
	defer store.sessionLock.Unlock()

	session, err := store.lookup(id)
	if err != nil {
		return err
	}
	store.historyMap[id] = append(store.historyMap[id], turns...)
	session.LastActiveAt = time.Now().UTC()
	session.Status = sessionModel.SessionActive
	store.sessionMap[id] = session
	return nil
}

func (store *InMemorySessionStore) Clear(ctx context.Context, id string) error {
	store.sessionLock.Lock()
	defer store.sessionLock.Unlock()

	session, err := store.lookup(id)
	if err != nil {
		return err
	}
	store.historyMap[id] = make([]sessionModel.Turn, 0)
	session.LastActiveAt = time.Now().UTC()
	session.Status = sessionModel.SessionCleared
	store.sessionMap[id] = session
	return nil
}

func (store *InMemorySessionStore) Delete(ctx context.Context, id string) error {
	store.sessionLock.Lock()
	defer store.sessionLock.Unlock()

	session, err := store.lookup(id)
	if err != nil {
		return err
	}
	delete(store.historyMap, id)
	session.Status = sessionModel.SessionDeleted
	store.sessionMap[id] = session
	return nil
}
