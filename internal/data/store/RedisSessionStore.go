package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/data/redisStore"
	"github.com/akolanti/DocQA/internal/domain/sessionModel"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"github.com/google/uuid"
)

const sessionKeyPrefix = "session:"
const historyKeyPrefix = "chat_history:"

// RedisSessionStore keeps one metadata hash per session and one list of
// JSON turns. Deleting a session drops the list but keeps the hash as a
// tombstone, so a deleted id never reads as unknown.
type RedisSessionStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisSessionStore(ctx context.Context) *RedisSessionStore {
	store := redisStore.GetRedisStore(ctx, config.RedisSessionStore)
	if store == nil {
		return nil
	}
	return &RedisSessionStore{
		store:  store,
		logger: logger_i.NewLogger("SessionStore"),
	}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func historyKey(id string) string {
	return historyKeyPrefix + id
}

func (s *RedisSessionStore) CreateSession(ctx context.Context) (sessionModel.Session, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	now := time.Now().UTC()
	session := sessionModel.Session{
		Id:           uuid.NewString(),
		CreatedAt:    now,
		LastActiveAt: now,
		Status:       sessionModel.SessionActive,
	}

	err := s.store.HashSet(ctx, sessionKey(session.Id), metaFields(session))
	if err != nil {
		log.Error("Failed to create session", "err", err)
		return sessionModel.Session{}, err
	}
	log.Debug("Created session", "sessionId", session.Id)
	return session, nil
}

func (s *RedisSessionStore) GetSession(ctx context.Context, id string) (sessionModel.Session, error) {
	fields, err := s.store.HashGetAll(ctx, sessionKey(id))
	if err != nil {
		return sessionModel.Session{}, err
	}
	if len(fields) == 0 {
		return sessionModel.Session{}, sessionModel.ErrSessionNotFound
	}

	session := sessionFromFields(id, fields)
	if session.Status == sessionModel.SessionDeleted {
		return sessionModel.Session{}, sessionModel.ErrSessionDeleted
	}
	return session, nil
}

func (s *RedisSessionStore) ListSessions(ctx context.Context) ([]string, error) {
	keys, err := s.store.ScanKeys(ctx, sessionKeyPrefix+"*")
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		id := strings.TrimPrefix(key, sessionKeyPrefix)
		if _, err := s.GetSession(ctx, id); err != nil {
			// tombstones and races with deletion are not listed
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *RedisSessionStore) GetHistory(ctx context.Context, id string, limit int) ([]sessionModel.Turn, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", id)
	if _, err := s.GetSession(ctx, id); err != nil {
		return nil, err
	}

	raw, err := s.store.ListGetLast(ctx, historyKey(id), int64(limit))
	if err != nil {
		log.Error("Error getting history", "error:", err)
		return nil, err
	}

	turns := make([]sessionModel.Turn, 0, len(raw))
	for _, entry := range raw {
		var turn sessionModel.Turn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			log.Error("Corrupt turn in history, skipping", "error:", err)
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *RedisSessionStore) AppendTurns(ctx context.Context, id string, turns ...sessionModel.Turn) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", id)
	if len(turns) == 0 {
		_, err := s.GetSession(ctx, id)
		return err
	}

	values := make([]interface{}, 0, len(turns))
	for _, turn := range turns {
		data, err := json.Marshal(turn)
		if err != nil {
			log.Error("Error marshalling turn", "error:", err)
			return err
		}
		values = append(values, data)
	}

	meta := map[string]interface{}{
		"last_active_at": time.Now().UTC().Format(time.RFC3339Nano),
		"status":         string(sessionModel.SessionActive),
	}

	// The deleted check rides inside the script. A separate GetSession
	// here would let a concurrent Delete land between check and push,
	// and the push would then resurrect the tombstoned session.
	res, err := s.store.ListPushWithMetaGuarded(ctx, historyKey(id), sessionKey(id),
		"status", string(sessionModel.SessionDeleted), meta, values...)
	if err != nil {
		log.Error("Error appending turns", "error:", err)
		return err
	}
	switch res {
	case redisStore.GuardedPushMissing:
		return sessionModel.ErrSessionNotFound
	case redisStore.GuardedPushRejected:
		return sessionModel.ErrSessionDeleted
	}
	log.Debug("Appended turns", "count", len(turns))
	return nil
}

func (s *RedisSessionStore) Clear(ctx context.Context, id string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", id)
	if _, err := s.GetSession(ctx, id); err != nil {
		return err
	}

	if err := s.store.Del(ctx, historyKey(id)); err != nil {
		log.Error("Error clearing history", "error:", err)
		return err
	}
	return s.store.HashSet(ctx, sessionKey(id), map[string]interface{}{
		"last_active_at": time.Now().UTC().Format(time.RFC3339Nano),
		"status":         string(sessionModel.SessionCleared),
	})
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", id)
	if _, err := s.GetSession(ctx, id); err != nil {
		return err
	}

	if err := s.store.Del(ctx, historyKey(id)); err != nil {
		log.Error("Error deleting history", "error:", err)
		return err
	}
	err := s.store.HashSet(ctx, sessionKey(id), map[string]interface{}{
		"status": string(sessionModel.SessionDeleted),
	})
	if err != nil {
		log.Error("Error tombstoning session", "error:", err)
	}
	return err
}

func TestSessionStore(store *redisStore.Store) *RedisSessionStore {
	return &RedisSessionStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}

func metaFields(session sessionModel.Session) map[string]interface{} {
	return map[string]interface{}{
		"created_at":     session.CreatedAt.Format(time.RFC3339Nano),
		"last_active_at": session.LastActiveAt.Format(time.RFC3339Nano),
		"status":         string(session.Status),
	}
}

func sessionFromFields(id string, fields map[string]string) sessionModel.Session {
	createdAt, _ := time.Parse(time.RFC3339Nano, fields["created_at"])
	lastActiveAt, _ := time.Parse(time.RFC3339Nano, fields["last_active_at"])
	return sessionModel.Session{
		Id:           id,
		CreatedAt:    createdAt,
		LastActiveAt: lastActiveAt,
		Status:       sessionModel.SessionStatus(fields["status"]),
	}
}
