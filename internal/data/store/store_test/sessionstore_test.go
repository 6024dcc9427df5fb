package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/data/redisStore"
	"github.com/akolanti/DocQA/internal/data/store"
	"github.com/akolanti/DocQA/internal/domain/sessionModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestSessionStore(t *testing.T) *store.RedisSessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.TestSessionStore(redisStore.NewTestStore(client))
}

func TestRedisSessionStore_Lifecycle(t *testing.T) {
	sessions := newTestSessionStore(t)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	session, err := sessions.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.Id == "" {
		t.Fatal("CreateSession returned empty id")
	}
	if session.Status != sessionModel.SessionActive {
		t.Errorf("new session status = %s, want %s", session.Status, sessionModel.SessionActive)
	}

	t.Run("Get Roundtrip", func(t *testing.T) {
		got, err := sessions.GetSession(ctx, session.Id)
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if got.Id != session.Id {
			t.Errorf("id mismatch: got %s want %s", got.Id, session.Id)
		}
	})

	t.Run("Unknown Session", func(t *testing.T) {
		_, err := sessions.GetSession(ctx, "ghost-id")
		if !errors.Is(err, sessionModel.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Append And History Order", func(t *testing.T) {
		turns := []sessionModel.Turn{
			{Role: sessionModel.RoleUser, Content: "what is the refund policy", Timestamp: time.Now().UTC()},
			{Role: sessionModel.RoleAssistant, Content: "thirty days", Timestamp: time.Now().UTC(), RetrievedChunkIds: []string{"c1", "c2"}},
		}
		if err := sessions.AppendTurns(ctx, session.Id, turns...); err != nil {
			t.Fatalf("AppendTurns failed: %v", err)
		}

		history, err := sessions.GetHistory(ctx, session.Id, 0)
		if err != nil {
			t.Fatalf("GetHistory failed: %v", err)
		}
		if len(history) != 2 {
			t.Fatalf("history length = %d, want 2", len(history))
		}
		if history[0].Role != sessionModel.RoleUser || history[1].Role != sessionModel.RoleAssistant {
			t.Error("history not in append order")
		}
		if len(history[1].RetrievedChunkIds) != 2 {
			t.Errorf("provenance lost: got %v", history[1].RetrievedChunkIds)
		}
	})

	t.Run("History Limit Keeps Most Recent", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			err := sessions.AppendTurns(ctx, session.Id,
				sessionModel.Turn{Role: sessionModel.RoleUser, Content: "follow up", Timestamp: time.Now().UTC()})
			if err != nil {
				t.Fatalf("AppendTurns failed: %v", err)
			}
		}
		history, err := sessions.GetHistory(ctx, session.Id, 3)
		if err != nil {
			t.Fatalf("GetHistory failed: %v", err)
		}
		if len(history) != 3 {
			t.Errorf("limited history length = %d, want 3", len(history))
		}
	})

	t.Run("Clear Keeps Session Usable", func(t *testing.T) {
		if err := sessions.Clear(ctx, session.Id); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		history, err := sessions.GetHistory(ctx, session.Id, 0)
		if err != nil {
			t.Fatalf("GetHistory after clear failed: %v", err)
		}
		if len(history) != 0 {
			t.Errorf("history after clear = %d turns, want 0", len(history))
		}
		err = sessions.AppendTurns(ctx, session.Id,
			sessionModel.Turn{Role: sessionModel.RoleUser, Content: "still here", Timestamp: time.Now().UTC()})
		if err != nil {
			t.Errorf("append after clear failed: %v", err)
		}
	})
}

func TestRedisSessionStore_DeleteTombstone(t *testing.T) {
	sessions := newTestSessionStore(t)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	session, err := sessions.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := sessions.Delete(ctx, session.Id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// deleted and never-existed must stay distinguishable
	if _, err := sessions.GetSession(ctx, session.Id); !errors.Is(err, sessionModel.ErrSessionDeleted) {
		t.Errorf("expected ErrSessionDeleted, got %v", err)
	}
	if _, err := sessions.GetHistory(ctx, session.Id, 0); !errors.Is(err, sessionModel.ErrSessionDeleted) {
		t.Errorf("history on deleted session: expected ErrSessionDeleted, got %v", err)
	}
	err = sessions.AppendTurns(ctx, session.Id,
		sessionModel.Turn{Role: sessionModel.RoleUser, Content: "zombie"})
	if !errors.Is(err, sessionModel.ErrSessionDeleted) {
		t.Errorf("append on deleted session: expected ErrSessionDeleted, got %v", err)
	}

	ids, err := sessions.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	for _, id := range ids {
		if id == session.Id {
			t.Error("deleted session still listed")
		}
	}
}

func TestRedisSessionStore_DeleteRacingAppendDoesNotResurrect(t *testing.T) {
	sessions := newTestSessionStore(t)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")

	session, err := sessions.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	// Worst-case interleaving: the appender observes the session as
	// ACTIVE, then the delete lands before the push. The push carries
	// its own status check, so the observation going stale must not
	// matter: the append is rejected and the tombstone stays.
	if _, err := sessions.GetSession(ctx, session.Id); err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if err := sessions.Delete(ctx, session.Id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	err = sessions.AppendTurns(ctx, session.Id,
		sessionModel.Turn{Role: sessionModel.RoleUser, Content: "q"},
		sessionModel.Turn{Role: sessionModel.RoleAssistant, Content: "a"},
	)
	if !errors.Is(err, sessionModel.ErrSessionDeleted) {
		t.Fatalf("append after delete: expected ErrSessionDeleted, got %v", err)
	}

	// the rejected append must leave nothing behind
	if _, err := sessions.GetSession(ctx, session.Id); !errors.Is(err, sessionModel.ErrSessionDeleted) {
		t.Errorf("session resurrected: expected ErrSessionDeleted, got %v", err)
	}
	if _, err := sessions.GetHistory(ctx, session.Id, 0); !errors.Is(err, sessionModel.ErrSessionDeleted) {
		t.Errorf("history readable after rejected append: expected ErrSessionDeleted, got %v", err)
	}

	err = sessions.AppendTurns(ctx, "ghost-id",
		sessionModel.Turn{Role: sessionModel.RoleUser, Content: "q"})
	if !errors.Is(err, sessionModel.ErrSessionNotFound) {
		t.Errorf("append on unknown session: expected ErrSessionNotFound, got %v", err)
	}
}

func TestRedisSessionStore_ConcurrentAppend(t *testing.T) {
	sessions := newTestSessionStore(t)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")

	session, err := sessions.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	// Every append writes a user+assistant pair in one call. With the
	// transactional push the pairs must never interleave.
	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sessions.AppendTurns(ctx, session.Id,
				sessionModel.Turn{Role: sessionModel.RoleUser, Content: "q"},
				sessionModel.Turn{Role: sessionModel.RoleAssistant, Content: "a"},
			)
		}()
	}
	wg.Wait()

	history, err := sessions.GetHistory(ctx, session.Id, 0)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history) != writers*2 {
		t.Fatalf("history length = %d, want %d", len(history), writers*2)
	}
	for i := 0; i < len(history); i += 2 {
		if history[i].Role != sessionModel.RoleUser || history[i+1].Role != sessionModel.RoleAssistant {
			t.Fatalf("turn pair interleaved at offset %d", i)
		}
	}
}

func TestInMemorySessionStore_MatchesRedisSemantics(t *testing.T) {
	sessions := store.InitSessionStore()
	ctx := context.Background()

	session, err := sessions.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	err = sessions.AppendTurns(ctx, session.Id,
		sessionModel.Turn{Role: sessionModel.RoleUser, Content: "hello"})
	if err != nil {
		t.Fatalf("AppendTurns failed: %v", err)
	}
	if err := sessions.Delete(ctx, session.Id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := sessions.GetSession(ctx, session.Id); !errors.Is(err, sessionModel.ErrSessionDeleted) {
		t.Errorf("expected ErrSessionDeleted, got %v", err)
	}
	if _, err := sessions.GetSession(ctx, "ghost"); !errors.Is(err, sessionModel.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}
