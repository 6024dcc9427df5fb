package store

import (
	"context"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/sessionModel"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

// StartSessionJanitor deletes sessions idle longer than
// config.SessionMaxIdle. It runs until ctx is cancelled.
func StartSessionJanitor(ctx context.Context, sessions sessionModel.SessionStore) {
	logger := logger_i.NewLogger("SessionJanitor")
	ticker := time.NewTicker(config.JanitorInterval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping session janitor")
				return
			case <-ticker.C:
				sweep(ctx, sessions, logger)
			}
		}
	}()
}

func sweep(ctx context.Context, sessions sessionModel.SessionStore, logger *logger_i.Logger) {
	ids, err := sessions.ListSessions(ctx)
	if err != nil {
		logger.Error("Janitor could not list sessions", "error:", err)
		return
	}

	cutoff := time.Now().UTC().Add(-config.SessionMaxIdle)
	removed := 0
	for _, id := range ids {
		session, err := sessions.GetSession(ctx, id)
		if err != nil {
			continue
		}
		if session.LastActiveAt.Before(cutoff) {
			if err := sessions.Delete(ctx, id); err != nil {
				logger.Error("Janitor failed to delete session", "sessionId", id, "error:", err)
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		logger.Info("Janitor removed stale sessions", "count", removed)
	}
}
