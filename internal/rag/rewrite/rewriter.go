package rewrite

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/sessionModel"
	"github.com/akolanti/DocQA/internal/rag/llm"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

// Rewriter turns a possibly context-dependent utterance into a
// standalone search query. It never fails the request: any provider
// problem falls back to the raw utterance.
type Rewriter interface {
	Rewrite(ctx context.Context, history []sessionModel.Turn, utterance string) string
}

type rewriter struct {
	provider llm.Provider
	logger   *logger_i.Logger
}

func NewRewriter(provider llm.Provider) Rewriter {
	return &rewriter{
		provider: provider,
		logger:   logger_i.NewLogger("Rewriter"),
	}
}

const rewriteInstruction = "You rewrite the user's latest message into a single standalone search query. " +
	"Resolve pronouns and references using the conversation. " +
	"Reply with the rewritten query only, no explanation and no quotes."

func (r *rewriter) Rewrite(ctx context.Context, history []sessionModel.Turn, utterance string) string {
	log := r.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	// nothing to resolve against on the first turn
	if len(history) == 0 {
		return utterance
	}

	callCtx, cancel := context.WithTimeout(ctx, config.RewriteTimeout)
	defer cancel()

	rewritten, err := r.provider.Generate(callCtx, rewriteInstruction, BuildRewritePrompt(history, utterance))
	if err != nil {
		log.Warn("Rewrite failed, using raw utterance", "error:", err)
		return utterance
	}

	rewritten = sanitize(rewritten)
	if rewritten == "" {
		log.Warn("Rewrite produced empty output, using raw utterance")
		return utterance
	}
	log.Debug("Rewrote query", "rewritten", rewritten)
	return rewritten
}

// BuildRewritePrompt renders the trailing history turns and the new
// utterance into the rewrite prompt.
func BuildRewritePrompt(history []sessionModel.Turn, utterance string) string {
	if len(history) > config.RewriteHistoryTurns {
		history = history[len(history)-config.RewriteHistoryTurns:]
	}

	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, turn := range history {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
	}
	fmt.Fprintf(&b, "\nLatest user message: %s\n", utterance)
	b.WriteString("\nStandalone search query:")
	return b.String()
}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	// models sometimes quote the query despite the instruction
	s = strings.Trim(s, "\"'")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}
