package rewrite

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/sessionModel"
)

type mockProvider struct {
	OnGenerate func(ctx context.Context, systemInstruction string, prompt string) (string, error)
	calls      int
}

func (m *mockProvider) Generate(ctx context.Context, systemInstruction string, prompt string) (string, error) {
	m.calls++
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, systemInstruction, prompt)
	}
	return "standalone query", nil
}

func someHistory() []sessionModel.Turn {
	return []sessionModel.Turn{
		{Role: sessionModel.RoleUser, Content: "tell me about the gateway service"},
		{Role: sessionModel.RoleAssistant, Content: "the gateway fronts all traffic"},
	}
}

func TestRewrite_EmptyHistorySkipsProvider(t *testing.T) {
	provider := &mockProvider{}
	r := NewRewriter(provider)

	got := r.Rewrite(context.Background(), nil, "what is the gateway")
	if got != "what is the gateway" {
		t.Errorf("got %q, want raw utterance", got)
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times on empty history", provider.calls)
	}
}

func TestRewrite_UsesProviderOutput(t *testing.T) {
	provider := &mockProvider{
		OnGenerate: func(ctx context.Context, systemInstruction string, prompt string) (string, error) {
			return "  \"how does the gateway service scale\"  ", nil
		},
	}
	r := NewRewriter(provider)

	got := r.Rewrite(context.Background(), someHistory(), "how does it scale")
	if got != "how does the gateway service scale" {
		t.Errorf("got %q, sanitization failed", got)
	}
}

func TestRewrite_FallsBackOnError(t *testing.T) {
	tests := []struct {
		name     string
		generate func(ctx context.Context, si string, p string) (string, error)
	}{
		{"provider error", func(ctx context.Context, si string, p string) (string, error) {
			return "", errors.New("rate limited")
		}},
		{"empty output", func(ctx context.Context, si string, p string) (string, error) {
			return "   ", nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRewriter(&mockProvider{OnGenerate: tt.generate})
			got := r.Rewrite(context.Background(), someHistory(), "how does it scale")
			if got != "how does it scale" {
				t.Errorf("got %q, want raw utterance fallback", got)
			}
		})
	}
}

func TestRewrite_AppliesTimeout(t *testing.T) {
	r := NewRewriter(&mockProvider{
		OnGenerate: func(ctx context.Context, si string, p string) (string, error) {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("provider call carries no deadline")
			}
			return "q", nil
		},
	})
	r.Rewrite(context.Background(), someHistory(), "how does it scale")
}

func TestBuildRewritePrompt(t *testing.T) {
	history := someHistory()
	prompt := BuildRewritePrompt(history, "how does it scale")

	if !strings.Contains(prompt, "user: tell me about the gateway service") {
		t.Error("prompt missing user turn")
	}
	if !strings.Contains(prompt, "assistant: the gateway fronts all traffic") {
		t.Error("prompt missing assistant turn")
	}
	if !strings.Contains(prompt, "Latest user message: how does it scale") {
		t.Error("prompt missing latest utterance")
	}
}

func TestBuildRewritePrompt_TruncatesHistory(t *testing.T) {
	history := make([]sessionModel.Turn, 0, config.RewriteHistoryTurns+4)
	for i := 0; i < config.RewriteHistoryTurns+4; i++ {
		content := "old turn"
		if i >= 4 {
			content = "recent turn"
		}
		history = append(history, sessionModel.Turn{Role: sessionModel.RoleUser, Content: content})
	}

	prompt := BuildRewritePrompt(history, "latest")
	if strings.Contains(prompt, "old turn") {
		t.Error("prompt includes turns past the history window")
	}
	if !strings.Contains(prompt, "recent turn") {
		t.Error("prompt dropped in-window turns")
	}
}
