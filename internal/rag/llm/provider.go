package llm

import (
	"context"
	"errors"
)

// ErrContentFiltered means the provider refused to answer on safety
// grounds. It is structural, never retried.
var ErrContentFiltered = errors.New("generation blocked by content filter")

type Provider interface {
	Generate(ctx context.Context, systemInstruction string, prompt string) (string, error)
}
