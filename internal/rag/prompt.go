package rag

import (
	"fmt"
	"strings"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/sessionModel"
)

// BuildAnswerPrompt assembles the grounding context, the trailing
// conversation and the question into one prompt. Each context block is
// tagged so the model can cite which source an answer came from.
func BuildAnswerPrompt(history []sessionModel.Turn, sources commonModels.RetrievalResult, utterance string) string {
	var b strings.Builder

	if len(sources.Chunks) > 0 {
		b.WriteString("Context:\n")
		for i, chunk := range sources.Chunks {
			fmt.Fprintf(&b, "[source %d | doc %s chunk %d]\n%s\n\n",
				i+1, chunk.DocumentId, chunk.SequenceIndex, chunk.Text)
		}
	} else {
		b.WriteString("Context:\n(no relevant documents were found)\n\n")
	}

	if sources.Degraded {
		b.WriteString("No usable grounding is available. Say that you cannot answer from the indexed documents.\n\n")
	}

	if len(history) > 0 {
		recent := history
		if len(recent) > config.PromptHistoryTurns {
			recent = recent[len(recent)-config.PromptHistoryTurns:]
		}
		b.WriteString("Conversation so far:\n")
		for _, turn := range recent {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question: %s\n", utterance)
	return b.String()
}
