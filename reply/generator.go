// Package reply generates the assistant's chat replies: it grounds the
// persona prompt in retrieved long-term memories and calls the
// chat-completion collaborator.
package reply

import (
	"context"

	"go.uber.org/zap"

	"github.com/tripot-labs/companion-engine/core"
)

// Searcher retrieves memory context for a query. Implemented by
// memory.Manager; retrieval is fail-open and never returns an error.
type Searcher interface {
	Search(ctx context.Context, userID, query string, topK int) string
}

// Generator produces natural-language replies for ordinary chat turns.
// Stateless; safe for concurrent use by many sessions.
type Generator struct {
	completer core.Completer
	memories  Searcher
	prompts   *PromptConfig
	logger    *zap.Logger
}

// NewGenerator builds a reply generator. A nil memories searcher disables
// memory grounding.
func NewGenerator(completer core.Completer, memories Searcher, prompts *PromptConfig, logger *zap.Logger) *Generator {
	if prompts == nil {
		cfg := defaultPersona
		prompts = &cfg
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		completer: completer,
		memories:  memories,
		prompts:   prompts,
		logger:    logger,
	}
}

// Reply builds the memory-grounded prompt for the utterance and returns
// the completion.
func (g *Generator) Reply(ctx context.Context, userID, userMessage string) (string, error) {
	var memCtx string
	if g.memories != nil {
		memCtx = g.memories.Search(ctx, userID, userMessage, 0)
	}

	prompt := g.prompts.buildPrompt(memCtx, userMessage)
	text, err := g.completer.Complete(ctx, core.CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   150,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	g.logger.Debug("reply generated",
		zap.String("user_id", userID),
		zap.Bool("memory_grounded", memCtx != ""))
	return text, nil
}
