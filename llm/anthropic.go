// Package llm provides the chat-completion collaborator backed by the
// Anthropic Messages API.
package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tripot-labs/companion-engine/core"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 1024
)

// Completer implements core.Completer over the Anthropic API. Safe for
// concurrent use by many sessions.
type Completer struct {
	client anthropic.Client
	model  string
}

// Config configures the completer.
type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the API endpoint, used by tests.
	BaseURL string
}

// NewCompleter builds an Anthropic-backed completer.
func NewCompleter(cfg Config) *Completer {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Completer{client: anthropic.NewClient(opts...), model: model}
}

// Complete runs one completion call. It accepts either a single free-text
// prompt or a structured message list; system text may come through
// req.System or a leading system-role message.
func (c *Completer) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	system := req.System
	messages := req.Messages
	if len(messages) == 0 {
		if req.Prompt == "" {
			return "", fmt.Errorf("completion request needs a prompt or messages")
		}
		messages = []core.Message{{Role: core.RoleUser, Content: req.Prompt}}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: req.MaxTokens,
	}
	if params.MaxTokens == 0 {
		params.MaxTokens = defaultMaxTokens
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			if system == "" {
				system = m.Content
			} else {
				system += "\n" + m.Content
			}
		case core.RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("completion call: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}
