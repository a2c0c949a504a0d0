package core

import "context"

// Role identifies a chat message author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a structured multi-message completion call.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest describes one chat-completion call. Either Prompt or
// Messages must be set; when both are set Messages wins. A system message
// may appear either in System or as the first entry of Messages.
type CompletionRequest struct {
	System      string
	Prompt      string
	Messages    []Message
	MaxTokens   int64
	Temperature float64
}

// Completer is the chat-completion collaborator. Implementations must be
// safe for concurrent use by many sessions.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Transcriber converts one turn's audio into text. Any failure is treated
// by callers as "no speech detected".
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// TurnStore is the relational persistence boundary the turn loop writes to.
type TurnStore interface {
	SaveConversationTurn(ctx context.Context, userID, userText, aiText string) error
	SaveQuizResult(ctx context.Context, result *AnswerResult) error
}
