package core

import (
	"encoding/json"
	"time"
)

// EventType tags an outbound frame.
type EventType string

const (
	// EventAIMessage carries an assistant utterance to display and speak.
	EventAIMessage EventType = "ai_message"

	// EventUserMessage echoes the transcribed user utterance back to the
	// client so it can render what was heard.
	EventUserMessage EventType = "user_message"

	// EventScheduledCall notifies the client that a scheduled conversation
	// time has arrived.
	EventScheduledCall EventType = "scheduled_call"
)

// Event is one outbound frame. Events are serialized as a single JSON
// object per websocket text frame.
type Event struct {
	Type      EventType `json:"type"`
	Content   string    `json:"content"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// NewAIMessage builds an assistant-turn event.
func NewAIMessage(content string) Event {
	return Event{Type: EventAIMessage, Content: content}
}

// NewUserMessage builds a user-turn event.
func NewUserMessage(content string) Event {
	return Event{Type: EventUserMessage, Content: content}
}

// NewScheduledCall builds a call-reminder event stamped with the current time.
func NewScheduledCall(content string, now time.Time) Event {
	return Event{Type: EventScheduledCall, Content: content, Timestamp: now.Format(time.RFC3339)}
}

// Marshal renders the event as its wire frame.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Sender pushes events to a connected user. Implemented by the websocket
// hub; safe for concurrent use. Sending to a user without an open
// connection is a no-op.
type Sender interface {
	Send(userID string, ev Event) error
}
