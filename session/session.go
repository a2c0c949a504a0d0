// Package session owns the live per-connection state: the registry
// mapping user identifiers to sessions, and the orchestrator running each
// connection's turn loop.
package session

import (
	"github.com/tripot-labs/companion-engine/core"
	"github.com/tripot-labs/companion-engine/quiz"
)

// Session is the live state of one user's open connection: an exclusively
// owned quiz engine and the growing transcript. Created on connection
// open, destroyed on close. Only the owning connection's turn loop
// mutates it.
type Session struct {
	UserID string
	Quiz   *quiz.Engine

	transcript []core.TranscriptEntry
}

// Append adds one utterance to the transcript.
func (s *Session) Append(speaker core.Speaker, text string) {
	s.transcript = append(s.transcript, core.TranscriptEntry{Speaker: speaker, Text: text})
}

// TranscriptLines renders the transcript in consolidation log format.
func (s *Session) TranscriptLines() []string {
	lines := make([]string, len(s.transcript))
	for i, e := range s.transcript {
		lines[i] = e.Line()
	}
	return lines
}

// TranscriptLen reports the number of transcript entries.
func (s *Session) TranscriptLen() int { return len(s.transcript) }
