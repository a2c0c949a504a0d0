package core

// Speaker identifies who produced a transcript entry.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// TranscriptEntry is one utterance in a session's transcript. Entries are
// append-only and insertion order is significant.
type TranscriptEntry struct {
	Speaker Speaker
	Text    string
}

// Line renders the entry in the log format the memory consolidation and
// summarization prompts expect.
func (t TranscriptEntry) Line() string {
	if t.Speaker == SpeakerUser {
		return "사용자: " + t.Text
	}
	return "AI: " + t.Text
}
