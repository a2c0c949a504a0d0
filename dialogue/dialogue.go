// Package dialogue classifies transcribed utterances into quiz-control
// commands. The classifier is a pure function over the text: it keeps no
// state and is safe to call concurrently.
package dialogue

import "strings"

// Command is the routing decision for one utterance.
type Command int

const (
	// CommandNone falls through to ordinary chat.
	CommandNone Command = iota

	// CommandStartQuiz begins a new quiz.
	CommandStartQuiz

	// CommandStopQuiz ends the active quiz.
	CommandStopQuiz
)

// Keyword sets, matched by substring on the lower-cased utterance.
// A topic keyword plus an action keyword starts a quiz; a topic keyword
// plus a stop keyword ends one. Start is checked before stop, so an
// utterance matching both starts a quiz.
var (
	topicKeywords  = []string{"문제", "퀴즈"}
	actionKeywords = []string{"풀래", "내줘", "시작", "줘봐"}
	stopKeywords   = []string{"그만", "종료", "안할래"}
)

// Classify maps an utterance to a quiz-control command.
func Classify(utterance string) Command {
	text := strings.ToLower(utterance)

	if !containsAny(text, topicKeywords) {
		return CommandNone
	}
	if containsAny(text, actionKeywords) {
		return CommandStartQuiz
	}
	if containsAny(text, stopKeywords) {
		return CommandStopQuiz
	}
	return CommandNone
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
