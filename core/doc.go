// Package core holds the shared types of the companion engine: outbound
// events, transcript entries, quiz records, and the narrow interfaces the
// session loop consumes from its external collaborators (speech-to-text,
// chat completion, relational persistence).
//
// Nothing in core performs I/O. Implementations live in their own packages
// (llm, speech, store) and are injected at construction time.
package core
