// Package memory is the long-term memory store: it consolidates session
// transcripts into embedded records and retrieves them with a
// similarity+recency ranked search.
//
// Architecture:
//   - Index: vector storage backend (chromem-go embedded index)
//   - Embedder: text-to-vector conversion (OpenAI API, mock for tests)
//   - Manager: orchestrates consolidation, summarization, and ranked search
//
// Integration with the session loop:
//   - Search runs inside reply generation for ordinary chat turns
//   - Consolidate runs once at session teardown over the whole transcript
//
// Retrieval is fail-open: when the index or embedder is unavailable the
// search returns an empty context rather than blocking the conversation.
package memory
