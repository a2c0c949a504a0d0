package memory

import (
	"context"
	"time"
)

// Kind distinguishes how a record was produced.
type Kind string

const (
	// KindUtterance stores a short transcript verbatim.
	KindUtterance Kind = "utterance"

	// KindSummary stores an LLM-written summary of a longer session.
	KindSummary Kind = "summary"
)

// Record is one stored memory. Records are write-once: no updates, no
// deletes.
type Record struct {
	ID        string
	UserID    string
	Text      string
	Kind      Kind
	Timestamp time.Time
	Embedding []float32
}

// Result is a record returned from a similarity query.
type Result struct {
	Record
	Similarity float64
}

// Embedder converts text to a fixed-length vector.
// Implementations: openai.Embedder (production), mock.Embedder (tests).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Index is the vector storage backend, scoped by user identifier.
// Implementations: chromem.Store (embedded).
type Index interface {
	// Upsert saves a record with its embedding.
	Upsert(ctx context.Context, rec Record) error

	// Query returns up to limit records for the user, most similar first.
	Query(ctx context.Context, userID string, embedding []float32, limit int) ([]Result, error)
}
