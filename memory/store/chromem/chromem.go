// Package chromem backs the memory index with chromem-go, a pure Go
// embedded vector database.
package chromem

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/tripot-labs/companion-engine/memory"
)

// Store implements memory.Index. Each user gets their own collection for
// namespace isolation.
type Store struct {
	db          *chromem.DB
	collections map[string]*chromem.Collection
	mu          sync.RWMutex
	logger      *zap.Logger
}

// New creates an in-process store.
func New(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
		logger:      logger,
	}
}

// NewPersistent creates a store backed by an on-disk database at path, so
// memories survive restarts.
func NewPersistent(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open persistent store: %w", err)
	}
	return &Store{
		db:          db,
		collections: make(map[string]*chromem.Collection),
		logger:      logger,
	}, nil
}

// getOrCreateCollection returns the collection for a user.
func (s *Store) getOrCreateCollection(userID string) (*chromem.Collection, error) {
	s.mu.RLock()
	col, exists := s.collections[userID]
	s.mu.RUnlock()
	if exists {
		return col, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if col, exists := s.collections[userID]; exists {
		return col, nil
	}

	// GetOrCreateCollection picks up collections restored from disk.
	col, err := s.db.GetOrCreateCollection(
		"user_"+userID,
		nil, // no metadata
		nil, // embeddings are provided, no embedding func needed
	)
	if err != nil {
		return nil, fmt.Errorf("get or create collection: %w", err)
	}

	s.collections[userID] = col
	return col, nil
}

// Upsert saves a memory record with its embedding.
func (s *Store) Upsert(ctx context.Context, rec memory.Record) error {
	col, err := s.getOrCreateCollection(rec.UserID)
	if err != nil {
		return err
	}

	doc := chromem.Document{
		ID:        rec.ID,
		Content:   rec.Text,
		Embedding: rec.Embedding,
		Metadata: map[string]string{
			"user_id":     rec.UserID,
			"memory_type": string(rec.Kind),
			"timestamp":   strconv.FormatInt(rec.Timestamp.Unix(), 10),
		},
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}

	s.logger.Debug("memory stored",
		zap.String("id", rec.ID),
		zap.String("user_id", rec.UserID),
		zap.String("kind", string(rec.Kind)))
	return nil
}

// Query retrieves records by vector similarity, filtered to the user.
func (s *Store) Query(ctx context.Context, userID string, embedding []float32, limit int) ([]memory.Result, error) {
	col, err := s.getOrCreateCollection(userID)
	if err != nil {
		return nil, err
	}

	where := map[string]string{"user_id": userID}

	// chromem-go rejects nResults larger than the collection; retry with
	// smaller limits until the query fits.
	var results []chromem.Result
	for currentLimit := limit; currentLimit >= 1; currentLimit-- {
		results, err = col.QueryEmbedding(ctx, embedding, currentLimit, where, nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if currentLimit == 1 {
				return nil, nil // collection is empty
			}
			continue
		}
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]memory.Result, 0, len(results))
	for _, r := range results {
		ts, err := strconv.ParseInt(r.Metadata["timestamp"], 10, 64)
		if err != nil {
			s.logger.Warn("skipping memory with bad timestamp", zap.String("id", r.ID))
			continue
		}
		out = append(out, memory.Result{
			Record: memory.Record{
				ID:        r.ID,
				UserID:    r.Metadata["user_id"],
				Text:      r.Content,
				Kind:      memory.Kind(r.Metadata["memory_type"]),
				Timestamp: time.Unix(ts, 0),
				Embedding: r.Embedding,
			},
			Similarity: float64(r.Similarity),
		})
	}
	return out, nil
}

// isInsufficientDocsError checks if error is due to insufficient documents.
func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
