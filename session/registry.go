package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/tripot-labs/companion-engine/quiz"
)

// Registry is the process-wide map from user identifier to active
// session. At most one session exists per user: opening a second session
// for the same identifier replaces the first (last writer wins). All
// registry mutation is serialized by a single mutex; the sessions
// themselves are owned by their connection's turn loop.
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	newEngine func() *quiz.Engine
	logger    *zap.Logger
}

// NewRegistry builds a registry. newEngine creates the quiz engine each
// fresh session exclusively owns.
func NewRegistry(newEngine func() *quiz.Engine, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions:  make(map[string]*Session),
		newEngine: newEngine,
		logger:    logger,
	}
}

// Open creates and stores a new session for the user, replacing any
// existing one. The replaced session, if any, is returned so the caller
// can tear down the superseded connection instead of leaking it.
func (r *Registry) Open(userID string) (s, replaced *Session) {
	s = &Session{UserID: userID, Quiz: r.newEngine()}

	r.mu.Lock()
	replaced = r.sessions[userID]
	r.sessions[userID] = s
	r.mu.Unlock()

	if replaced != nil {
		r.logger.Warn("session replaced by a newer connection", zap.String("user_id", userID))
	}
	return s, replaced
}

// Get returns the user's active session, or nil.
func (r *Registry) Get(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[userID]
}

// Close removes and returns the user's session for teardown processing.
// Closing a non-existent identifier is a no-op returning nil.
func (r *Registry) Close(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessions[userID]
	delete(r.sessions, userID)
	return s
}

// Release removes the entry only if it still maps to s. A connection that
// was replaced must not evict its successor's session during teardown.
func (r *Registry) Release(userID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[userID] == s {
		delete(r.sessions, userID)
	}
}

// Len reports the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
