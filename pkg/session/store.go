package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"mindline/internal/observability"
)

// Store holds all live sessions behind a single mutex. Handlers and the
// janitor share one instance for the life of the process; nothing is
// persisted across restarts.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewStore creates an empty session store
func NewStore() *Store {
	observability.EnsureRegistered()

	return &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create allocates a new session with a fresh id and inserts it.
func (s *Store) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		LastActivity: now,
		Messages:     []Message{},
	}
	s.sessions[sess.ID] = sess

	observability.RecordSessionCreated()
	observability.SetActiveSessions(len(s.sessions))
	log.Info().Str("session_id", sess.ID).Msg("Session created")

	return sess.clone()
}

// Get returns a copy of the session or ErrSessionNotFound.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess.clone(), nil
}

// TouchAndAppend refreshes last_activity and appends the message in one
// step under the store lock, so concurrent appends on the same id cannot
// interleave or lose entries.
func (s *Store) TouchAndAppend(id string, msg Message) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	now := s.now()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = now
	}
	sess.LastActivity = now
	sess.Messages = append(sess.Messages, msg)

	return sess.clone(), nil
}

// Delete removes the session if present. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return
	}
	delete(s.sessions, id)
	observability.SetActiveSessions(len(s.sessions))
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// IDs returns a point-in-time snapshot of all session ids.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Snapshot returns copies of all sessions for policy evaluation. The
// snapshot may lag concurrent mutations; expiry granularity tolerates that.
func (s *Store) Snapshot() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sess.clone())
	}
	return out
}
