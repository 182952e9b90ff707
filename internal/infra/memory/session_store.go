package memory

import (
	"sync"

	"streakpeaked-service/internal/engine"
)

// SessionStore tracks the live engine session per user. Each websocket
// connection owns its session; the store lets the rest of the service see
// (and replace) the active run for a user.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*engine.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*engine.Session),
	}
}

func (s *SessionStore) Put(userID string, session *engine.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session
}

func (s *SessionStore) Get(userID string) (*engine.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok
}

// Release removes the user's entry only if it still holds session. A closing
// connection whose session was already replaced leaves the replacement alone.
func (s *SessionStore) Release(userID string, session *engine.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[userID] == session {
		delete(s.sessions, userID)
	}
}
