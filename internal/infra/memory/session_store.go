package memory

import (
	"sync"
	"time"

	"daily-quiz-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Sessions older than ttl are treated as gone; zero keeps them until deleted.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpiredLocked()
	s.sessions[session.Handle()] = session
}

func (s *SessionStore) Get(handle string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[handle]
	if !ok || s.expired(session) {
		return nil, false
	}
	return session, true
}

func (s *SessionStore) Delete(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, handle)
}

// Len reports how many sessions are held, expired ones included.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) expired(session *app.Session) bool {
	return s.ttl > 0 && s.clock().Sub(session.CreatedAt()) > s.ttl
}

func (s *SessionStore) evictExpiredLocked() {
	for handle, session := range s.sessions {
		if s.expired(session) {
			delete(s.sessions, handle)
		}
	}
}
