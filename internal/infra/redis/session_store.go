package redis

import (
	"context"
	"sync"
	"time"

	"daily-quiz-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions hold a lock and a question snapshot, so the live objects stay in a
//     local map; the resolve-once guarantee is enforced in-process.
//   - Redis carries a liveness marker per handle with the session TTL. A handle whose
//     marker expired is treated as gone and dropped from the local map.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Handle()] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.Handle()), session.RequesterID(), s.ttl).Err()
}

func (s *SessionStore) Get(handle string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[handle]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	n, err := s.client.Exists(context.Background(), s.key(handle)).Result()
	if err == nil && n == 0 {
		s.mu.Lock()
		delete(s.sessions, handle)
		s.mu.Unlock()
		return nil, false
	}
	// a Redis outage keeps local sessions usable
	return session, true
}

func (s *SessionStore) Delete(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, handle)
	_ = s.client.Del(context.Background(), s.key(handle)).Err()
}

func (s *SessionStore) key(handle string) string {
	return "quiz:session:" + handle
}
