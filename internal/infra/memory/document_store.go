package memory

import (
	"context"
	"sync"

	"daily-quiz-service/internal/domain"
)

// DocumentStore keeps documents in process memory (useful for tests/demos).
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string][]byte)}
}

// NewSeededDocumentStore starts with the given raw documents.
func NewSeededDocumentStore(docs map[string][]byte) *DocumentStore {
	s := NewDocumentStore()
	for name, data := range docs {
		s.docs[name] = append([]byte(nil), data...)
	}
	return s
}

func (s *DocumentStore) Load(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[name]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *DocumentStore) Save(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = append([]byte(nil), data...)
	return nil
}
