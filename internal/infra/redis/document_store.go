package redis

import (
	"context"
	"errors"
	"fmt"

	"daily-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DocumentStore keeps each document as a plain string key:
//
//	SET quiz:doc:{name} {json}
//
// Keys never expire; the documents are the durable state.
type DocumentStore struct {
	client *redis.Client
}

func NewDocumentStore(client *redis.Client) *DocumentStore {
	return &DocumentStore{client: client}
}

func (s *DocumentStore) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", name, err)
	}
	return data, nil
}

func (s *DocumentStore) Save(ctx context.Context, name string, data []byte) error {
	if err := s.client.Set(ctx, s.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", name, err)
	}
	return nil
}

func (s *DocumentStore) key(name string) string {
	return "quiz:doc:" + name
}
