package redis

import (
	"context"
	"errors"
	"testing"

	"daily-quiz-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStoreRoundTripInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewDocumentStore(newClient(mr))

	if _, err := store.Load(ctx, "questions.json"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected not found before first save, got %v", err)
	}

	payload := "{\n  \"AI\": []\n}\n"
	if err := store.Save(ctx, "questions.json", []byte(payload)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got, _ := mr.Get("quiz:doc:questions.json"); got != payload {
		t.Fatalf("expected raw document under key, got %q", got)
	}

	got, err := store.Load(ctx, "questions.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != payload {
		t.Fatalf("expected %q, got %q", payload, got)
	}
	if ttl := mr.TTL("quiz:doc:questions.json"); ttl != 0 {
		t.Fatalf("expected document without expiry, got %v", ttl)
	}
}

func TestDocumentStorePropagatesRedisErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewDocumentStore(db)
	ctx := context.Background()
	redisErr := errors.New("connection refused")

	t.Run("Load", func(t *testing.T) {
		mock.ExpectGet("quiz:doc:ledger").SetErr(redisErr)
		_, err := store.Load(ctx, "ledger")
		assert.ErrorIs(t, err, redisErr)
		assert.NotErrorIs(t, err, domain.ErrDocumentNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Save", func(t *testing.T) {
		mock.ExpectSet("quiz:doc:ledger", []byte("{}"), 0).SetErr(redisErr)
		err := store.Save(ctx, "ledger", []byte("{}"))
		assert.ErrorIs(t, err, redisErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectGet("quiz:doc:ledger").RedisNil()
		_, err := store.Load(ctx, "ledger")
		require.ErrorIs(t, err, domain.ErrDocumentNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
