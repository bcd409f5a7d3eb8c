package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLedgerPrunerRunOnce(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 5, 0, 0, time.UTC)
	store := mapStore{"already_answered.json": []byte(`{"2024-01-01": {"7": ["AI"]}, "2024-03-10": {"7": ["AI"]}}`)}
	service := NewQuizService(Options{LedgerRetentionDays: 30, Location: time.UTC, Now: func() time.Time { return now }}, store, nil, zap.NewNop())
	defer service.Close()

	NewLedgerPruner(service, "5 0 * * *", time.UTC, zap.NewNop()).RunOnce(context.Background())

	assert.JSONEq(t, `{"2024-03-10": {"7": ["AI"]}}`, string(store["already_answered.json"]))
}

func TestLedgerPrunerStopsWithContext(t *testing.T) {
	service := NewQuizService(Options{}, mapStore{}, nil, zap.NewNop())
	defer service.Close()
	pruner := NewLedgerPruner(service, "@every 1h", nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pruner.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pruner did not stop")
	}
}

func TestLedgerPrunerRejectsBadSchedule(t *testing.T) {
	service := NewQuizService(Options{}, mapStore{}, nil, zap.NewNop())
	defer service.Close()

	err := NewLedgerPruner(service, "every tuesday", time.UTC, zap.NewNop()).Start(context.Background())
	require.Error(t, err)
}
