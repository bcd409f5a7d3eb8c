package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"daily-quiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mapSessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func (m *mapSessions) Put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Handle()] = s
}

func (m *mapSessions) Get(handle string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[handle]
	return s, ok
}

func (m *mapSessions) Delete(handle string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, handle)
}

const singleQuestionCatalog = `{"AI": [{"id": 1, "question": "Q", "options": {"A": "a", "B": "b"}, "answer": "B", "state": "not_used"}]}`

func newExpiryService(t *testing.T, delay time.Duration) *QuizService {
	t.Helper()
	store := &lockedMapStore{docs: mapStore{"questions.json": []byte(singleQuestionCatalog)}}
	service := NewQuizService(Options{ExpiryDelay: delay, Location: time.UTC}, store, &mapSessions{sessions: map[string]*Session{}}, zap.NewNop())
	t.Cleanup(service.Close)
	return service
}

// lockedMapStore is a mapStore safe for the scheduler's goroutines.
type lockedMapStore struct {
	mu   sync.Mutex
	docs mapStore
}

func (s *lockedMapStore) Load(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.Load(ctx, name)
}

func (s *lockedMapStore) Save(ctx context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.Save(ctx, name, data)
}

func aiCounts(t *testing.T, s *QuizService) domain.StateCounts {
	t.Helper()
	states, err := s.GetStates(context.Background())
	require.NoError(t, err)
	return states["AI"]
}

func TestDeliveryDuringResetKeepsItsExpiry(t *testing.T) {
	ctx := context.Background()
	s := newExpiryService(t, 50*time.Millisecond)

	_, err := s.GetQuiz(ctx, "AI", "u0")
	require.NoError(t, err)
	require.Equal(t, 1, s.PendingExpiries())

	// A delivery attempted while the reset is in progress has to wait for the
	// reset, including the timer teardown, to finish.
	delivered := make(chan error, 1)
	_, err = s.lifecycle.ResetAll(ctx, func() {
		go func() {
			_, err := s.GetQuiz(ctx, "AI", "u1")
			delivered <- err
		}()
		time.Sleep(30 * time.Millisecond)
		select {
		case <-delivered:
			t.Error("delivery completed inside the reset")
		default:
		}
		s.scheduler.CancelAll()
	})
	require.NoError(t, err)
	require.NoError(t, <-delivered)

	assert.Equal(t, 1, s.PendingExpiries())
	assert.Eventually(t, func() bool {
		return aiCounts(t, s) == domain.StateCounts{Used: 1}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStaleExpiryDoesNotEndNewDelivery(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	s := newExpiryService(t, 80*time.Millisecond)
	s.lifecycle.now = clock
	s.tracker.now = clock
	s.scheduler.now = clock
	s.now = clock

	stale, _, err := s.lifecycle.Select(ctx, "AI")
	require.NoError(t, err)

	_, err = s.ResetStates(ctx)
	require.NoError(t, err)

	mu.Lock()
	now = now.Add(time.Second)
	mu.Unlock()
	fresh, err := s.GetQuiz(ctx, "AI", "u1")
	require.NoError(t, err)
	require.Equal(t, stale.ID, fresh.Question.ID)

	assert.False(t, s.scheduler.Schedule("AI", stale.ID, *stale.DeliveredAt), "late arm for the earlier delivery is ignored")
	assert.Equal(t, 1, s.PendingExpiries())

	expired, err := s.lifecycle.ForceExpire(ctx, "AI", stale.ID, *stale.DeliveredAt)
	require.NoError(t, err)
	assert.False(t, expired)
	assert.Equal(t, domain.StateCounts{InUse: 1}, aiCounts(t, s))

	assert.Eventually(t, func() bool {
		return aiCounts(t, s) == domain.StateCounts{Used: 1}
	}, 2*time.Second, 10*time.Millisecond)
}
