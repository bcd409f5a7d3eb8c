package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ExpireFunc is invoked when a delivered question's time is up. deliveredAt
// identifies the delivery the expiry was armed for.
type ExpireFunc func(ctx context.Context, category string, questionID int, deliveredAt time.Time) (bool, error)

type expiryKey struct {
	category   string
	questionID int
}

type armedExpiry struct {
	timer       *time.Timer
	deliveredAt time.Time
}

// Scheduler runs one deferred expiry per (category, question), bound to the
// delivery it was armed for. Timers are not persisted; Recover re-arms them
// from the catalog after a restart.
type Scheduler struct {
	delay   time.Duration
	timeout time.Duration
	expire  ExpireFunc
	now     func() time.Time
	logger  *zap.Logger

	mu      sync.Mutex
	timers  map[expiryKey]*armedExpiry
	stopped bool
	wg      sync.WaitGroup
}

func NewScheduler(delay time.Duration, expire ExpireFunc, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		delay:   delay,
		timeout: 5 * time.Second,
		expire:  expire,
		now:     time.Now,
		logger:  logger,
		timers:  make(map[expiryKey]*armedExpiry),
	}
}

// Schedule arms the expiry for a question delivered at deliveredAt. A pending
// expiry for the same delivery is kept; one for an older delivery is replaced.
// It reports whether a timer was armed.
func (s *Scheduler) Schedule(category string, questionID int, deliveredAt time.Time) bool {
	key := expiryKey{category: category, questionID: questionID}
	wait := deliveredAt.Add(s.delay).Sub(s.now())
	if wait < 0 {
		wait = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	if cur, ok := s.timers[key]; ok {
		if !deliveredAt.After(cur.deliveredAt) {
			return false
		}
		if cur.timer.Stop() {
			s.wg.Done()
		}
		delete(s.timers, key)
	}

	entry := &armedExpiry{deliveredAt: deliveredAt}
	s.wg.Add(1)
	entry.timer = time.AfterFunc(wait, func() {
		defer s.wg.Done()
		s.mu.Lock()
		current := s.timers[key] == entry
		if current {
			delete(s.timers, key)
		}
		s.mu.Unlock()
		if current {
			s.fire(key, deliveredAt)
		}
	})
	s.timers[key] = entry
	s.logger.Debug("expiry scheduled",
		zap.String("category", category),
		zap.Int("question_id", questionID),
		zap.Duration("in", wait),
	)
	return true
}

func (s *Scheduler) fire(key expiryKey, deliveredAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.expire(ctx, key.category, key.questionID, deliveredAt); err != nil {
		s.logger.Error("expiry failed",
			zap.String("category", key.category),
			zap.Int("question_id", key.questionID),
			zap.Error(err),
		)
	}
}

// Pending reports how many expiries are armed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// CancelAll drops every pending expiry without running it.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelAllLocked()
}

func (s *Scheduler) cancelAllLocked() int {
	n := 0
	for key, entry := range s.timers {
		if entry.timer.Stop() {
			s.wg.Done()
		}
		delete(s.timers, key)
		n++
	}
	return n
}

// Stop cancels pending expiries, refuses new ones and waits for running ones.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.cancelAllLocked()
	s.mu.Unlock()
	s.wg.Wait()
}
