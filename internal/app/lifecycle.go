package app

import (
	"context"
	"time"

	"daily-quiz-service/internal/domain"
	"go.uber.org/zap"
)

// Lifecycle is the only writer of the question catalog. It decides which
// question is live per category and moves questions between states.
type Lifecycle struct {
	doc    *document[domain.Catalog]
	now    func() time.Time
	logger *zap.Logger
}

// pendingExpiry identifies an in-use question and when it went out.
type pendingExpiry struct {
	category    string
	questionID  int
	deliveredAt time.Time
}

func NewLifecycle(store DocumentStore, name string, logger *zap.Logger) *Lifecycle {
	return newLifecycleWithClock(store, name, logger, time.Now)
}

func newLifecycleWithClock(store DocumentStore, name string, logger *zap.Logger, now func() time.Time) *Lifecycle {
	return &Lifecycle{
		doc: newDocument(name, store, logger,
			func() domain.Catalog { return domain.Catalog{} },
			func(c domain.Catalog) { c.Normalize() },
		),
		now:    now,
		logger: logger,
	}
}

// Select returns today's question for category. An in-use question is returned
// as is (only a missing delivery time gets stamped); otherwise the first unused
// question in catalog order is put in use.
// fresh reports whether this call put the question in use.
func (l *Lifecycle) Select(ctx context.Context, category string) (q domain.Question, fresh bool, err error) {
	err = l.doc.update(ctx, func(c *domain.Catalog) (bool, error) {
		questions, ok := (*c)[category]
		if !ok {
			return false, domain.ErrCategoryNotFound
		}
		if i := c.FirstWithState(category, domain.StateInUse); i >= 0 {
			stamped := false
			if questions[i].DeliveredAt == nil {
				at := l.now()
				questions[i].DeliveredAt = &at
				stamped = true
			}
			q = questions[i].Clone()
			return stamped, nil
		}
		i := c.FirstWithState(category, domain.StateNotUsed)
		if i < 0 {
			return false, domain.ErrExhaustedCategory
		}
		at := l.now()
		questions[i].State = domain.StateInUse
		questions[i].DeliveredAt = &at
		q = questions[i].Clone()
		fresh = true
		return true, nil
	})
	if err != nil {
		return domain.Question{}, false, err
	}
	if fresh {
		l.logger.Info("question put in use", zap.String("category", category), zap.Int("question_id", q.ID))
	}
	return q, fresh, nil
}

// ForceExpire marks the question used if it is still in use from the delivery made
// at deliveredAt. A question re-delivered since then, or not in use, is left alone.
// An in-use question with no recorded delivery time matches any deliveredAt.
func (l *Lifecycle) ForceExpire(ctx context.Context, category string, questionID int, deliveredAt time.Time) (bool, error) {
	expired := false
	err := l.doc.update(ctx, func(c *domain.Catalog) (bool, error) {
		i := c.Find(category, questionID)
		if i < 0 {
			return false, nil
		}
		q := &(*c)[category][i]
		if q.State != domain.StateInUse {
			return false, nil
		}
		if q.DeliveredAt != nil && !q.DeliveredAt.Equal(deliveredAt) {
			return false, nil
		}
		q.State = domain.StateUsed
		expired = true
		return true, nil
	})
	if err != nil {
		return false, err
	}
	if expired {
		l.logger.Info("question expired", zap.String("category", category), zap.Int("question_id", questionID))
	}
	return expired, nil
}

// ResetAll puts every question back to not_used and returns how many were reset.
// onReset, when set, runs before the catalog is released so no selection can
// slip in between the reset and whatever onReset tears down.
func (l *Lifecycle) ResetAll(ctx context.Context, onReset func()) (int, error) {
	count := 0
	err := l.doc.updateThen(ctx, func(c *domain.Catalog) (bool, error) {
		for _, questions := range *c {
			for i := range questions {
				questions[i].State = domain.StateNotUsed
				questions[i].DeliveredAt = nil
				count++
			}
		}
		return count > 0, nil
	}, onReset)
	if err != nil {
		return 0, err
	}
	l.logger.Info("question states reset", zap.Int("count", count))
	return count, nil
}

// States tallies every category by state.
func (l *Lifecycle) States(ctx context.Context) (map[string]domain.StateCounts, error) {
	var out map[string]domain.StateCounts
	err := l.doc.view(ctx, func(c domain.Catalog) {
		out = c.Counts()
	})
	return out, err
}

// inUse lists every in-use question. A missing delivery time is stamped as now
// so later expiries and re-deliveries agree on it.
func (l *Lifecycle) inUse(ctx context.Context) ([]pendingExpiry, error) {
	var out []pendingExpiry
	err := l.doc.update(ctx, func(c *domain.Catalog) (bool, error) {
		now := l.now()
		stamped := false
		for category, questions := range *c {
			for i := range questions {
				q := &questions[i]
				if q.State != domain.StateInUse {
					continue
				}
				if q.DeliveredAt == nil {
					at := now
					q.DeliveredAt = &at
					stamped = true
				}
				out = append(out, pendingExpiry{category: category, questionID: q.ID, deliveredAt: *q.DeliveredAt})
			}
		}
		return stamped, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
