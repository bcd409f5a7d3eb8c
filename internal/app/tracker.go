package app

import (
	"context"
	"time"

	"daily-quiz-service/internal/domain"
	"go.uber.org/zap"
)

// Tracker is the only writer of the answer ledger.
type Tracker struct {
	doc    *document[domain.Ledger]
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

func newTrackerWithClock(store DocumentStore, name string, loc *time.Location, logger *zap.Logger, now func() time.Time) *Tracker {
	if loc == nil {
		loc = time.Local
	}
	return &Tracker{
		doc:    newDocument(name, store, logger, func() domain.Ledger { return domain.Ledger{} }, nil),
		loc:    loc,
		now:    now,
		logger: logger,
	}
}

func (t *Tracker) today() string {
	return domain.DateKey(t.now(), t.loc)
}

// HasAnswered reports whether userID already answered category today.
func (t *Tracker) HasAnswered(ctx context.Context, userID, category string) (bool, error) {
	answered := false
	today := t.today()
	err := t.doc.view(ctx, func(l domain.Ledger) {
		answered = l.Has(today, userID, category)
	})
	return answered, err
}

// MarkAnswered records that userID answered category today. Repeats are no-ops.
func (t *Tracker) MarkAnswered(ctx context.Context, userID, category string) error {
	today := t.today()
	return t.doc.update(ctx, func(l *domain.Ledger) (bool, error) {
		return l.Add(today, userID, category), nil
	})
}

// Reset clears the whole ledger.
func (t *Tracker) Reset(ctx context.Context) error {
	err := t.doc.update(ctx, func(l *domain.Ledger) (bool, error) {
		*l = domain.Ledger{}
		return true, nil
	})
	if err == nil {
		t.logger.Info("answer ledger cleared")
	}
	return err
}

// Prune drops date-keys older than keepDays days before today.
func (t *Tracker) Prune(ctx context.Context, keepDays int) (int, error) {
	if keepDays <= 0 {
		return 0, nil
	}
	cutoff := domain.DateKey(t.now().AddDate(0, 0, -keepDays), t.loc)
	removed := 0
	err := t.doc.update(ctx, func(l *domain.Ledger) (bool, error) {
		removed = l.PruneBefore(cutoff)
		return removed > 0, nil
	})
	return removed, err
}
