package app

import (
	"context"
	"time"

	"daily-quiz-service/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SessionRepository abstracts how live quiz sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(handle string) (*Session, bool)
	Delete(handle string)
}

// Options configures a QuizService.
type Options struct {
	// ExpiryDelay forces delivered-but-unanswered questions to used after this long.
	ExpiryDelay time.Duration
	// Categories limits which catalog categories are offered. Empty offers all of them.
	Categories []string
	// Location decides where the answer ledger's day boundary falls.
	Location *time.Location
	// CatalogName and LedgerName locate the two documents in the store.
	CatalogName string
	LedgerName  string
	// LedgerRetentionDays bounds PruneLedger; zero keeps every day.
	LedgerRetentionDays int
	// Now overrides the clock in tests.
	Now func() time.Time
}

// QuizService contains the quiz use cases exposed to the presentation layer.
type QuizService struct {
	lifecycle  *Lifecycle
	tracker    *Tracker
	scheduler  *Scheduler
	sessions   SessionRepository
	categories map[string]struct{}
	retention  int
	now        func() time.Time
	logger     *zap.Logger
}

func NewQuizService(opts Options, store DocumentStore, sessions SessionRepository, logger *zap.Logger) *QuizService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.CatalogName == "" {
		opts.CatalogName = "questions.json"
	}
	if opts.LedgerName == "" {
		opts.LedgerName = "already_answered.json"
	}
	if opts.ExpiryDelay <= 0 {
		opts.ExpiryDelay = 60 * time.Second
	}

	var categories map[string]struct{}
	if len(opts.Categories) > 0 {
		categories = make(map[string]struct{}, len(opts.Categories))
		for _, c := range opts.Categories {
			categories[c] = struct{}{}
		}
	}

	lifecycle := newLifecycleWithClock(store, opts.CatalogName, logger, now)
	scheduler := NewScheduler(opts.ExpiryDelay, lifecycle.ForceExpire, logger)
	scheduler.now = now

	return &QuizService{
		lifecycle:  lifecycle,
		tracker:    newTrackerWithClock(store, opts.LedgerName, opts.Location, logger, now),
		scheduler:  scheduler,
		sessions:   sessions,
		categories: categories,
		retention:  opts.LedgerRetentionDays,
		now:        now,
		logger:     logger,
	}
}

// GetQuiz delivers today's question for category to requesterID and opens a session for it.
func (s *QuizService) GetQuiz(ctx context.Context, category, requesterID string) (domain.Delivery, error) {
	if !s.offers(category) {
		return domain.Delivery{}, domain.ErrCategoryNotFound
	}

	answered, err := s.tracker.HasAnswered(ctx, requesterID, category)
	if err != nil {
		return domain.Delivery{}, err
	}
	if answered {
		return domain.Delivery{}, domain.ErrAlreadyAnsweredToday
	}

	question, _, err := s.lifecycle.Select(ctx, category)
	if err != nil {
		return domain.Delivery{}, err
	}

	deliveredAt := s.now()
	if question.DeliveredAt != nil {
		deliveredAt = *question.DeliveredAt
	}
	s.scheduler.Schedule(category, question.ID, deliveredAt)

	session := newSession(requesterID, category, question, s.now())
	s.sessions.Put(session)

	s.logger.Info("quiz delivered",
		zap.String("category", category),
		zap.Int("question_id", question.ID),
		zap.String("user_id", requesterID),
	)
	return domain.Delivery{Handle: session.Handle(), Category: category, Question: question}, nil
}

// SubmitAnswer resolves the session behind handle with chosenKey. Only the
// requester may answer, and only once. The question stays in use until it expires.
func (s *QuizService) SubmitAnswer(ctx context.Context, handle, callerID, chosenKey string) (domain.Outcome, error) {
	session, ok := s.sessions.Get(handle)
	if !ok {
		return domain.Outcome{}, domain.ErrSessionNotFound
	}

	outcome, err := session.submit(callerID, chosenKey, func() error {
		return s.tracker.MarkAnswered(ctx, session.requesterID, session.category)
	})
	if err != nil {
		return domain.Outcome{}, err
	}

	s.logger.Info("answer recorded",
		zap.String("category", session.category),
		zap.Int("question_id", session.question.ID),
		zap.String("user_id", callerID),
		zap.String("chosen", chosenKey),
		zap.Bool("correct", outcome.Correct),
	)
	return outcome, nil
}

// GetStates counts questions per state for every category.
func (s *QuizService) GetStates(ctx context.Context) (map[string]domain.StateCounts, error) {
	return s.lifecycle.States(ctx)
}

// ResetStates puts every question back to not_used and drops pending expiries.
// Both happen under the catalog lock, so a delivery made right after the reset
// keeps its own expiry.
func (s *QuizService) ResetStates(ctx context.Context) (int, error) {
	cancelled := 0
	count, err := s.lifecycle.ResetAll(ctx, func() {
		cancelled = s.scheduler.CancelAll()
	})
	if err != nil {
		return 0, err
	}
	if cancelled > 0 {
		s.logger.Debug("pending expiries cancelled", zap.Int("count", cancelled))
	}
	return count, nil
}

// ResetAnswerLedger forgets every recorded answer.
func (s *QuizService) ResetAnswerLedger(ctx context.Context) error {
	return s.tracker.Reset(ctx)
}

// Warm loads both documents concurrently so storage problems surface at startup.
func (s *QuizService) Warm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.lifecycle.doc.view(ctx, func(domain.Catalog) {}) })
	g.Go(func() error { return s.tracker.doc.view(ctx, func(domain.Ledger) {}) })
	return g.Wait()
}

// Recover re-arms expiries for questions left in use by a previous run.
func (s *QuizService) Recover(ctx context.Context) (int, error) {
	pending, err := s.lifecycle.inUse(ctx)
	if err != nil {
		return 0, err
	}
	armed := 0
	for _, p := range pending {
		if s.scheduler.Schedule(p.category, p.questionID, p.deliveredAt) {
			armed++
		}
	}
	if armed > 0 {
		s.logger.Info("expiries recovered", zap.Int("count", armed))
	}
	return armed, nil
}

// PruneLedger drops ledger days outside the retention window.
func (s *QuizService) PruneLedger(ctx context.Context) (int, error) {
	return s.tracker.Prune(ctx, s.retention)
}

// PendingExpiries reports how many expiry timers are armed.
func (s *QuizService) PendingExpiries() int {
	return s.scheduler.Pending()
}

// Discard drops a session the presentation layer no longer shows.
func (s *QuizService) Discard(handle string) {
	s.sessions.Delete(handle)
}

// Close stops pending expiries. Questions they covered are re-armed by Recover on next start.
func (s *QuizService) Close() {
	s.scheduler.Stop()
}

func (s *QuizService) offers(category string) bool {
	if s.categories == nil {
		return true
	}
	_, ok := s.categories[category]
	return ok
}
