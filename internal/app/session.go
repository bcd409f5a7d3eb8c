package app

import (
	"sync"
	"time"

	"daily-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// Session binds one delivered question to the user who requested it.
// It is never persisted.
type Session struct {
	handle      string
	requesterID string
	category    string
	question    domain.Question
	createdAt   time.Time

	mu       sync.Mutex
	resolved bool
}

func newSession(requesterID, category string, question domain.Question, now time.Time) *Session {
	return &Session{
		handle:      uuid.NewString(),
		requesterID: requesterID,
		category:    category,
		question:    question,
		createdAt:   now,
	}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(requesterID, category string, question domain.Question) *Session {
	return newSession(requesterID, category, question, time.Now())
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(requesterID, category string, question domain.Question, now func() time.Time) *Session {
	return newSession(requesterID, category, question, now())
}

func (s *Session) Handle() string { return s.handle }
func (s *Session) RequesterID() string { return s.requesterID }
func (s *Session) Category() string { return s.category }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) Question() domain.Question { return s.question.Clone() }

// Resolved reports whether an answer has been recorded.
func (s *Session) Resolved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

// submit validates and scores an answer. record runs while the session is
// locked; the session only resolves when record succeeds.
func (s *Session) submit(callerID, chosenKey string, record func() error) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolved {
		return domain.Outcome{}, domain.ErrAlreadyAnswered
	}
	if callerID != s.requesterID {
		return domain.Outcome{}, domain.ErrNotYourQuiz
	}
	if !s.question.HasOption(chosenKey) {
		return domain.Outcome{}, domain.ErrUnknownOption
	}
	if err := record(); err != nil {
		return domain.Outcome{}, err
	}
	s.resolved = true

	return domain.Outcome{
		Correct:    chosenKey == s.question.Answer,
		CorrectKey: s.question.Answer,
		ChosenKey:  chosenKey,
	}, nil
}
