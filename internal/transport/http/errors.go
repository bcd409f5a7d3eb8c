package http

import (
	"errors"
	"fmt"

	"daily-quiz-service/internal/domain"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// describeError turns a service error into the code and message shown to the user.
// ok is false for unexpected failures.
func describeError(err error, category string) (payload errorPayload, ok bool) {
	switch {
	case errors.Is(err, domain.ErrAlreadyAnsweredToday):
		return errorPayload{"already_answered_today", fmt.Sprintf("You've already answered the %s quiz today! Come back tomorrow!", category)}, true
	case errors.Is(err, domain.ErrExhaustedCategory):
		return errorPayload{"exhausted_category", fmt.Sprintf("No questions available for %s. All questions have been used!", category)}, true
	case errors.Is(err, domain.ErrCategoryNotFound):
		return errorPayload{"category_not_found", fmt.Sprintf("Category %q is not available.", category)}, true
	case errors.Is(err, domain.ErrAlreadyAnswered):
		return errorPayload{"already_answered", "You've already answered this question!"}, true
	case errors.Is(err, domain.ErrNotYourQuiz):
		return errorPayload{"not_your_quiz", "This is not your quiz! Request your own to play."}, true
	case errors.Is(err, domain.ErrUnknownOption):
		return errorPayload{"unknown_option", "Pick one of the offered options."}, true
	case errors.Is(err, domain.ErrSessionNotFound):
		return errorPayload{"session_not_found", "This quiz is no longer available. Request a new one."}, true
	}
	return errorPayload{"internal", "Something went wrong. Please try again."}, false
}
