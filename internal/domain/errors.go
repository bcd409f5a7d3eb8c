package domain

import "errors"

var (
	// ErrCategoryNotFound is returned when a category is unknown to the catalog or not offered.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrExhaustedCategory indicates every question of a category has been used.
	ErrExhaustedCategory = errors.New("no questions left in category")
	// ErrAlreadyAnsweredToday is returned when a requester already answered the category today.
	ErrAlreadyAnsweredToday = errors.New("category already answered today")
	// ErrAlreadyAnswered is returned on a second submit for the same session.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrNotYourQuiz is returned when someone other than the requester submits an answer.
	ErrNotYourQuiz = errors.New("quiz belongs to another user")
	// ErrUnknownOption indicates the chosen key is not one of the question's options.
	ErrUnknownOption = errors.New("option not found")
	// ErrSessionNotFound is returned when a session handle is unknown or expired.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrDocumentNotFound is returned by document stores when nothing was saved under a name yet.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrCorruptStore marks stored content that could not be decoded. It is logged, never returned.
	ErrCorruptStore = errors.New("corrupt document")
)
