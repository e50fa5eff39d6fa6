package models

import "errors"

// Domain error conditions. Repositories and services wrap them with context,
// handlers match them with errors.Is to pick a response status.
var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccessDenied       = errors.New("access denied")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrAlreadyPassed      = errors.New("quiz already passed")
	ErrNoAccess           = errors.New("no access to the course")
	ErrNoQuestions        = errors.New("quiz has no questions")
	ErrAttemptNotFound    = errors.New("quiz attempt not found")
)
