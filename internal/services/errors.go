package services

import (
	"errors"
	"fmt"

	apperrors "github.com/codewithmorais/quiz-session-service/internal/errors"
	"github.com/codewithmorais/quiz-session-service/internal/session"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")

	// Session specific errors
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionNotOwned   = errors.New("session does not belong to user")
	ErrSessionNotActive  = errors.New("session is not active")
	ErrQuizNotFound      = errors.New("quiz not found")
	ErrQuizHasNoQuestion = errors.New("quiz has no questions")

	// Answer specific errors
	ErrAnswerValueMissing = errors.New("answer value missing or malformed for question kind")
)

// ===== ERROR CLASSIFICATION =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrQuizNotFound)
}

// IsConfiguration checks if error is a question configuration error
func IsConfiguration(err error) bool {
	var ce *apperrors.ConfigurationError
	return errors.As(err, &ce)
}

// asValidationError converts struct-tag failures into the field-level error
// type handlers know how to render.
func asValidationError(err error) error {
	if converted := apperrors.ToValidationErrors(err); len(converted) > 0 {
		return converted
	}
	return fmt.Errorf("%w: %v", ErrValidationFailed, err)
}

// IsSequenceViolation checks if error is an out-of-order submission
func IsSequenceViolation(err error) bool {
	return session.IsSequenceViolation(err)
}

// IsConflict checks if error represents a state conflict
func IsConflict(err error) bool {
	return errors.Is(err, session.ErrAlreadyInitialized) ||
		errors.Is(err, session.ErrSubmissionInFlight) ||
		errors.Is(err, session.ErrNotInProgress) ||
		errors.Is(err, session.ErrNotCompleted) ||
		errors.Is(err, session.ErrNotResettable)
}
