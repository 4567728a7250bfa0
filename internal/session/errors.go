package session

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyInitialized = errors.New("session already initialized")
	ErrNoQuestions        = errors.New("session requires at least one question")
	ErrNotInProgress      = errors.New("session is not in progress")
	ErrNotResettable      = errors.New("session cannot be reset before it starts")
	ErrSubmissionInFlight = errors.New("a submission is already in flight for this session")
	ErrNotCompleted       = errors.New("session is not completed")
)

// SequenceViolationError marks a submission for a question that is not the
// current one. No state changes when it is returned.
type SequenceViolationError struct {
	QuestionID string `json:"question_id"`
	CurrentID  string `json:"current_id"`
	Index      int    `json:"index"`
}

func (sve *SequenceViolationError) Error() string {
	return fmt.Sprintf("out-of-order submission: question %s is not current (expected %s at index %d)",
		sve.QuestionID, sve.CurrentID, sve.Index)
}

// IsSequenceViolation reports whether err is an out-of-order submission.
func IsSequenceViolation(err error) bool {
	var sve *SequenceViolationError
	return errors.As(err, &sve)
}
