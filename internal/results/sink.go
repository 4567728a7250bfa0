package results

import "context"

// RecordRequest is one graded answer plus its point and currency deltas.
type RecordRequest struct {
	SessionID     string      `json:"session_id"`
	QuestionID    string      `json:"question_id"`
	UserID        string      `json:"user_id"`
	AttemptNumber int         `json:"attempt_number"`
	IsCorrect     bool        `json:"is_correct"`
	PointsDelta   int         `json:"points_delta"`
	CurrencyDelta int         `json:"currency_delta"`
	ElapsedMs     int64       `json:"elapsed_ms"`
	HintsUsed     int         `json:"hints_used"`
	AnswerValue   interface{} `json:"answer_value"`
}

// RecordReceipt reports what a Record call did. Applied is false when the
// same (session, question, attempt) key was already recorded.
type RecordReceipt struct {
	Applied          bool `json:"applied"`
	NewPointsTotal   *int `json:"new_points_total,omitempty"`
	NewCurrencyTotal *int `json:"new_currency_total,omitempty"`
}

// Sink persists graded answers. Implementations must be idempotent per
// (sessionID, questionID, attemptNumber): the dispatcher retries on failure
// and duplicate or replayed calls must not double-apply deltas.
type Sink interface {
	Record(ctx context.Context, req RecordRequest) (*RecordReceipt, error)
}
