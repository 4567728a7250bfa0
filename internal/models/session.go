package models

import "time"

// SessionStatus is the quiz session lifecycle state.
type SessionStatus string

const (
	SessionIdle       SessionStatus = "idle"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// PerformanceSnapshot is an immutable summary of session performance passed
// to the achievement evaluator at a point in time.
type PerformanceSnapshot struct {
	CorrectCount  int   `json:"correct_count"`
	TotalCount    int   `json:"total_count"`
	AverageTimeMs int64 `json:"average_time_ms"`
	CurrentStreak int   `json:"current_streak"`
}

// SessionSummary is computed when a session transitions to completed.
type SessionSummary struct {
	SessionID    string        `json:"session_id"`
	QuizID       string        `json:"quiz_id"`
	UserID       string        `json:"user_id"`
	TotalScore   int           `json:"total_score"`
	CorrectCount int           `json:"correct_count"`
	TotalCount   int           `json:"total_count"`
	Accuracy     float64       `json:"accuracy"` // 0.0 - 1.0
	TotalTimeMs  int64         `json:"total_time_ms"`
	BestStreak   int           `json:"best_streak"`
	Achievements []string      `json:"achievements"` // ids earned this session
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  time.Time     `json:"completed_at"`
	Records      []AnswerRecord `json:"records"`
}
