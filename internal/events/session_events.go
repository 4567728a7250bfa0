package events

import (
	"time"
)

// EventType represents different types of quiz session events
type EventType string

const (
	// Session events
	EventSessionStarted   EventType = "session.started"
	EventSessionCompleted EventType = "session.completed"
	EventSessionReset     EventType = "session.reset"

	// Answer events
	EventAnswerRecorded EventType = "answer.recorded"

	// Achievement events
	EventAchievementUnlocked EventType = "achievement.unlocked"

	// Hint events
	EventHintPurchased EventType = "hint.purchased"
)

// SessionEvent is the base event structure for all quiz session events
type SessionEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

// Event payloads

type SessionStartedEvent struct {
	SessionID     string    `json:"session_id"`
	QuizID        string    `json:"quiz_id"`
	UserID        string    `json:"user_id"`
	QuestionCount int       `json:"question_count"`
	StartedAt     time.Time `json:"started_at"`
}

type AnswerRecordedEvent struct {
	SessionID     string `json:"session_id"`
	QuizID        string `json:"quiz_id"`
	UserID        string `json:"user_id"`
	QuestionID    string `json:"question_id"`
	AttemptNumber int    `json:"attempt_number"`
	IsCorrect     bool   `json:"is_correct"`
	Score         int    `json:"score"`
	ElapsedMs     int64  `json:"elapsed_ms"`
	Streak        int    `json:"streak"`
}

type SessionCompletedEvent struct {
	SessionID    string    `json:"session_id"`
	QuizID       string    `json:"quiz_id"`
	UserID       string    `json:"user_id"`
	TotalScore   int       `json:"total_score"`
	CorrectCount int       `json:"correct_count"`
	TotalCount   int       `json:"total_count"`
	Accuracy     float64   `json:"accuracy"`
	TotalTimeMs  int64     `json:"total_time_ms"`
	CompletedAt  time.Time `json:"completed_at"`
}

type AchievementUnlockedEvent struct {
	UserID        string    `json:"user_id"`
	SessionID     string    `json:"session_id"`
	AchievementID string    `json:"achievement_id"`
	RewardPoints  int       `json:"reward_points"`
	EarnedAt      time.Time `json:"earned_at"`
}

type HintPurchasedEvent struct {
	UserID     string `json:"user_id"`
	SessionID  string `json:"session_id"`
	QuestionID string `json:"question_id"`
	HintIndex  int    `json:"hint_index"`
	Cost       int    `json:"cost"`
}
