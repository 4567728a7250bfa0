package models

import (
	"time"

	"gorm.io/datatypes"
)

// ===== PERSISTENCE MODELS =====

// QuestionRecord is the database row backing a Question. The kind-specific
// payload lives in a jsonb column and is decoded and validated by the
// question loader before a session may start.
type QuestionRecord struct {
	ID           string         `json:"id" gorm:"primaryKey;size:64"`
	QuizID       string         `json:"quiz_id" gorm:"not null;index;size:64"`
	Kind         QuestionKind   `json:"kind" gorm:"not null;size:32"`
	Prompt       string         `json:"prompt" gorm:"not null"`
	Difficulty   int            `json:"difficulty" gorm:"not null;default:1"`
	TargetTimeMs int64          `json:"target_time_ms" gorm:"not null"`
	Position     int            `json:"position" gorm:"not null"`
	HintCost     int            `json:"hint_cost" gorm:"default:10"`
	Hints        datatypes.JSON `json:"hints" gorm:"type:jsonb"`   // []string
	Payload      datatypes.JSON `json:"payload" gorm:"type:jsonb"` // kind-specific

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnswerResultRecord is the persisted outcome of one graded answer. The
// unique index over (session_id, question_id, attempt_number) is what makes
// the result sink idempotent: replaying the same record is a no-op for the
// wallet deltas.
type AnswerResultRecord struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	SessionID     string         `json:"session_id" gorm:"not null;size:64;uniqueIndex:idx_result_key"`
	QuestionID    string         `json:"question_id" gorm:"not null;size:64;uniqueIndex:idx_result_key"`
	AttemptNumber int            `json:"attempt_number" gorm:"not null;uniqueIndex:idx_result_key"`
	UserID        string         `json:"user_id" gorm:"not null;index;size:64"`
	IsCorrect     bool           `json:"is_correct"`
	PointsDelta   int            `json:"points_delta"`
	CurrencyDelta int            `json:"currency_delta"`
	ElapsedMs     int64          `json:"elapsed_ms"`
	HintsUsed     int            `json:"hints_used"`
	AnswerValue   datatypes.JSON `json:"answer_value" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
}

// UnlockedAchievementRecord persists one achievement unlock per user. The
// unique index enforces the never-granted-twice invariant at the store level.
type UnlockedAchievementRecord struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"not null;size:64;uniqueIndex:idx_unlock_key"`
	AchievementID string    `json:"achievement_id" gorm:"not null;size:64;uniqueIndex:idx_unlock_key"`
	RewardPoints  int       `json:"reward_points"`
	EarnedAt      time.Time `json:"earned_at"`
}

// UserWallet tracks cumulative points and spendable currency for one user.
type UserWallet struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;size:64"`
	Points    int       `json:"points" gorm:"not null;default:0"`
	Currency  int       `json:"currency" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HintPurchaseRecord logs a hint purchase for audit and duplicate detection.
type HintPurchaseRecord struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"not null;index;size:64"`
	SessionID  string    `json:"session_id" gorm:"not null;size:64"`
	QuestionID string    `json:"question_id" gorm:"not null;size:64"`
	HintIndex  int       `json:"hint_index"`
	Cost       int       `json:"cost"`
	CreatedAt  time.Time `json:"created_at"`
}
