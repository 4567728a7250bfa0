package services

import (
	"context"

	"github.com/codewithmorais/quiz-session-service/internal/grading"
	"github.com/codewithmorais/quiz-session-service/internal/hints"
	"github.com/codewithmorais/quiz-session-service/internal/models"
	"github.com/codewithmorais/quiz-session-service/internal/scoring"
)

// ===== REQUEST / RESPONSE TYPES =====

type StartSessionRequest struct {
	QuizID string `json:"quiz_id" validate:"required"`
}

// SubmitAnswerRequest carries the kind-specific submitted value. Exactly one
// of the value fields should be set, matching the current question's kind.
type SubmitAnswerRequest struct {
	QuestionID    string            `json:"question_id" validate:"required"`
	SelectedIndex *int              `json:"selected_index,omitempty"`
	Text          *string           `json:"text,omitempty"`
	Placements    map[string]string `json:"placements,omitempty"`
	Output        *string           `json:"output,omitempty"`
}

type PurchaseHintRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Cost       int    `json:"cost" validate:"gte=0"`
}

// SessionView is the client-facing state of a session. Correct answers are
// never exposed through it.
type SessionView struct {
	SessionID     string               `json:"session_id"`
	QuizID        string               `json:"quiz_id"`
	Status        models.SessionStatus `json:"status"`
	CurrentIndex  int                  `json:"current_index"`
	QuestionCount int                  `json:"question_count"`
	TotalScore    int                  `json:"total_score"`
	Streak        int                  `json:"streak"`
	Question      *QuestionView        `json:"question,omitempty"`
}

// QuestionView is a question stripped of its answer key.
type QuestionView struct {
	ID           string              `json:"id"`
	Kind         models.QuestionKind `json:"kind"`
	Prompt       string              `json:"prompt"`
	Difficulty   int                 `json:"difficulty"`
	TargetTimeMs int64               `json:"target_time_ms"`
	HintCost     int                 `json:"hint_cost"`
	Options      []string            `json:"options,omitempty"`
	Stems        []string            `json:"stems,omitempty"`
	Source       string              `json:"source,omitempty"`
}

type SubmitAnswerResponse struct {
	IsCorrect     bool                         `json:"is_correct"`
	PerItem       map[string]bool              `json:"per_item,omitempty"`
	Breakdown     scoring.Breakdown            `json:"breakdown"`
	AttemptNumber int                          `json:"attempt_number"`
	Streak        int                          `json:"streak"`
	TotalScore    int                          `json:"total_score"`
	Unlocked      []models.UnlockedAchievement `json:"unlocked,omitempty"`
	Advanced      bool                         `json:"advanced"`
	Completed     bool                         `json:"completed"`
	Summary       *models.SessionSummary       `json:"summary,omitempty"`
	Session       *SessionView                 `json:"session"`
}

type AdvanceResponse struct {
	Completed bool                   `json:"completed"`
	Summary   *models.SessionSummary `json:"summary,omitempty"`
	Session   *SessionView           `json:"session"`
}

type ReviewAnswerResponse struct {
	Record  models.AnswerRecord `json:"record"`
	PerItem map[string]bool     `json:"per_item,omitempty"`
}

// ===== SERVICE INTERFACES =====

// SessionService owns the quiz session lifecycle and orchestrates grading,
// scoring, achievements, persistence and events.
type SessionService interface {
	Start(ctx context.Context, req *StartSessionRequest, userID string) (*SessionView, error)
	Submit(ctx context.Context, sessionID string, req *SubmitAnswerRequest, userID string) (*SubmitAnswerResponse, error)
	Advance(ctx context.Context, sessionID string, userID string) (*AdvanceResponse, error)
	Reset(ctx context.Context, sessionID string, userID string) (*SessionView, error)
	Abandon(ctx context.Context, sessionID string, userID string) error
	Get(ctx context.Context, sessionID string, userID string) (*SessionView, error)
	Summary(ctx context.Context, sessionID string, userID string) (*models.SessionSummary, error)
	Review(ctx context.Context, sessionID, questionID string, userID string) (*ReviewAnswerResponse, error)
	PurchaseHint(ctx context.Context, sessionID string, req *PurchaseHintRequest, userID string) (*hints.PurchaseResponse, error)
}

// ExportService renders session results for download.
type ExportService interface {
	ExportUserResults(ctx context.Context, userID string) ([]byte, error)
}

// ServiceManager bundles all services behind one dependency.
type ServiceManager interface {
	Session() SessionService
	Export() ExportService
}

// GradeResult re-exports the grading result type for handler use.
type GradeResult = grading.Result
