package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/codewithmorais/quiz-session-service/internal/models"
)

// QuestionRepository loads stored question rows.
type QuestionRepository interface {
	GetByQuiz(ctx context.Context, quizID string) ([]*models.QuestionRecord, error)
	GetByID(ctx context.Context, id string) (*models.QuestionRecord, error)
	CreateBatch(ctx context.Context, records []*models.QuestionRecord) error
}

// ResultRepository persists graded answers. Upsert must be idempotent per
// (session_id, question_id, attempt_number): replaying the same record
// reports created=false and must not double-apply anything.
type ResultRepository interface {
	Upsert(ctx context.Context, record *models.AnswerResultRecord) (created bool, err error)
	GetBySession(ctx context.Context, sessionID string) ([]*models.AnswerResultRecord, error)
	GetByUser(ctx context.Context, userID string) ([]*models.AnswerResultRecord, error)
}

// AchievementRepository persists the monotonically growing unlocked set.
type AchievementRepository interface {
	GetUnlockedIDs(ctx context.Context, userID string) ([]string, error)
	SaveUnlock(ctx context.Context, record *models.UnlockedAchievementRecord) (created bool, err error)
}

// WalletRepository tracks user points and currency balances.
type WalletRepository interface {
	Get(ctx context.Context, userID string) (*models.UserWallet, error)
	ApplyDeltas(ctx context.Context, userID string, pointsDelta, currencyDelta int) (*models.UserWallet, error)
}

// HintRepository logs hint purchases.
type HintRepository interface {
	LogPurchase(ctx context.Context, record *models.HintPurchaseRecord) error
	CountForQuestion(ctx context.Context, userID, sessionID, questionID string) (int, error)
}

// Repository bundles all repositories behind one dependency.
type Repository interface {
	Question() QuestionRepository
	Result() ResultRepository
	Achievement() AchievementRepository
	Wallet() WalletRepository
	Hint() HintRepository
}

// IsNotFoundError checks if error represents a "not found" condition
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
