package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/codewithmorais/quiz-session-service/internal/models"
	"github.com/codewithmorais/quiz-session-service/internal/repositories"
)

type HintPostgreSQL struct {
	db *gorm.DB
}

func NewHintPostgreSQL(db *gorm.DB) repositories.HintRepository {
	return &HintPostgreSQL{db: db}
}

func (h HintPostgreSQL) LogPurchase(ctx context.Context, record *models.HintPurchaseRecord) error {
	return h.db.WithContext(ctx).Create(record).Error
}

func (h HintPostgreSQL) CountForQuestion(ctx context.Context, userID, sessionID, questionID string) (int, error) {
	var count int64
	if err := h.db.WithContext(ctx).
		Model(&models.HintPurchaseRecord{}).
		Where("user_id = ? AND session_id = ? AND question_id = ?", userID, sessionID, questionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
