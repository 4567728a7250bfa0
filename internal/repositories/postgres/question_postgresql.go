package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/codewithmorais/quiz-session-service/internal/models"
	"github.com/codewithmorais/quiz-session-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q QuestionPostgreSQL) GetByQuiz(ctx context.Context, quizID string) ([]*models.QuestionRecord, error) {
	var records []*models.QuestionRecord
	if err := q.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("position ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (q QuestionPostgreSQL) GetByID(ctx context.Context, id string) (*models.QuestionRecord, error) {
	var record models.QuestionRecord
	if err := q.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (q QuestionPostgreSQL) CreateBatch(ctx context.Context, records []*models.QuestionRecord) error {
	return q.db.WithContext(ctx).Create(records).Error
}
