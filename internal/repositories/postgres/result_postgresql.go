package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codewithmorais/quiz-session-service/internal/models"
	"github.com/codewithmorais/quiz-session-service/internal/repositories"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

// Upsert inserts the record unless one already exists for the same
// (session_id, question_id, attempt_number) key. Duplicate deliveries from
// the retrying dispatcher land on the conflict path and report created=false.
func (r ResultPostgreSQL) Upsert(ctx context.Context, record *models.AnswerResultRecord) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "session_id"},
			{Name: "question_id"},
			{Name: "attempt_number"},
		},
		DoNothing: true,
	}).Create(record)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r ResultPostgreSQL) GetBySession(ctx context.Context, sessionID string) ([]*models.AnswerResultRecord, error) {
	var records []*models.AnswerResultRecord
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r ResultPostgreSQL) GetByUser(ctx context.Context, userID string) ([]*models.AnswerResultRecord, error) {
	var records []*models.AnswerResultRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
