package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codewithmorais/quiz-session-service/internal/models"
	"github.com/codewithmorais/quiz-session-service/internal/repositories"
)

type AchievementPostgreSQL struct {
	db *gorm.DB
}

func NewAchievementPostgreSQL(db *gorm.DB) repositories.AchievementRepository {
	return &AchievementPostgreSQL{db: db}
}

func (a AchievementPostgreSQL) GetUnlockedIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := a.db.WithContext(ctx).
		Model(&models.UnlockedAchievementRecord{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// SaveUnlock inserts the unlock unless the user already holds it; the unique
// index on (user_id, achievement_id) makes a repeat grant a no-op.
func (a AchievementPostgreSQL) SaveUnlock(ctx context.Context, record *models.UnlockedAchievementRecord) (bool, error) {
	result := a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "achievement_id"},
		},
		DoNothing: true,
	}).Create(record)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
