package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codewithmorais/quiz-session-service/internal/models"
	"github.com/codewithmorais/quiz-session-service/internal/repositories"
)

type WalletPostgreSQL struct {
	db *gorm.DB
}

func NewWalletPostgreSQL(db *gorm.DB) repositories.WalletRepository {
	return &WalletPostgreSQL{db: db}
}

func (w WalletPostgreSQL) Get(ctx context.Context, userID string) (*models.UserWallet, error) {
	var wallet models.UserWallet
	if err := w.db.WithContext(ctx).First(&wallet, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// ApplyDeltas atomically adjusts a user's balances, creating the wallet row
// on first use, and returns the updated wallet.
func (w WalletPostgreSQL) ApplyDeltas(ctx context.Context, userID string, pointsDelta, currencyDelta int) (*models.UserWallet, error) {
	var wallet models.UserWallet

	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.UserWallet{UserID: userID, UpdatedAt: time.Now()}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.UserWallet{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"points":     gorm.Expr("points + ?", pointsDelta),
				"currency":   gorm.Expr("currency + ?", currencyDelta),
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		return tx.First(&wallet, "user_id = ?", userID).Error
	})
	if err != nil {
		return nil, err
	}

	return &wallet, nil
}
