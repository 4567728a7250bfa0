package postgres

import (
	"gorm.io/gorm"

	"github.com/codewithmorais/quiz-session-service/internal/models"
	"github.com/codewithmorais/quiz-session-service/internal/repositories"
)

type repository struct {
	question    repositories.QuestionRepository
	result      repositories.ResultRepository
	achievement repositories.AchievementRepository
	wallet      repositories.WalletRepository
	hint        repositories.HintRepository
}

// NewRepository wires all PostgreSQL repositories over one gorm handle.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		question:    NewQuestionPostgreSQL(db),
		result:      NewResultPostgreSQL(db),
		achievement: NewAchievementPostgreSQL(db),
		wallet:      NewWalletPostgreSQL(db),
		hint:        NewHintPostgreSQL(db),
	}
}

func (r *repository) Question() repositories.QuestionRepository       { return r.question }
func (r *repository) Result() repositories.ResultRepository           { return r.result }
func (r *repository) Achievement() repositories.AchievementRepository { return r.achievement }
func (r *repository) Wallet() repositories.WalletRepository           { return r.wallet }
func (r *repository) Hint() repositories.HintRepository               { return r.hint }

// AutoMigrate creates or updates the backing tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.QuestionRecord{},
		&models.AnswerResultRecord{},
		&models.UnlockedAchievementRecord{},
		&models.UserWallet{},
		&models.HintPurchaseRecord{},
	)
}
