package results

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/codewithmorais/quiz-session-service/internal/models"
	"github.com/codewithmorais/quiz-session-service/internal/repositories"
	"github.com/codewithmorais/quiz-session-service/internal/utils"
)

type postgresSink struct {
	repo   repositories.Repository
	logger utils.Logger
}

// NewPostgresSink creates a Sink backed by the answer-result and wallet
// repositories. Idempotency comes from the result table's unique key: the
// wallet deltas are applied only when the insert actually created a row.
func NewPostgresSink(repo repositories.Repository, logger utils.Logger) Sink {
	return &postgresSink{repo: repo, logger: logger}
}

func (s *postgresSink) Record(ctx context.Context, req RecordRequest) (*RecordReceipt, error) {
	answerBytes, err := json.Marshal(req.AnswerValue)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answer value: %w", err)
	}

	record := &models.AnswerResultRecord{
		SessionID:     req.SessionID,
		QuestionID:    req.QuestionID,
		AttemptNumber: req.AttemptNumber,
		UserID:        req.UserID,
		IsCorrect:     req.IsCorrect,
		PointsDelta:   req.PointsDelta,
		CurrencyDelta: req.CurrencyDelta,
		ElapsedMs:     req.ElapsedMs,
		HintsUsed:     req.HintsUsed,
		AnswerValue:   answerBytes,
		CreatedAt:     time.Now(),
	}

	created, err := s.repo.Result().Upsert(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to persist answer result: %w", err)
	}

	if !created {
		s.logger.Debug("Answer result already recorded, skipping deltas",
			"session_id", req.SessionID,
			"question_id", req.QuestionID,
			"attempt", req.AttemptNumber)
		return &RecordReceipt{Applied: false}, nil
	}

	wallet, err := s.repo.Wallet().ApplyDeltas(ctx, req.UserID, req.PointsDelta, req.CurrencyDelta)
	if err != nil {
		return nil, fmt.Errorf("failed to apply wallet deltas: %w", err)
	}

	return &RecordReceipt{
		Applied:          true,
		NewPointsTotal:   &wallet.Points,
		NewCurrencyTotal: &wallet.Currency,
	}, nil
}
