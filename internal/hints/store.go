package hints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/codewithmorais/quiz-session-service/internal/cache"
	"github.com/codewithmorais/quiz-session-service/internal/models"
	"github.com/codewithmorais/quiz-session-service/internal/repositories"
	"github.com/codewithmorais/quiz-session-service/internal/utils"
)

var (
	ErrInsufficientCurrency = errors.New("insufficient currency for hint")
	ErrNoMoreHints          = errors.New("no more hints available for this question")
)

const hintCacheTTL = time.Hour

// PurchaseRequest asks to buy the next hint for a question.
type PurchaseRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	SessionID  string `json:"session_id" validate:"required"`
	QuestionID string `json:"question_id" validate:"required"`
	Cost       int    `json:"cost" validate:"gte=0"`
}

// PurchaseResponse reports the purchased hint text and the updated balance.
type PurchaseResponse struct {
	Success          bool   `json:"success"`
	HintText         string `json:"hint_text,omitempty"`
	HintIndex        int    `json:"hint_index"`
	NewCurrencyTotal int    `json:"new_currency_total"`
}

// Store sells hints: it debits the user's currency, reveals the next unseen
// hint for the question and logs the purchase. Hint texts are cached in
// Redis since question content is immutable.
type Store interface {
	PurchaseHint(ctx context.Context, req PurchaseRequest) (*PurchaseResponse, error)
}

type store struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger utils.Logger
}

func NewStore(repo repositories.Repository, cacheService cache.CacheService, logger utils.Logger) Store {
	return &store{repo: repo, cache: cacheService, logger: logger}
}

func (s *store) PurchaseHint(ctx context.Context, req PurchaseRequest) (*PurchaseResponse, error) {
	hintTexts, cost, err := s.questionHints(ctx, req.QuestionID)
	if err != nil {
		return nil, err
	}
	if req.Cost > 0 {
		cost = req.Cost
	}

	// The next hint index is how many this user already bought for the
	// question in this session.
	bought, err := s.repo.Hint().CountForQuestion(ctx, req.UserID, req.SessionID, req.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count hint purchases: %w", err)
	}
	if bought >= len(hintTexts) {
		return nil, ErrNoMoreHints
	}

	wallet, err := s.repo.Wallet().Get(ctx, req.UserID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	if wallet == nil || wallet.Currency < cost {
		return nil, ErrInsufficientCurrency
	}

	wallet, err = s.repo.Wallet().ApplyDeltas(ctx, req.UserID, 0, -cost)
	if err != nil {
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}

	if err := s.repo.Hint().LogPurchase(ctx, &models.HintPurchaseRecord{
		UserID:     req.UserID,
		SessionID:  req.SessionID,
		QuestionID: req.QuestionID,
		HintIndex:  bought,
		Cost:       cost,
		CreatedAt:  time.Now(),
	}); err != nil {
		// The hint is still delivered; the log is for audit only.
		s.logger.Error("Failed to log hint purchase",
			"user_id", req.UserID,
			"question_id", req.QuestionID,
			"error", err)
	}

	s.logger.Info("Hint purchased",
		"user_id", req.UserID,
		"question_id", req.QuestionID,
		"hint_index", bought,
		"cost", cost)

	return &PurchaseResponse{
		Success:          true,
		HintText:         hintTexts[bought],
		HintIndex:        bought,
		NewCurrencyTotal: wallet.Currency,
	}, nil
}

// questionHints returns the hint texts and default cost for a question,
// consulting the cache first.
func (s *store) questionHints(ctx context.Context, questionID string) ([]string, int, error) {
	type cachedHints struct {
		Hints []string `json:"hints"`
		Cost  int      `json:"cost"`
	}

	key := "hints:" + questionID
	var cached cachedHints
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached.Hints, cached.Cost, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Hint cache lookup failed", "question_id", questionID, "error", err)
	}

	record, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load question: %w", err)
	}

	var hintTexts []string
	if len(record.Hints) > 0 {
		if err := json.Unmarshal(record.Hints, &hintTexts); err != nil {
			return nil, 0, fmt.Errorf("failed to decode question hints: %w", err)
		}
	}

	if err := s.cache.Set(ctx, key, cachedHints{Hints: hintTexts, Cost: record.HintCost}, hintCacheTTL); err != nil {
		s.logger.Warn("Failed to cache question hints", "question_id", questionID, "error", err)
	}

	return hintTexts, record.HintCost, nil
}
