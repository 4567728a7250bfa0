package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/codewithmorais/quiz-session-service/internal/achievements"
	"github.com/codewithmorais/quiz-session-service/internal/cache"
	"github.com/codewithmorais/quiz-session-service/internal/events"
	"github.com/codewithmorais/quiz-session-service/internal/grading"
	"github.com/codewithmorais/quiz-session-service/internal/hints"
	"github.com/codewithmorais/quiz-session-service/internal/models"
	"github.com/codewithmorais/quiz-session-service/internal/repositories"
	"github.com/codewithmorais/quiz-session-service/internal/results"
	"github.com/codewithmorais/quiz-session-service/internal/session"
	"github.com/codewithmorais/quiz-session-service/internal/utils"
	"github.com/codewithmorais/quiz-session-service/internal/validator"
)

const questionCacheTTL = 10 * time.Minute

type sessionService struct {
	repo       repositories.Repository
	registry   *session.Registry
	grader     *grading.Engine
	evaluator  *achievements.Evaluator
	validator  *validator.Validator
	cache      cache.CacheService
	dispatcher *results.Dispatcher
	publisher  events.EventPublisher
	hintStore  hints.Store
	logger     utils.Logger
	clock      func() time.Time
}

// SessionServiceConfig wires the session service's collaborators.
type SessionServiceConfig struct {
	Repo       repositories.Repository
	Registry   *session.Registry
	Grader     *grading.Engine
	Evaluator  *achievements.Evaluator
	Validator  *validator.Validator
	Cache      cache.CacheService
	Dispatcher *results.Dispatcher
	Publisher  events.EventPublisher
	HintStore  hints.Store
	Logger     utils.Logger
	Clock      func() time.Time // nil means time.Now
}

func NewSessionService(cfg SessionServiceConfig) SessionService {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &sessionService{
		repo:       cfg.Repo,
		registry:   cfg.Registry,
		grader:     cfg.Grader,
		evaluator:  cfg.Evaluator,
		validator:  cfg.Validator,
		cache:      cfg.Cache,
		dispatcher: cfg.Dispatcher,
		publisher:  cfg.Publisher,
		hintStore:  cfg.HintStore,
		logger:     cfg.Logger,
		clock:      clock,
	}
}

// ===== LIFECYCLE =====

func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest, userID string) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, asValidationError(err)
	}

	s.logger.Info("Starting quiz session", "quiz_id", req.QuizID, "user_id", userID)

	questions, err := s.loadQuestions(ctx, req.QuizID)
	if err != nil {
		return nil, err
	}

	unlockedIDs, err := s.repo.Achievement().GetUnlockedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocked achievements: %w", err)
	}

	sess := session.New(session.Config{
		ID:              uuid.NewString(),
		QuizID:          req.QuizID,
		UserID:          userID,
		Grader:          s.grader,
		Evaluator:       s.evaluator,
		AlreadyUnlocked: unlockedIDs,
		Logger:          s.logger,
		Clock:           s.clock,
	})
	if err := sess.Initialize(questions); err != nil {
		return nil, err
	}
	s.registry.Put(sess)

	s.publish(ctx, events.EventSessionStarted, events.SessionStartedEvent{
		SessionID:     sess.ID,
		QuizID:        req.QuizID,
		UserID:        userID,
		QuestionCount: len(questions),
		StartedAt:     s.clock(),
	})

	return s.buildView(sess), nil
}

func (s *sessionService) Submit(ctx context.Context, sessionID string, req *SubmitAnswerRequest, userID string) (*SubmitAnswerResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, asValidationError(err)
	}

	sess, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	current, ok := sess.CurrentQuestion()
	if !ok {
		return nil, session.ErrNotInProgress
	}

	// Out-of-sequence submissions are rejected before the value is even
	// decoded; the shape of the answer is judged against the current question.
	if req.QuestionID != current.ID {
		return nil, &session.SequenceViolationError{
			QuestionID: req.QuestionID,
			CurrentID:  current.ID,
			Index:      sess.CurrentIndex(),
		}
	}

	value, err := decodeAnswerValue(current.Kind, req)
	if err != nil {
		return nil, err
	}

	outcome, err := sess.SubmitAnswer(req.QuestionID, value)
	if err != nil {
		return nil, err
	}

	// Persistence is best-effort and off the critical path: the dispatcher
	// retries, the sink dedupes, and local state never rolls back.
	s.dispatcher.Enqueue(results.RecordRequest{
		SessionID:     sess.ID,
		QuestionID:    req.QuestionID,
		UserID:        userID,
		AttemptNumber: outcome.Record.AttemptNumber,
		IsCorrect:     outcome.Record.IsCorrect,
		PointsDelta:   outcome.Breakdown.Total,
		CurrencyDelta: currencyReward(outcome.Breakdown.Total),
		ElapsedMs:     outcome.Record.ElapsedMs,
		HintsUsed:     outcome.Record.HintsUsed,
		AnswerValue:   outcome.Record.SubmittedValue,
	})

	s.persistUnlocks(ctx, sess, userID, outcome.Unlocked)

	s.publish(ctx, events.EventAnswerRecorded, events.AnswerRecordedEvent{
		SessionID:     sess.ID,
		QuizID:        sess.QuizID,
		UserID:        userID,
		QuestionID:    req.QuestionID,
		AttemptNumber: outcome.Record.AttemptNumber,
		IsCorrect:     outcome.Record.IsCorrect,
		Score:         outcome.Record.Score,
		ElapsedMs:     outcome.Record.ElapsedMs,
		Streak:        outcome.Snapshot.CurrentStreak,
	})

	response := &SubmitAnswerResponse{
		IsCorrect:     outcome.Record.IsCorrect,
		PerItem:       outcome.Grading.PerItem,
		Breakdown:     outcome.Breakdown,
		AttemptNumber: outcome.Record.AttemptNumber,
		Streak:        sess.Streak(),
		TotalScore:    sess.TotalScore(),
		Unlocked:      outcome.Unlocked,
	}

	// A correct answer auto-advances; an incorrect one leaves the question
	// current so it can be retried (or skipped via Advance).
	if outcome.Record.IsCorrect {
		summary, completed, err := sess.Advance()
		if err != nil {
			return nil, err
		}
		response.Advanced = true
		response.Completed = completed
		if completed {
			response.Summary = summary
			s.publishCompletion(ctx, summary)
		}
	}

	response.Session = s.buildView(sess)
	return response, nil
}

func (s *sessionService) Advance(ctx context.Context, sessionID string, userID string) (*AdvanceResponse, error) {
	sess, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	summary, completed, err := sess.Advance()
	if err != nil {
		return nil, err
	}
	if completed {
		s.publishCompletion(ctx, summary)
	}

	return &AdvanceResponse{
		Completed: completed,
		Summary:   summary,
		Session:   s.buildView(sess),
	}, nil
}

func (s *sessionService) Reset(ctx context.Context, sessionID string, userID string) (*SessionView, error) {
	sess, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	if err := sess.Reset(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventSessionReset, events.SessionStartedEvent{
		SessionID: sess.ID,
		QuizID:    sess.QuizID,
		UserID:    userID,
		StartedAt: s.clock(),
	})

	return s.buildView(sess), nil
}

func (s *sessionService) Abandon(_ context.Context, sessionID string, userID string) error {
	if _, err := s.ownedSession(sessionID, userID); err != nil {
		return err
	}
	// In-flight sink deliveries finish on their own; the sink's idempotency
	// key covers duplicates from earlier retries.
	s.registry.Delete(sessionID)
	s.logger.Info("Quiz session abandoned", "session_id", sessionID, "user_id", userID)
	return nil
}

// ===== READS =====

func (s *sessionService) Get(_ context.Context, sessionID string, userID string) (*SessionView, error) {
	sess, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return s.buildView(sess), nil
}

func (s *sessionService) Summary(_ context.Context, sessionID string, userID string) (*models.SessionSummary, error) {
	sess, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return sess.Summary()
}

func (s *sessionService) Review(_ context.Context, sessionID, questionID string, userID string) (*ReviewAnswerResponse, error) {
	sess, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	record, ok := sess.ReviewAnswer(questionID)
	if !ok {
		return nil, ErrNotFound
	}
	return &ReviewAnswerResponse{Record: record, PerItem: record.PerItem}, nil
}

// ===== HINTS =====

func (s *sessionService) PurchaseHint(ctx context.Context, sessionID string, req *PurchaseHintRequest, userID string) (*hints.PurchaseResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, asValidationError(err)
	}

	sess, err := s.ownedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	purchase, err := s.hintStore.PurchaseHint(ctx, hints.PurchaseRequest{
		UserID:     userID,
		SessionID:  sessionID,
		QuestionID: req.QuestionID,
		Cost:       req.Cost,
	})
	if err != nil {
		return nil, err
	}

	// The hint counter feeds the next score computation for this question.
	if err := sess.RecordHintUsed(req.QuestionID); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventHintPurchased, events.HintPurchasedEvent{
		UserID:     userID,
		SessionID:  sessionID,
		QuestionID: req.QuestionID,
		HintIndex:  purchase.HintIndex,
		Cost:       req.Cost,
	})

	return purchase, nil
}

// ===== HELPERS =====

func (s *sessionService) ownedSession(sessionID, userID string) (*session.Session, error) {
	sess, ok := s.registry.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.UserID != userID {
		return nil, ErrSessionNotOwned
	}
	return sess, nil
}

// loadQuestions fetches, decodes and validates a quiz's questions, caching
// the raw rows. A decode failure is a ConfigurationError that prevents the
// session from starting.
func (s *sessionService) loadQuestions(ctx context.Context, quizID string) ([]models.Question, error) {
	key := "quiz-questions:" + quizID

	var records []*models.QuestionRecord
	if err := s.cache.Get(ctx, key, &records); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Question cache lookup failed", "quiz_id", quizID, "error", err)
		}
		records, err = s.repo.Question().GetByQuiz(ctx, quizID)
		if err != nil {
			return nil, fmt.Errorf("failed to load questions: %w", err)
		}
		if len(records) > 0 {
			if err := s.cache.Set(ctx, key, records, questionCacheTTL); err != nil {
				s.logger.Warn("Failed to cache questions", "quiz_id", quizID, "error", err)
			}
		}
	}

	if len(records) == 0 {
		return nil, ErrQuizHasNoQuestion
	}

	return s.validator.Question().DecodeBatch(records)
}

// persistUnlocks stores freshly unlocked achievements and credits their
// rewards. The store's unique key keeps the set deduplicated even if the
// same unlock is reported twice.
func (s *sessionService) persistUnlocks(ctx context.Context, sess *session.Session, userID string, unlocked []models.UnlockedAchievement) {
	for _, u := range unlocked {
		created, err := s.repo.Achievement().SaveUnlock(ctx, &models.UnlockedAchievementRecord{
			UserID:        userID,
			AchievementID: u.AchievementID,
			RewardPoints:  u.RewardPoints,
			EarnedAt:      u.EarnedAt,
		})
		if err != nil {
			s.logger.Error("Failed to persist achievement unlock",
				"user_id", userID,
				"achievement_id", u.AchievementID,
				"error", err)
			continue
		}
		if !created {
			continue
		}

		if _, err := s.repo.Wallet().ApplyDeltas(ctx, userID, u.RewardPoints, 0); err != nil {
			s.logger.Error("Failed to credit achievement reward",
				"user_id", userID,
				"achievement_id", u.AchievementID,
				"error", err)
		}

		s.publish(ctx, events.EventAchievementUnlocked, events.AchievementUnlockedEvent{
			UserID:        userID,
			SessionID:     sess.ID,
			AchievementID: u.AchievementID,
			RewardPoints:  u.RewardPoints,
			EarnedAt:      u.EarnedAt,
		})
	}
}

func (s *sessionService) publishCompletion(ctx context.Context, summary *models.SessionSummary) {
	s.publish(ctx, events.EventSessionCompleted, events.SessionCompletedEvent{
		SessionID:    summary.SessionID,
		QuizID:       summary.QuizID,
		UserID:       summary.UserID,
		TotalScore:   summary.TotalScore,
		CorrectCount: summary.CorrectCount,
		TotalCount:   summary.TotalCount,
		Accuracy:     summary.Accuracy,
		TotalTimeMs:  summary.TotalTimeMs,
		CompletedAt:  summary.CompletedAt,
	})
}

func (s *sessionService) publish(ctx context.Context, eventType events.EventType, data interface{}) {
	if err := s.publisher.PublishSessionEvent(ctx, eventType, data); err != nil {
		s.logger.Error("Failed to publish session event", "event_type", eventType, "error", err)
	}
}

func (s *sessionService) buildView(sess *session.Session) *SessionView {
	view := &SessionView{
		SessionID:    sess.ID,
		QuizID:       sess.QuizID,
		Status:       sess.Status(),
		CurrentIndex: sess.CurrentIndex(),
		TotalScore:   sess.TotalScore(),
		Streak:       sess.Streak(),
	}

	if question, ok := sess.CurrentQuestion(); ok {
		view.Question = buildQuestionView(question)
	}
	view.QuestionCount = sess.QuestionCount()

	return view
}

// buildQuestionView strips the answer key from a question before it leaves
// the service.
func buildQuestionView(question models.Question) *QuestionView {
	view := &QuestionView{
		ID:           question.ID,
		Kind:         question.Kind,
		Prompt:       question.Prompt,
		Difficulty:   question.Difficulty,
		TargetTimeMs: question.TargetTimeMs,
		HintCost:     question.HintCost,
	}

	switch payload := question.Payload.(type) {
	case models.SingleChoicePayload:
		view.Options = payload.Options
	case models.OrderedMatchingPayload:
		view.Stems = payload.Stems
		view.Options = payload.Options
	case models.CodeOutputPayload:
		view.Source = payload.Source
	case models.DebugFixPayload:
		view.Source = payload.BuggySource
	}

	return view
}

// decodeAnswerValue builds the typed answer value the current question kind
// expects. A missing or mismatched field is a client error, distinct from a
// well-formed wrong answer.
func decodeAnswerValue(kind models.QuestionKind, req *SubmitAnswerRequest) (models.AnswerValue, error) {
	switch kind {
	case models.SingleChoice:
		if req.SelectedIndex == nil {
			return nil, ErrAnswerValueMissing
		}
		return models.SingleChoiceAnswer{SelectedIndex: *req.SelectedIndex}, nil
	case models.FillBlank:
		if req.Text == nil {
			return nil, ErrAnswerValueMissing
		}
		return models.FillBlankAnswer{Text: *req.Text}, nil
	case models.OrderedMatching:
		if req.Placements == nil {
			return nil, ErrAnswerValueMissing
		}
		return models.OrderedMatchingAnswer{Placements: req.Placements}, nil
	case models.CodeOutput:
		if req.Output == nil {
			return nil, ErrAnswerValueMissing
		}
		return models.CodeOutputAnswer{Output: *req.Output}, nil
	case models.DebugFix:
		if req.Output == nil {
			return nil, ErrAnswerValueMissing
		}
		return models.DebugFixAnswer{Output: *req.Output}, nil
	default:
		return nil, ErrAnswerValueMissing
	}
}

// currencyReward converts a score into spendable currency.
func currencyReward(score int) int {
	return score / 2
}
