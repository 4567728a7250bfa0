package session

import (
	"sync"
	"time"

	"github.com/codewithmorais/quiz-session-service/internal/achievements"
	"github.com/codewithmorais/quiz-session-service/internal/grading"
	"github.com/codewithmorais/quiz-session-service/internal/models"
	"github.com/codewithmorais/quiz-session-service/internal/scoring"
	"github.com/codewithmorais/quiz-session-service/internal/utils"
)

// SubmitOutcome is everything one submission produced. The service layer uses
// it to dispatch persistence and events; the session itself has already
// applied the outcome to its local state, which stays authoritative for the
// user-visible flow regardless of what happens downstream.
type SubmitOutcome struct {
	Record    models.AnswerRecord          `json:"record"`
	Grading   grading.Result               `json:"grading"`
	Breakdown scoring.Breakdown            `json:"breakdown"`
	Snapshot  models.PerformanceSnapshot   `json:"snapshot"`
	Unlocked  []models.UnlockedAchievement `json:"unlocked,omitempty"`
}

// Session is the quiz state machine: Idle -> InProgress -> Completed, with
// Reset returning to InProgress at index 0. All mutation goes through
// Initialize, SubmitAnswer, Advance, Reset and RecordHintUsed; state is
// guarded by a mutex but the model is single-writer, so a submission that
// arrives while another is being applied is rejected rather than queued.
type Session struct {
	ID     string
	QuizID string
	UserID string

	mu        sync.Mutex
	status    models.SessionStatus
	questions []models.Question
	byID      map[string]int // questionID -> index

	currentIndex      int
	answers           map[string]models.AnswerRecord
	attempts          map[string]int // submissions per question this session
	hintsUsed         map[string]int
	streak            int
	bestStreak        int
	totalScore        int
	startedAt         time.Time
	questionStartedAt time.Time
	completedAt       time.Time

	earned   []string        // achievement ids unlocked this session, in order
	unlocked map[string]bool // user-lifetime unlocked set, seeded by the caller

	now       func() time.Time
	grader    *grading.Engine
	evaluator *achievements.Evaluator
	logger    utils.Logger
}

// Config wires a session's collaborators.
type Config struct {
	ID              string
	QuizID          string
	UserID          string
	Grader          *grading.Engine
	Evaluator       *achievements.Evaluator
	AlreadyUnlocked []string
	Logger          utils.Logger
	Clock           func() time.Time // nil means time.Now
}

func New(cfg Config) *Session {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	unlocked := make(map[string]bool, len(cfg.AlreadyUnlocked))
	for _, id := range cfg.AlreadyUnlocked {
		unlocked[id] = true
	}
	return &Session{
		ID:        cfg.ID,
		QuizID:    cfg.QuizID,
		UserID:    cfg.UserID,
		status:    models.SessionIdle,
		answers:   make(map[string]models.AnswerRecord),
		attempts:  make(map[string]int),
		hintsUsed: make(map[string]int),
		unlocked:  unlocked,
		now:       now,
		grader:    cfg.Grader,
		evaluator: cfg.Evaluator,
		logger:    cfg.Logger,
	}
}

// Initialize moves the session from Idle to InProgress with a fixed,
// already-validated question sequence.
func (s *Session) Initialize(questions []models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != models.SessionIdle {
		return ErrAlreadyInitialized
	}
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	s.questions = questions
	s.byID = make(map[string]int, len(questions))
	for i, q := range questions {
		s.byID[q.ID] = i
	}

	now := s.now()
	s.status = models.SessionInProgress
	s.currentIndex = 0
	s.startedAt = now
	s.questionStartedAt = now

	s.logger.Info("Quiz session initialized",
		"session_id", s.ID,
		"quiz_id", s.QuizID,
		"user_id", s.UserID,
		"question_count", len(questions))

	return nil
}

// SubmitAnswer grades and scores a submission for the current question,
// applies it to the session ledger and evaluates achievements.
//
// Only the question at the current index may be answered; anything else is a
// sequence violation and leaves the state untouched. Re-answering the current
// question is a retry: it produces a replacement AnswerRecord with the
// attempt count carried forward. TryLock rejects a submission that races an
// in-flight one instead of queueing it behind the lock.
func (s *Session) SubmitAnswer(questionID string, value models.AnswerValue) (*SubmitOutcome, error) {
	if !s.mu.TryLock() {
		return nil, ErrSubmissionInFlight
	}
	defer s.mu.Unlock()

	if s.status != models.SessionInProgress {
		return nil, ErrNotInProgress
	}

	current := s.questions[s.currentIndex]
	if questionID != current.ID {
		return nil, &SequenceViolationError{
			QuestionID: questionID,
			CurrentID:  current.ID,
			Index:      s.currentIndex,
		}
	}

	now := s.now()
	elapsed := now.Sub(s.questionStartedAt).Milliseconds()
	attempt := s.attempts[questionID] + 1
	hints := s.hintsUsed[questionID]

	result := s.grader.Grade(current, value)
	breakdown := scoring.Score(scoring.Params{
		IsCorrect:     result.Correct,
		ElapsedMs:     elapsed,
		TargetTimeMs:  current.TargetTimeMs,
		Difficulty:    current.Difficulty,
		AttemptNumber: attempt,
		HintsUsed:     hints,
	})

	record := models.AnswerRecord{
		QuestionID:     questionID,
		SubmittedValue: value,
		IsCorrect:      result.Correct,
		PerItem:        result.PerItem,
		ElapsedMs:      elapsed,
		AttemptNumber:  attempt,
		HintsUsed:      hints,
		Score:          breakdown.Total,
		SubmittedAt:    now,
	}

	// Last-write-wins upsert; totalScore tracks the sum of stored records.
	if prior, ok := s.answers[questionID]; ok {
		s.totalScore -= prior.Score
	}
	s.answers[questionID] = record
	s.attempts[questionID] = attempt
	s.totalScore += breakdown.Total

	if result.Correct {
		s.streak++
		if s.streak > s.bestStreak {
			s.bestStreak = s.streak
		}
	} else {
		s.streak = 0
	}

	snapshot := s.snapshotLocked()
	unlocked := s.evaluator.Check(snapshot, s.unlocked)
	for _, u := range unlocked {
		s.unlocked[u.AchievementID] = true
		s.earned = append(s.earned, u.AchievementID)
	}

	s.logger.Info("Answer submitted",
		"session_id", s.ID,
		"question_id", questionID,
		"correct", result.Correct,
		"attempt", attempt,
		"score", breakdown.Total,
		"streak", s.streak)

	return &SubmitOutcome{
		Record:    record,
		Grading:   result,
		Breakdown: breakdown,
		Snapshot:  snapshot,
		Unlocked:  unlocked,
	}, nil
}

// Advance moves to the next question, or completes the session when the last
// question has been passed. It returns the final summary on completion.
func (s *Session) Advance() (*models.SessionSummary, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != models.SessionInProgress {
		return nil, false, ErrNotInProgress
	}

	if s.currentIndex+1 < len(s.questions) {
		s.currentIndex++
		s.questionStartedAt = s.now()
		return nil, false, nil
	}

	s.status = models.SessionCompleted
	s.completedAt = s.now()
	summary := s.summaryLocked()

	s.logger.Info("Quiz session completed",
		"session_id", s.ID,
		"total_score", summary.TotalScore,
		"accuracy", summary.Accuracy,
		"achievements", len(summary.Achievements))

	return summary, true, nil
}

// Reset clears answers, streak and score and restarts at index 0 with a
// fresh startedAt. Valid from InProgress or Completed. The lifetime unlocked
// set is kept: achievements are never granted twice.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == models.SessionIdle {
		return ErrNotResettable
	}

	now := s.now()
	s.status = models.SessionInProgress
	s.currentIndex = 0
	s.answers = make(map[string]models.AnswerRecord)
	s.attempts = make(map[string]int)
	s.hintsUsed = make(map[string]int)
	s.streak = 0
	s.bestStreak = 0
	s.totalScore = 0
	s.startedAt = now
	s.questionStartedAt = now
	s.earned = nil
	s.completedAt = time.Time{}

	s.logger.Info("Quiz session reset", "session_id", s.ID)
	return nil
}

// RecordHintUsed bumps the hint counter for a question so the next score
// computation picks it up. Called after a successful hint purchase.
func (s *Session) RecordHintUsed(questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != models.SessionInProgress {
		return ErrNotInProgress
	}
	if _, ok := s.byID[questionID]; !ok {
		return &SequenceViolationError{
			QuestionID: questionID,
			CurrentID:  s.questions[s.currentIndex].ID,
			Index:      s.currentIndex,
		}
	}
	s.hintsUsed[questionID]++
	return nil
}

// ===== READ-ONLY VIEWS =====

// Status returns the lifecycle state.
func (s *Session) Status() models.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// CurrentQuestion returns the question at the current index.
func (s *Session) CurrentQuestion() (models.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != models.SessionInProgress {
		return models.Question{}, false
	}
	return s.questions[s.currentIndex], true
}

// CurrentIndex returns the 0-based position in the question sequence.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentIndex
}

// QuestionCount returns the number of questions in the sequence.
func (s *Session) QuestionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

// TotalScore returns the running score.
func (s *Session) TotalScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalScore
}

// Streak returns the current consecutive-correct counter.
func (s *Session) Streak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streak
}

// HintsUsed returns how many hints were bought for a question.
func (s *Session) HintsUsed(questionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hintsUsed[questionID]
}

// ReviewAnswer exposes an already-recorded answer for read-only review.
// Reviewing never mutates score or position.
func (s *Session) ReviewAnswer(questionID string) (models.AnswerRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.answers[questionID]
	return record, ok
}

// Snapshot returns the current performance snapshot.
func (s *Session) Snapshot() models.PerformanceSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Summary returns the final summary of a completed session.
func (s *Session) Summary() (*models.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != models.SessionCompleted {
		return nil, ErrNotCompleted
	}
	return s.summaryLocked(), nil
}

func (s *Session) snapshotLocked() models.PerformanceSnapshot {
	var correct int
	var totalElapsed int64
	for _, record := range s.answers {
		if record.IsCorrect {
			correct++
		}
		totalElapsed += record.ElapsedMs
	}

	total := len(s.answers)
	var average int64
	if total > 0 {
		average = totalElapsed / int64(total)
	}

	return models.PerformanceSnapshot{
		CorrectCount:  correct,
		TotalCount:    total,
		AverageTimeMs: average,
		CurrentStreak: s.streak,
	}
}

func (s *Session) summaryLocked() *models.SessionSummary {
	snapshot := s.snapshotLocked()

	records := make([]models.AnswerRecord, 0, len(s.questions))
	var totalTime int64
	for _, q := range s.questions {
		if record, ok := s.answers[q.ID]; ok {
			records = append(records, record)
			totalTime += record.ElapsedMs
		}
	}

	accuracy := 0.0
	if snapshot.TotalCount > 0 {
		accuracy = float64(snapshot.CorrectCount) / float64(snapshot.TotalCount)
	}

	earned := make([]string, len(s.earned))
	copy(earned, s.earned)

	return &models.SessionSummary{
		SessionID:    s.ID,
		QuizID:       s.QuizID,
		UserID:       s.UserID,
		TotalScore:   s.totalScore,
		CorrectCount: snapshot.CorrectCount,
		TotalCount:   snapshot.TotalCount,
		Accuracy:     accuracy,
		TotalTimeMs:  totalTime,
		BestStreak:   s.bestStreak,
		Achievements: earned,
		StartedAt:    s.startedAt,
		CompletedAt:  s.completedAt,
		Records:      records,
	}
}
