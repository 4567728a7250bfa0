package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithmorais/quiz-session-service/internal/achievements"
	"github.com/codewithmorais/quiz-session-service/internal/grading"
	"github.com/codewithmorais/quiz-session-service/internal/models"
	"github.com/codewithmorais/quiz-session-service/internal/utils"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func testQuestions() []models.Question {
	return []models.Question{
		{
			ID:           "q1",
			Kind:         models.SingleChoice,
			Prompt:       "Pick c",
			Difficulty:   1,
			TargetTimeMs: 30000,
			Payload:      models.SingleChoicePayload{Options: []string{"a", "b", "c"}, CorrectIndex: 2},
		},
		{
			ID:           "q2",
			Kind:         models.FillBlank,
			Prompt:       "The answer",
			Difficulty:   2,
			TargetTimeMs: 30000,
			Payload:      models.FillBlankPayload{AcceptableAnswers: []string{"42"}},
		},
		{
			ID:           "q3",
			Kind:         models.CodeOutput,
			Prompt:       "What does it print",
			Difficulty:   1,
			TargetTimeMs: 30000,
			Payload:      models.CodeOutputPayload{Source: "print(1)", ExpectedOutput: "1"},
		},
	}
}

func newTestSession(t *testing.T, clock *fakeClock, alreadyUnlocked ...string) *Session {
	t.Helper()
	logger := utils.NewDevelopmentLogger()
	sess := New(Config{
		ID:              "sess-1",
		QuizID:          "quiz-1",
		UserID:          "user-1",
		Grader:          grading.NewEngine(logger),
		Evaluator:       achievements.NewEvaluator(achievements.DefaultCatalog()),
		AlreadyUnlocked: alreadyUnlocked,
		Logger:          logger,
		Clock:           clock.Now,
	})
	require.NoError(t, sess.Initialize(testQuestions()))
	return sess
}

func TestInitialize_Lifecycle(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	sess := newTestSession(t, clock)

	assert.Equal(t, models.SessionInProgress, sess.Status())
	assert.Equal(t, 0, sess.CurrentIndex())
	assert.Equal(t, 3, sess.QuestionCount())

	// Already initialized.
	err := sess.Initialize(testQuestions())
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestInitialize_RequiresQuestions(t *testing.T) {
	logger := utils.NewDevelopmentLogger()
	sess := New(Config{
		ID:        "sess-empty",
		Grader:    grading.NewEngine(logger),
		Evaluator: achievements.NewEvaluator(nil),
		Logger:    logger,
	})

	err := sess.Initialize(nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.Equal(t, models.SessionIdle, sess.Status())
}

func TestSubmitAnswer_CorrectFlow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	sess := newTestSession(t, clock)

	clock.Advance(5 * time.Second)
	outcome, err := sess.SubmitAnswer("q1", models.SingleChoiceAnswer{SelectedIndex: 2})
	require.NoError(t, err)

	assert.True(t, outcome.Record.IsCorrect)
	assert.Equal(t, 1, outcome.Record.AttemptNumber)
	assert.Equal(t, int64(5000), outcome.Record.ElapsedMs)
	assert.Equal(t, 25, outcome.Breakdown.Total)
	assert.Equal(t, 25, sess.TotalScore())
	assert.Equal(t, 1, sess.Streak())
}

func TestSubmitAnswer_SequenceViolation(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	sess := newTestSession(t, clock)

	// q2 is at index 1 while the session sits at index 0.
	outcome, err := sess.SubmitAnswer("q2", models.FillBlankAnswer{Text: "42"})
	require.Error(t, err)
	assert.Nil(t, outcome)

	var sequenceViolation *SequenceViolationError
	require.True(t, errors.As(err, &sequenceViolation))
	assert.Equal(t, "q2", sequenceViolation.QuestionID)
	assert.Equal(t, "q1", sequenceViolation.CurrentID)
	assert.Equal(t, 0, sequenceViolation.Index)

	// No record was created and state is untouched.
	_, found := sess.ReviewAnswer("q2")
	assert.False(t, found)
	assert.Equal(t, 0, sess.TotalScore())
	assert.Equal(t, 0, sess.CurrentIndex())
}

func TestSubmitAnswer_RetryCarriesAttemptForward(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	sess := newTestSession(t, clock)

	clock.Advance(5 * time.Second)
	first, err := sess.SubmitAnswer("q1", models.SingleChoiceAnswer{SelectedIndex: 0})
	require.NoError(t, err)
	assert.False(t, first.Record.IsCorrect)
	assert.Equal(t, 1, first.Record.AttemptNumber)
	assert.Equal(t, 0, sess.TotalScore())

	// The question stays current; the retry is attempt 2 with the penalty.
	second, err := sess.SubmitAnswer("q1", models.SingleChoiceAnswer{SelectedIndex: 2})
	require.NoError(t, err)
	assert.True(t, second.Record.IsCorrect)
	assert.Equal(t, 2, second.Record.AttemptNumber)
	assert.Equal(t, 20, second.Breakdown.Total) // 25 * 0.8

	// Last write wins and totalScore tracks the stored records.
	record, found := sess.ReviewAnswer("q1")
	require.True(t, found)
	assert.True(t, record.IsCorrect)
	assert.Equal(t, 2, record.AttemptNumber)
	assert.Equal(t, 20, sess.TotalScore())
}

func TestSubmitAnswer_StreakResetsOnIncorrect(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	sess := newTestSession(t, clock)

	_, err := sess.SubmitAnswer("q1", models.SingleChoiceAnswer{SelectedIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Streak())

	_, _, err = sess.Advance()
	require.NoError(t, err)

	_, err = sess.SubmitAnswer("q2", models.FillBlankAnswer{Text: "wrong"})
	require.NoError(t, err)
	assert.Equal(t, 0, sess.Streak())
}

func TestAdvance_CompletesAfterLastQuestion(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	sess := newTestSession(t, clock)

	answers := []models.AnswerValue{
		models.SingleChoiceAnswer{SelectedIndex: 2},
		models.FillBlankAnswer{Text: "42"},
		models.CodeOutputAnswer{Output: "1"},
	}
	for i, q := range testQuestions() {
		clock.Advance(5 * time.Second)
		_, err := sess.SubmitAnswer(q.ID, answers[i])
		require.NoError(t, err)

		summary, completed, err := sess.Advance()
		require.NoError(t, err)
		if i < 2 {
			assert.False(t, completed)
			assert.Nil(t, summary)
		} else {
			assert.True(t, completed)
			require.NotNil(t, summary)
			assert.Equal(t, models.SessionCompleted, sess.Status())
			assert.Equal(t, 3, summary.CorrectCount)
			assert.Equal(t, 3, summary.TotalCount)
			assert.Equal(t, 1.0, summary.Accuracy)
			assert.Equal(t, sess.TotalScore(), summary.TotalScore)
			assert.Contains(t, summary.Achievements, achievements.PerfectScore)
		}
	}

	// Completed sessions reject further submissions and advances.
	_, err := sess.SubmitAnswer("q3", answers[2])
	assert.ErrorIs(t, err, ErrNotInProgress)
	_, _, err = sess.Advance()
	assert.ErrorIs(t, err, ErrNotInProgress)

	summary, err := sess.Summary()
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, sess.Status())
	assert.NotNil(t, summary)
}

func TestReset_RoundTripYieldsSameScore(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	sess := newTestSession(t, clock)

	runThrough := func() int {
		answers := map[string]models.AnswerValue{
			"q1": models.SingleChoiceAnswer{SelectedIndex: 2},
			"q2": models.FillBlankAnswer{Text: "42"},
			"q3": models.CodeOutputAnswer{Output: "1"},
		}
		for _, q := range testQuestions() {
			clock.Advance(5 * time.Second)
			_, err := sess.SubmitAnswer(q.ID, answers[q.ID])
			require.NoError(t, err)
			_, _, err = sess.Advance()
			require.NoError(t, err)
		}
		return sess.TotalScore()
	}

	firstPass := runThrough()

	require.NoError(t, sess.Reset())
	assert.Equal(t, models.SessionInProgress, sess.Status())
	assert.Equal(t, 0, sess.CurrentIndex())
	assert.Equal(t, 0, sess.TotalScore())
	assert.Equal(t, 0, sess.Streak())
	_, found := sess.ReviewAnswer("q1")
	assert.False(t, found)

	// Attempt numbers reset to 1, so identical answers score identically.
	secondPass := runThrough()
	assert.Equal(t, firstPass, secondPass)
}

func TestReset_InvalidBeforeInitialize(t *testing.T) {
	logger := utils.NewDevelopmentLogger()
	sess := New(Config{
		ID:        "sess-idle",
		Grader:    grading.NewEngine(logger),
		Evaluator: achievements.NewEvaluator(nil),
		Logger:    logger,
	})

	assert.ErrorIs(t, sess.Reset(), ErrNotResettable)
}

func TestAchievements_NeverGrantedTwice(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	// The user already holds perfect-score from a previous session.
	sess := newTestSession(t, clock, achievements.PerfectScore)

	clock.Advance(5 * time.Second)
	outcome, err := sess.SubmitAnswer("q1", models.SingleChoiceAnswer{SelectedIndex: 2})
	require.NoError(t, err)

	for _, u := range outcome.Unlocked {
		assert.NotEqual(t, achievements.PerfectScore, u.AchievementID)
	}
}

func TestRecordHintUsed_AffectsNextScore(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	sess := newTestSession(t, clock)

	require.NoError(t, sess.RecordHintUsed("q1"))
	assert.Equal(t, 1, sess.HintsUsed("q1"))

	clock.Advance(5 * time.Second)
	outcome, err := sess.SubmitAnswer("q1", models.SingleChoiceAnswer{SelectedIndex: 2})
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Record.HintsUsed)
	assert.Equal(t, 20, outcome.Breakdown.Total) // 25 * 0.8 hint penalty
}

func TestRecordHintUsed_UnknownQuestion(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	sess := newTestSession(t, clock)

	err := sess.RecordHintUsed("missing")
	var sequenceViolation *SequenceViolationError
	assert.True(t, errors.As(err, &sequenceViolation))
}

func TestReviewAnswer_ReadOnly(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	sess := newTestSession(t, clock)

	clock.Advance(5 * time.Second)
	_, err := sess.SubmitAnswer("q1", models.SingleChoiceAnswer{SelectedIndex: 2})
	require.NoError(t, err)
	_, _, err = sess.Advance()
	require.NoError(t, err)

	scoreBefore := sess.TotalScore()
	indexBefore := sess.CurrentIndex()

	record, found := sess.ReviewAnswer("q1")
	require.True(t, found)
	assert.True(t, record.IsCorrect)

	assert.Equal(t, scoreBefore, sess.TotalScore())
	assert.Equal(t, indexBefore, sess.CurrentIndex())
}

func TestSummary_OnlyWhenCompleted(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	sess := newTestSession(t, clock)

	_, err := sess.Summary()
	assert.ErrorIs(t, err, ErrNotCompleted)
}
