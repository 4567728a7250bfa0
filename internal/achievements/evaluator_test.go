package achievements

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/codewithmorais/quiz-session-service/internal/models"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEvaluator() *Evaluator {
	return NewEvaluatorWithClock(DefaultCatalog(), func() time.Time { return fixedNow })
}

func unlockedIDs(unlocked []models.UnlockedAchievement) []string {
	ids := make([]string, 0, len(unlocked))
	for _, u := range unlocked {
		ids = append(ids, u.AchievementID)
	}
	return ids
}

func TestCheck_PerfectScore(t *testing.T) {
	evaluator := newTestEvaluator()
	snapshot := models.PerformanceSnapshot{
		CorrectCount:  5,
		TotalCount:    5,
		AverageTimeMs: 20000,
		CurrentStreak: 5,
	}

	unlocked := evaluator.Check(snapshot, map[string]bool{})
	assert.Equal(t, []string{PerfectScore}, unlockedIDs(unlocked))
	assert.Equal(t, fixedNow, unlocked[0].EarnedAt)
	assert.Equal(t, 50, unlocked[0].RewardPoints)
}

func TestCheck_PerfectScoreRequiresAnswers(t *testing.T) {
	evaluator := newTestEvaluator()
	snapshot := models.PerformanceSnapshot{CorrectCount: 0, TotalCount: 0, AverageTimeMs: 20000}

	unlocked := evaluator.Check(snapshot, map[string]bool{})
	assert.NotContains(t, unlockedIDs(unlocked), PerfectScore)
}

func TestCheck_SpeedRunner(t *testing.T) {
	evaluator := newTestEvaluator()

	fast := models.PerformanceSnapshot{CorrectCount: 3, TotalCount: 5, AverageTimeMs: 14999}
	assert.Contains(t, unlockedIDs(evaluator.Check(fast, map[string]bool{})), SpeedRunner)

	slow := models.PerformanceSnapshot{CorrectCount: 3, TotalCount: 5, AverageTimeMs: 15000}
	assert.NotContains(t, unlockedIDs(evaluator.Check(slow, map[string]bool{})), SpeedRunner)
}

func TestCheck_HotStreak(t *testing.T) {
	evaluator := newTestEvaluator()

	nine := models.PerformanceSnapshot{CorrectCount: 9, TotalCount: 10, AverageTimeMs: 20000, CurrentStreak: 9}
	assert.NotContains(t, unlockedIDs(evaluator.Check(nine, map[string]bool{})), HotStreak)

	ten := models.PerformanceSnapshot{CorrectCount: 10, TotalCount: 11, AverageTimeMs: 20000, CurrentStreak: 10}
	assert.Contains(t, unlockedIDs(evaluator.Check(ten, map[string]bool{})), HotStreak)
}

func TestCheck_SkipsAlreadyUnlocked(t *testing.T) {
	evaluator := newTestEvaluator()
	snapshot := models.PerformanceSnapshot{
		CorrectCount:  5,
		TotalCount:    5,
		AverageTimeMs: 10000,
		CurrentStreak: 10,
	}

	already := map[string]bool{PerfectScore: true, SpeedRunner: true}
	unlocked := evaluator.Check(snapshot, already)
	assert.Equal(t, []string{HotStreak}, unlockedIDs(unlocked))
}

func TestCheck_NeverEmitsSameIDTwicePerCall(t *testing.T) {
	catalog := DefaultCatalog()
	// A duplicate catalog entry for the same id must not produce two unlocks.
	catalog = append(catalog, models.Achievement{
		ID:           PerfectScore,
		Title:        "Perfect Score (duplicate)",
		RewardPoints: 99,
		Condition: func(s models.PerformanceSnapshot) bool {
			return s.TotalCount > 0 && s.CorrectCount == s.TotalCount
		},
	})
	evaluator := NewEvaluatorWithClock(catalog, func() time.Time { return fixedNow })

	snapshot := models.PerformanceSnapshot{CorrectCount: 5, TotalCount: 5, AverageTimeMs: 20000}
	unlocked := evaluator.Check(snapshot, map[string]bool{})

	var perfectCount int
	for _, u := range unlocked {
		if u.AchievementID == PerfectScore {
			perfectCount++
		}
	}
	assert.Equal(t, 1, perfectCount)
}

func TestCheck_PureAcrossCalls(t *testing.T) {
	// The evaluator holds no hidden state: until the caller updates the
	// unlocked set, repeated calls re-emit the same achievement.
	evaluator := newTestEvaluator()
	snapshot := models.PerformanceSnapshot{CorrectCount: 5, TotalCount: 5, AverageTimeMs: 20000}

	first := evaluator.Check(snapshot, map[string]bool{})
	second := evaluator.Check(snapshot, map[string]bool{})
	assert.Equal(t, unlockedIDs(first), unlockedIDs(second))

	// Once persisted, the id is suppressed.
	third := evaluator.Check(snapshot, map[string]bool{PerfectScore: true})
	assert.NotContains(t, unlockedIDs(third), PerfectScore)
}

func TestRegister_CustomAchievement(t *testing.T) {
	evaluator := newTestEvaluator()
	evaluator.Register(models.Achievement{
		ID:           "marathon",
		Title:        "Marathon",
		RewardPoints: 20,
		Condition: func(s models.PerformanceSnapshot) bool {
			return s.TotalCount >= 50
		},
	})

	snapshot := models.PerformanceSnapshot{CorrectCount: 30, TotalCount: 50, AverageTimeMs: 20000}
	assert.Contains(t, unlockedIDs(evaluator.Check(snapshot, map[string]bool{})), "marathon")
}

func TestCheck_NilConditionNeverFires(t *testing.T) {
	evaluator := NewEvaluatorWithClock([]models.Achievement{
		{ID: "broken", Title: "Broken", RewardPoints: 1},
	}, func() time.Time { return fixedNow })

	unlocked := evaluator.Check(models.PerformanceSnapshot{CorrectCount: 1, TotalCount: 1}, map[string]bool{})
	assert.Empty(t, unlocked)
}
