package achievements

import (
	"time"

	"github.com/codewithmorais/quiz-session-service/internal/models"
)

// Built-in achievement ids.
const (
	PerfectScore = "perfect-score"
	SpeedRunner  = "speed-achievement"
	HotStreak    = "streak-achievement"
)

// DefaultCatalog returns the built-in achievement table. Additional entries
// can be registered on the evaluator without touching its code.
func DefaultCatalog() []models.Achievement {
	return []models.Achievement{
		{
			ID:           PerfectScore,
			Title:        "Perfect Score",
			RewardPoints: 50,
			Condition: func(s models.PerformanceSnapshot) bool {
				return s.TotalCount > 0 && s.CorrectCount == s.TotalCount
			},
		},
		{
			ID:           SpeedRunner,
			Title:        "Speed Runner",
			RewardPoints: 30,
			Condition: func(s models.PerformanceSnapshot) bool {
				return s.AverageTimeMs < 15000
			},
		},
		{
			ID:           HotStreak,
			Title:        "Hot Streak",
			RewardPoints: 40,
			Condition: func(s models.PerformanceSnapshot) bool {
				return s.CurrentStreak >= 10
			},
		},
	}
}

// Evaluator checks a performance snapshot against its catalog. Check is pure
// with respect to its inputs; the caller owns persisting the unlocked set
// before the next call, otherwise the same achievement can be emitted again
// across calls.
type Evaluator struct {
	catalog []models.Achievement
	now     func() time.Time
}

func NewEvaluator(catalog []models.Achievement) *Evaluator {
	return &Evaluator{catalog: catalog, now: time.Now}
}

// NewEvaluatorWithClock is test-only for deterministic timestamps.
func NewEvaluatorWithClock(catalog []models.Achievement, now func() time.Time) *Evaluator {
	return &Evaluator{catalog: catalog, now: now}
}

// Register adds a custom achievement to the catalog.
func (e *Evaluator) Register(achievement models.Achievement) {
	e.catalog = append(e.catalog, achievement)
}

// Check returns achievements whose condition holds for the snapshot and
// whose id is not already unlocked. Each id appears at most once per call
// even if the catalog carries duplicate entries for it.
func (e *Evaluator) Check(snapshot models.PerformanceSnapshot, alreadyUnlocked map[string]bool) []models.UnlockedAchievement {
	var unlocked []models.UnlockedAchievement
	seen := make(map[string]bool, len(e.catalog))

	for _, achievement := range e.catalog {
		if alreadyUnlocked[achievement.ID] || seen[achievement.ID] {
			continue
		}
		if achievement.Condition == nil || !achievement.Condition(snapshot) {
			continue
		}
		seen[achievement.ID] = true
		unlocked = append(unlocked, models.UnlockedAchievement{
			AchievementID: achievement.ID,
			RewardPoints:  achievement.RewardPoints,
			EarnedAt:      e.now(),
		})
	}

	return unlocked
}
