package models

import "time"

// AchievementCondition decides whether an achievement unlocks for a given
// performance snapshot. Conditions must be pure.
type AchievementCondition func(snapshot PerformanceSnapshot) bool

// Achievement is an immutable catalog entry.
type Achievement struct {
	ID           string
	Title        string
	RewardPoints int
	Condition    AchievementCondition
}

// UnlockedAchievement records one achievement earned by one user. The
// unlocked set grows monotonically and is deduplicated by achievement id.
type UnlockedAchievement struct {
	AchievementID string    `json:"achievement_id"`
	RewardPoints  int       `json:"reward_points"`
	EarnedAt      time.Time `json:"earned_at"`
}
