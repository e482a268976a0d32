package xp

import "time"

// CalculationResult describes a single XP award for display to the caller.
// It is returned from the engine and never persisted as such; the attempt log
// stores a snapshot of the relevant fields.
type CalculationResult struct {
	XPEarned       int        `json:"xp_earned"`
	NextReviewDate *time.Time `json:"next_review_date,omitempty"`
	MasteryLevel   int        `json:"mastery_level"`
	ReviewCount    int        `json:"review_count"`
	Message        string     `json:"message"`

	IsScheduledReview bool    `json:"is_scheduled_review"`
	Multiplier        float64 `json:"multiplier"`
	DailyTaskIndex    int     `json:"daily_task_index"`
	IsTooEarly        bool    `json:"is_too_early"`
	IsHotTopic        bool    `json:"is_hot_topic"`
}

// LevelInfo carries the derived progress-bar fields for a level: the XP floor
// of the current level and the threshold of the next one (nil at max level).
type LevelInfo struct {
	Level             int    `json:"level"`
	CurrentLevelMinXP int64  `json:"current_level_min_xp"`
	NextLevelXP       *int64 `json:"next_level_xp,omitempty"`
}
