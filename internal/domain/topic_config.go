package domain

import (
	"errors"
	"sort"
	"time"
)

// Common validation errors for TopicConfig
var (
	ErrEmptyTopicSlug        = errors.New("topic config slug cannot be empty")
	ErrEmptyTopicTitle       = errors.New("topic config title cannot be empty")
	ErrInvalidMultiplier     = errors.New("multipliers must be greater than 0")
	ErrInvalidThresholds     = errors.New("level thresholds must be strictly ascending")
	ErrInvalidReviewInterval = errors.New("review intervals must be non-negative")
)

// Fallback tuning values applied when a TopicConfig row leaves the optional
// parameters unset. A missing config row is never defaulted; only missing
// fields inside an existing row are.
var (
	DefaultDailyFullTasks  = 10
	DefaultDailyHalfTasks  = 10
	DefaultMultiplierFull  = 1.0
	DefaultMultiplierHalf  = 0.5
	DefaultMultiplierLow   = 0.1
	DefaultMultiplierEarly = 0.1
	DefaultLevelThresholds = []int{1000, 2500, 4500, 7000, 10000}
	DefaultReviewIntervals = []int{1, 3, 7, 14, 30}
)

// TopicConfig holds the per-topic tuning parameters for the XP engine.
// Rows are immutable per version: the engine only reads them, and the
// topicsync service upserts them from configuration source documents.
type TopicConfig struct {
	TopicSlug  string  `json:"topic_slug"`
	TopicTitle string  `json:"topic_title"`
	Category   string  `json:"category"`
	Difficulty *string `json:"difficulty,omitempty"`

	MaxXP      int `json:"max_xp"`
	BaseTaskXP int `json:"base_task_xp"`

	// The first DailyFullTasks submissions of a day earn MultiplierFull,
	// the next DailyHalfTasks earn MultiplierHalf, everything after that
	// earns MultiplierLow.
	DailyFullTasks int `json:"daily_full_tasks"`
	DailyHalfTasks int `json:"daily_half_tasks"`

	MultiplierFull  float64 `json:"multiplier_full"`
	MultiplierHalf  float64 `json:"multiplier_half"`
	MultiplierLow   float64 `json:"multiplier_low"`
	MultiplierEarly float64 `json:"multiplier_early"`

	// LevelThresholds is an ascending list of cumulative-XP cutoffs; the
	// level is the count of thresholds at or below the current XP.
	LevelThresholds []int `json:"level_thresholds"`

	// ReviewIntervals[stage] is the number of days added to "today" when a
	// review advances from that repetition stage.
	ReviewIntervals []int `json:"review_intervals"`

	// Legacy decay-path tuning (see xp.CalculateDecay).
	DailyXPDecay float64 `json:"daily_xp_decay"`
	MinXPPercent float64 `json:"min_xp_percent"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the TopicConfig has valid data.
// Returns an error if any field fails validation.
func (c *TopicConfig) Validate() error {
	if c.TopicSlug == "" {
		return ErrEmptyTopicSlug
	}

	if c.TopicTitle == "" {
		return ErrEmptyTopicTitle
	}

	if c.MultiplierFull <= 0 || c.MultiplierHalf <= 0 || c.MultiplierLow <= 0 || c.MultiplierEarly <= 0 {
		return ErrInvalidMultiplier
	}

	if !sort.IntsAreSorted(c.LevelThresholds) {
		return ErrInvalidThresholds
	}
	for i := 1; i < len(c.LevelThresholds); i++ {
		if c.LevelThresholds[i] == c.LevelThresholds[i-1] {
			return ErrInvalidThresholds
		}
	}

	for _, days := range c.ReviewIntervals {
		if days < 0 {
			return ErrInvalidReviewInterval
		}
	}

	return nil
}

// ApplyDefaults fills in the fallback values for any optional tuning field
// left unset, so a minimally specified config still functions.
func (c *TopicConfig) ApplyDefaults() {
	if c.DailyFullTasks == 0 {
		c.DailyFullTasks = DefaultDailyFullTasks
	}
	if c.DailyHalfTasks == 0 {
		c.DailyHalfTasks = DefaultDailyHalfTasks
	}
	if c.MultiplierFull == 0 {
		c.MultiplierFull = DefaultMultiplierFull
	}
	if c.MultiplierHalf == 0 {
		c.MultiplierHalf = DefaultMultiplierHalf
	}
	if c.MultiplierLow == 0 {
		c.MultiplierLow = DefaultMultiplierLow
	}
	if c.MultiplierEarly == 0 {
		c.MultiplierEarly = DefaultMultiplierEarly
	}
	if len(c.LevelThresholds) == 0 {
		c.LevelThresholds = append([]int(nil), DefaultLevelThresholds...)
	}
	if len(c.ReviewIntervals) == 0 {
		c.ReviewIntervals = append([]int(nil), DefaultReviewIntervals...)
	}
}
