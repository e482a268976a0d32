package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for TopicProgress
var (
	ErrEmptyProgressUserID = errors.New("topic progress user ID cannot be empty")
	ErrEmptyProgressSlug   = errors.New("topic progress topic slug cannot be empty")
	ErrNegativeXP          = errors.New("xp totals must be greater than or equal to 0")
	ErrNegativeDailyCount  = errors.New("daily tasks count must be greater than or equal to 0")
	ErrNegativeSRSStage    = errors.New("srs stage must be greater than or equal to 0")
)

// TopicProgress tracks a user's XP and spaced-repetition state for one topic.
// There is exactly one row per (user, topic) pair; it is created lazily on the
// first submission and mutated only by the XP engine.
type TopicProgress struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TopicSlug string    `json:"topic_slug"`

	// CurrentXP and TotalXPEarned are both monotonically non-decreasing.
	// They are kept separate so a future XP-spending feature can lower
	// CurrentXP without losing the lifetime total.
	CurrentXP     int64 `json:"current_xp"`
	TotalXPEarned int64 `json:"total_xp_earned"`

	Level int `json:"level"` // Derived from CurrentXP, cached

	// Daily throttle state. DailyTasksCount applies to the calendar day in
	// DailyTasksDate and resets implicitly when a submission arrives on a
	// different day.
	DailyTasksCount int        `json:"daily_tasks_count"`
	DailyTasksDate  *time.Time `json:"daily_tasks_date,omitempty"`

	// SRSStage is the repetition step index. NextReviewDate nil means the
	// topic is always due (never reviewed, or graduated past the last
	// configured interval).
	SRSStage       int        `json:"srs_stage"`
	NextReviewDate *time.Time `json:"next_review_date,omitempty"`

	LastActivity      time.Time  `json:"last_activity"`
	LastPracticedDate *time.Time `json:"last_practiced_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// NewTopicProgress creates zeroed progress for a user and topic.
// The topic starts hot: no review is scheduled, so every task is due.
func NewTopicProgress(userID uuid.UUID, topicSlug string) (*TopicProgress, error) {
	now := time.Now().UTC()
	progress := &TopicProgress{
		ID:           uuid.New(),
		UserID:       userID,
		TopicSlug:    topicSlug,
		LastActivity: now,
		CreatedAt:    now,
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return progress, nil
}

// Validate checks if the TopicProgress has valid data.
// Returns an error if any field fails validation.
func (p *TopicProgress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyProgressUserID
	}

	if p.TopicSlug == "" {
		return ErrEmptyProgressSlug
	}

	if p.CurrentXP < 0 || p.TotalXPEarned < 0 {
		return ErrNegativeXP
	}

	if p.DailyTasksCount < 0 {
		return ErrNegativeDailyCount
	}

	if p.SRSStage < 0 {
		return ErrNegativeSRSStage
	}

	return nil
}
