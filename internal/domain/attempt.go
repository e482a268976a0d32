package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for TaskAttempt
var (
	ErrEmptyAttemptUserID = errors.New("task attempt user ID cannot be empty")
	ErrEmptyAttemptTaskID = errors.New("task attempt task ID cannot be empty")
	ErrEmptyAttemptSlug   = errors.New("task attempt topic slug cannot be empty")
)

// TaskAttempt is one append-only audit record per task submission.
// Attempts are written once and never mutated.
type TaskAttempt struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TaskID    string    `json:"task_id"`
	TopicSlug string    `json:"topic_slug"`

	CompletedAt time.Time `json:"completed_at"`
	XPEarned    int       `json:"xp_earned"`
	IsCorrect   bool      `json:"is_correct"`

	// Snapshot of the schedule state produced by the submission.
	NextReviewDate *time.Time `json:"next_review_date,omitempty"`
	ReviewCount    int        `json:"review_count"`
	MasteryLevel   int        `json:"mastery_level"`
}

// NewTaskAttempt creates an attempt record for a submission.
func NewTaskAttempt(userID uuid.UUID, taskID, topicSlug string) (*TaskAttempt, error) {
	attempt := &TaskAttempt{
		ID:          uuid.New(),
		UserID:      userID,
		TaskID:      taskID,
		TopicSlug:   topicSlug,
		CompletedAt: time.Now().UTC(),
	}

	if err := attempt.Validate(); err != nil {
		return nil, err
	}

	return attempt, nil
}

// Validate checks if the TaskAttempt has valid data.
func (a *TaskAttempt) Validate() error {
	if a.UserID == uuid.Nil {
		return ErrEmptyAttemptUserID
	}

	if a.TaskID == "" {
		return ErrEmptyAttemptTaskID
	}

	if a.TopicSlug == "" {
		return ErrEmptyAttemptSlug
	}

	return nil
}
