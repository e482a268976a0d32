// Package scoring exposes the application-level XP operations: scoring task
// submissions, reading per-topic progress, and the legacy decay preview. It
// orchestrates the stores and the pure calculation engine in internal/domain/xp
// and owns the transaction boundaries around submissions.
package scoring

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/praxislabs/praxis-api/internal/domain"
	"github.com/praxislabs/praxis-api/internal/domain/xp"
)

// Service-level errors returned to handlers. Store sentinels are translated
// into these at the service boundary.
var (
	// ErrTopicConfigNotFound indicates no scoring configuration exists for
	// the requested topic. Submissions against unknown topics are rejected.
	ErrTopicConfigNotFound = errors.New("no scoring configuration for topic")

	// ErrProgressNotFound indicates the user has no recorded progress for
	// the requested topic.
	ErrProgressNotFound = errors.New("no progress recorded for topic")

	// ErrInvalidInput indicates a request failed validation before any
	// storage access.
	ErrInvalidInput = errors.New("invalid input")
)

// SubmitTaskRequest carries one task submission.
type SubmitTaskRequest struct {
	TaskID    string
	TopicSlug string
	IsCorrect bool

	// TaskBaseXP overrides every other base-XP source when set.
	TaskBaseXP *int
	// TaskDifficulty selects a difficulty-keyed base award when TaskBaseXP
	// is absent.
	TaskDifficulty string
}

// SubmitTaskResult is the outcome of a submission: the award details and the
// progress row after the submission. Progress is nil when an incorrect
// submission arrives for a topic the user has never practiced.
type SubmitTaskResult struct {
	Calculation *xp.CalculationResult `json:"calculation"`
	Progress    *domain.TopicProgress `json:"progress,omitempty"`
}

// CalculateTaskXPRequest carries the inputs of the legacy decay preview.
type CalculateTaskXPRequest struct {
	TaskID         string
	TopicSlug      string
	TaskBaseXP     *int
	TaskDifficulty string
}

// TopicXPSummary combines a progress row with the level geometry derived from
// the topic's thresholds, plus display fields from the topic config.
type TopicXPSummary struct {
	TopicSlug  string                `json:"topic_slug"`
	TopicTitle string                `json:"topic_title,omitempty"`
	Category   string                `json:"category,omitempty"`
	Progress   *domain.TopicProgress `json:"progress"`
	LevelInfo  xp.LevelInfo          `json:"level_info"`
}

// TopicStats aggregates a user's attempt history within one topic.
// Only correct attempts count.
type TopicStats struct {
	CompletedTasks int     `json:"completed_tasks"`
	MasteredTasks  int     `json:"mastered_tasks"`
	AvgMastery     float64 `json:"avg_mastery"`
	TasksDue       int     `json:"tasks_due"`
}

// ScoringService defines the application operations around XP scoring.
type ScoringService interface {
	// SubmitTask scores one task submission. A correct submission awards XP,
	// advances the repetition schedule when due, and records an attempt, all
	// atomically. An incorrect submission only records an attempt with zero
	// XP; progress and schedule are untouched.
	SubmitTask(ctx context.Context, userID uuid.UUID, req SubmitTaskRequest) (*SubmitTaskResult, error)

	// GetTopicXP retrieves the user's progress in one topic together with
	// the derived level geometry.
	// Returns ErrProgressNotFound if the user has never practiced the topic.
	GetTopicXP(ctx context.Context, userID uuid.UUID, topicSlug string) (*TopicXPSummary, error)

	// ListTopicXP retrieves the user's progress across all topics, most
	// recently active first.
	ListTopicXP(ctx context.Context, userID uuid.UUID) ([]*TopicXPSummary, error)

	// GetCompletedTaskIDs retrieves the task IDs the user has answered
	// correctly in the topic, for filtering out finished tasks client-side.
	// When the topic is due for review the whole pool opens up again, so the
	// list is empty.
	GetCompletedTaskIDs(ctx context.Context, userID uuid.UUID, topicSlug string) ([]string, error)

	// GetTopicStats aggregates the user's attempt counts within one topic.
	GetTopicStats(ctx context.Context, userID uuid.UUID, topicSlug string) (*TopicStats, error)

	// GetTaskHistory retrieves the user's attempt history for one task, most
	// recent first, limited to the given count (0 means no limit).
	GetTaskHistory(ctx context.Context, userID uuid.UUID, taskID string, limit int) ([]*domain.TaskAttempt, error)

	// ListTasksDueForReview retrieves the user's correct, not-yet-mastered
	// attempts within the topic whose review date has arrived.
	ListTasksDueForReview(ctx context.Context, userID uuid.UUID, topicSlug string) ([]*domain.TaskAttempt, error)

	// CalculateTaskXP runs the legacy per-task decay calculation against the
	// user's most recent attempt at the task, without persisting anything.
	CalculateTaskXP(ctx context.Context, userID uuid.UUID, req CalculateTaskXPRequest) (*xp.CalculationResult, error)
}
