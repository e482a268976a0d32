package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/praxislabs/praxis-api/internal/domain"
)

// TopicAttemptStats aggregates a user's attempt history within one topic.
// Only correct attempts count toward the aggregates.
type TopicAttemptStats struct {
	// CompletedTasks is the number of distinct tasks answered correctly.
	CompletedTasks int
	// MasteredTasks is the number of correct attempts at full mastery.
	MasteredTasks int
	// AvgMastery is the mean mastery level across correct attempts.
	AvgMastery float64
	// TasksDue is the number of correct, not-yet-mastered attempts whose
	// review date has arrived.
	TasksDue int
}

// AttemptStore defines the interface for task attempt persistence.
// Attempts form an append-only log; there is no update or delete.
// Version: 1.0
type AttemptStore interface {
	// Create appends a new attempt to the log.
	// It handles domain validation internally.
	Create(ctx context.Context, attempt *domain.TaskAttempt) error

	// GetLastForTask retrieves the most recent attempt the user made at the
	// given task, by completion time.
	// Returns ErrAttemptNotFound if the user has never attempted the task.
	GetLastForTask(ctx context.Context, userID uuid.UUID, taskID string) (*domain.TaskAttempt, error)

	// ListCompletedTaskIDs retrieves the distinct task IDs the user has
	// answered correctly within the topic, ordered by task ID.
	// Returns an empty slice when there are none.
	ListCompletedTaskIDs(ctx context.Context, userID uuid.UUID, topicSlug string) ([]string, error)

	// ListForTask retrieves the user's full attempt history for one task,
	// most recent first, limited to the given count (0 means no limit).
	ListForTask(ctx context.Context, userID uuid.UUID, taskID string, limit int) ([]*domain.TaskAttempt, error)

	// GetTopicStats aggregates the user's attempt counts within one topic,
	// relative to the given calendar day for the due count.
	// A user with no attempts gets zero counts, not an error.
	GetTopicStats(ctx context.Context, userID uuid.UUID, topicSlug string, today time.Time) (*TopicAttemptStats, error)

	// ListDueForReview retrieves the user's correct, not-yet-mastered
	// attempts within the topic whose own review date has arrived on or
	// before the given day, most overdue first.
	// Only the latest attempt per task is considered.
	ListDueForReview(ctx context.Context, userID uuid.UUID, topicSlug string, today time.Time) ([]*domain.TaskAttempt, error)

	// WithTx returns a new AttemptStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) AttemptStore
}
