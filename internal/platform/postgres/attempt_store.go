package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/praxislabs/praxis-api/internal/domain"
	"github.com/praxislabs/praxis-api/internal/platform/logger"
	"github.com/praxislabs/praxis-api/internal/store"
)

// PostgresAttemptStore implements the store.AttemptStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAttemptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAttemptStore creates a new PostgreSQL implementation of the AttemptStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresAttemptStore(db store.DBTX, logger *slog.Logger) *PostgresAttemptStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAttemptStore{
		db:     db,
		logger: logger.With(slog.String("component", "attempt_store")),
	}
}

// Ensure PostgresAttemptStore implements store.AttemptStore interface
var _ store.AttemptStore = (*PostgresAttemptStore)(nil)

// WithTx implements store.AttemptStore.WithTx
func (s *PostgresAttemptStore) WithTx(tx *sql.Tx) store.AttemptStore {
	return &PostgresAttemptStore{
		db:     tx,
		logger: s.logger,
	}
}

const attemptColumns = `
	id, user_id, task_id, topic_slug,
	completed_at, xp_earned, is_correct,
	next_review_date, review_count, mastery_level
`

func scanAttempt(scan func(dest ...any) error) (*domain.TaskAttempt, error) {
	var attempt domain.TaskAttempt
	err := scan(
		&attempt.ID,
		&attempt.UserID,
		&attempt.TaskID,
		&attempt.TopicSlug,
		&attempt.CompletedAt,
		&attempt.XPEarned,
		&attempt.IsCorrect,
		&attempt.NextReviewDate,
		&attempt.ReviewCount,
		&attempt.MasteryLevel,
	)
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// Create implements store.AttemptStore.Create
// Returns store.ErrInvalidEntity if the user does not exist (foreign key violation).
func (s *PostgresAttemptStore) Create(ctx context.Context, attempt *domain.TaskAttempt) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := attempt.Validate(); err != nil {
		log.Warn("attempt validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", attempt.TaskID))
		return err
	}

	query := `
		INSERT INTO user_task_attempts (` + attemptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		attempt.ID,
		attempt.UserID,
		attempt.TaskID,
		attempt.TopicSlug,
		attempt.CompletedAt,
		attempt.XPEarned,
		attempt.IsCorrect,
		attempt.NextReviewDate,
		attempt.ReviewCount,
		attempt.MasteryLevel,
	)
	if err != nil {
		log.Error("failed to create attempt",
			slog.String("error", err.Error()),
			slog.String("user_id", attempt.UserID.String()),
			slog.String("task_id", attempt.TaskID))
		return MapError(err)
	}

	log.Debug("attempt recorded",
		slog.String("user_id", attempt.UserID.String()),
		slog.String("task_id", attempt.TaskID),
		slog.Bool("is_correct", attempt.IsCorrect),
		slog.Int("xp_earned", attempt.XPEarned))
	return nil
}

// GetLastForTask implements store.AttemptStore.GetLastForTask
// Returns store.ErrAttemptNotFound if the user has never attempted the task.
func (s *PostgresAttemptStore) GetLastForTask(
	ctx context.Context,
	userID uuid.UUID,
	taskID string,
) (*domain.TaskAttempt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + attemptColumns + `
		FROM user_task_attempts
		WHERE user_id = $1 AND task_id = $2
		ORDER BY completed_at DESC
		LIMIT 1
	`

	attempt, err := scanAttempt(s.db.QueryRowContext(ctx, query, userID, taskID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAttemptNotFound
		}
		log.Error("failed to get last attempt",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("task_id", taskID))
		return nil, MapError(err)
	}

	return attempt, nil
}

// ListCompletedTaskIDs implements store.AttemptStore.ListCompletedTaskIDs
// Returns an empty slice when the user has no correct attempts in the topic.
func (s *PostgresAttemptStore) ListCompletedTaskIDs(
	ctx context.Context,
	userID uuid.UUID,
	topicSlug string,
) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT DISTINCT task_id
		FROM user_task_attempts
		WHERE user_id = $1 AND topic_slug = $2 AND is_correct = TRUE
		ORDER BY task_id
	`

	rows, err := s.db.QueryContext(ctx, query, userID, topicSlug)
	if err != nil {
		log.Error("failed to list completed task IDs",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("topic_slug", topicSlug))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	taskIDs := []string{}
	for rows.Next() {
		var taskID string
		if err := rows.Scan(&taskID); err != nil {
			log.Error("failed to scan task ID", slog.String("error", err.Error()))
			return nil, err
		}
		taskIDs = append(taskIDs, taskID)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return taskIDs, nil
}

// ListForTask implements store.AttemptStore.ListForTask
// History is returned most recent first; limit 0 means no limit.
func (s *PostgresAttemptStore) ListForTask(
	ctx context.Context,
	userID uuid.UUID,
	taskID string,
	limit int,
) ([]*domain.TaskAttempt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + attemptColumns + `
		FROM user_task_attempts
		WHERE user_id = $1 AND task_id = $2
		ORDER BY completed_at DESC
	`
	args := []any{userID, taskID}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list attempts for task",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("task_id", taskID))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	attempts := []*domain.TaskAttempt{}
	for rows.Next() {
		attempt, err := scanAttempt(rows.Scan)
		if err != nil {
			log.Error("failed to scan attempt row", slog.String("error", err.Error()))
			return nil, err
		}
		attempts = append(attempts, attempt)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return attempts, nil
}

// GetTopicStats implements store.AttemptStore.GetTopicStats
// Only correct attempts count; the mastery cap is 5.
// A user with no attempts gets zero counts, not an error.
func (s *PostgresAttemptStore) GetTopicStats(
	ctx context.Context,
	userID uuid.UUID,
	topicSlug string,
	today time.Time,
) (*store.TopicAttemptStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT
			COUNT(DISTINCT task_id),
			COUNT(*) FILTER (WHERE mastery_level >= 5),
			COALESCE(AVG(mastery_level), 0),
			COUNT(*) FILTER (
				WHERE mastery_level < 5
				AND next_review_date IS NOT NULL
				AND next_review_date <= $3
			)
		FROM user_task_attempts
		WHERE user_id = $1 AND topic_slug = $2 AND is_correct = TRUE
	`

	var stats store.TopicAttemptStats
	err := s.db.QueryRowContext(ctx, query, userID, topicSlug, today).Scan(
		&stats.CompletedTasks,
		&stats.MasteredTasks,
		&stats.AvgMastery,
		&stats.TasksDue,
	)
	if err != nil {
		log.Error("failed to get topic attempt stats",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("topic_slug", topicSlug))
		return nil, MapError(err)
	}

	return &stats, nil
}

// ListDueForReview implements store.AttemptStore.ListDueForReview
// Only the latest correct, not-yet-mastered attempt per task counts;
// superseded rows are ignored.
func (s *PostgresAttemptStore) ListDueForReview(
	ctx context.Context,
	userID uuid.UUID,
	topicSlug string,
	today time.Time,
) ([]*domain.TaskAttempt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + attemptColumns + `
		FROM (
			SELECT DISTINCT ON (task_id) ` + attemptColumns + `
			FROM user_task_attempts
			WHERE user_id = $1 AND topic_slug = $2
				AND is_correct = TRUE AND mastery_level < 5
			ORDER BY task_id, completed_at DESC
		) latest
		WHERE next_review_date IS NOT NULL AND next_review_date <= $3
		ORDER BY next_review_date
	`

	rows, err := s.db.QueryContext(ctx, query, userID, topicSlug, today)
	if err != nil {
		log.Error("failed to list attempts due for review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	attempts := []*domain.TaskAttempt{}
	for rows.Next() {
		attempt, err := scanAttempt(rows.Scan)
		if err != nil {
			log.Error("failed to scan attempt row", slog.String("error", err.Error()))
			return nil, err
		}
		attempts = append(attempts, attempt)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return attempts, nil
}
