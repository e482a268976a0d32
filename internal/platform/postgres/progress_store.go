package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/praxislabs/praxis-api/internal/domain"
	"github.com/praxislabs/praxis-api/internal/platform/logger"
	"github.com/praxislabs/praxis-api/internal/store"
)

// PostgresProgressStore implements the store.ProgressStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the ProgressStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// WithTx implements store.ProgressStore.WithTx
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{
		db:     tx,
		logger: s.logger,
	}
}

const progressColumns = `
	id, user_id, topic_slug,
	current_xp, total_xp_earned, level,
	daily_tasks_count, daily_tasks_date,
	srs_stage, next_review_date,
	last_activity, last_practiced_date, created_at
`

func scanProgress(scan func(dest ...any) error) (*domain.TopicProgress, error) {
	var progress domain.TopicProgress
	err := scan(
		&progress.ID,
		&progress.UserID,
		&progress.TopicSlug,
		&progress.CurrentXP,
		&progress.TotalXPEarned,
		&progress.Level,
		&progress.DailyTasksCount,
		&progress.DailyTasksDate,
		&progress.SRSStage,
		&progress.NextReviewDate,
		&progress.LastActivity,
		&progress.LastPracticedDate,
		&progress.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// Create implements store.ProgressStore.Create
// Returns store.ErrProgressExists if a row for the user/topic pair already exists.
func (s *PostgresProgressStore) Create(ctx context.Context, progress *domain.TopicProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("progress validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("topic_slug", progress.TopicSlug))
		return err
	}

	query := `
		INSERT INTO user_topic_xp (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		progress.ID,
		progress.UserID,
		progress.TopicSlug,
		progress.CurrentXP,
		progress.TotalXPEarned,
		progress.Level,
		progress.DailyTasksCount,
		progress.DailyTasksDate,
		progress.SRSStage,
		progress.NextReviewDate,
		progress.LastActivity,
		progress.LastPracticedDate,
		progress.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("progress already exists",
				slog.String("user_id", progress.UserID.String()),
				slog.String("topic_slug", progress.TopicSlug))
			return MapUniqueViolation(err, store.ErrProgressExists)
		}
		log.Error("failed to create progress",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("topic_slug", progress.TopicSlug))
		return MapError(err)
	}

	log.Info("progress created",
		slog.String("user_id", progress.UserID.String()),
		slog.String("topic_slug", progress.TopicSlug))
	return nil
}

// Get implements store.ProgressStore.Get
// Returns store.ErrProgressNotFound if the row does not exist.
func (s *PostgresProgressStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	topicSlug string,
) (*domain.TopicProgress, error) {
	return s.get(ctx, userID, topicSlug, false)
}

// GetForUpdate implements store.ProgressStore.GetForUpdate
// It locks the row with SELECT FOR UPDATE so concurrent submissions against
// the same user/topic pair serialize instead of racing the daily counter.
// Returns store.ErrProgressNotFound if the row does not exist.
func (s *PostgresProgressStore) GetForUpdate(
	ctx context.Context,
	userID uuid.UUID,
	topicSlug string,
) (*domain.TopicProgress, error) {
	return s.get(ctx, userID, topicSlug, true)
}

func (s *PostgresProgressStore) get(
	ctx context.Context,
	userID uuid.UUID,
	topicSlug string,
	forUpdate bool,
) (*domain.TopicProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + progressColumns + ` FROM user_topic_xp WHERE user_id = $1 AND topic_slug = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	progress, err := scanProgress(s.db.QueryRowContext(ctx, query, userID, topicSlug).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("progress not found",
				slog.String("user_id", userID.String()),
				slog.String("topic_slug", topicSlug))
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("topic_slug", topicSlug))
		return nil, MapError(err)
	}

	return progress, nil
}

// Update implements store.ProgressStore.Update
// Returns store.ErrProgressNotFound if the row does not exist.
func (s *PostgresProgressStore) Update(ctx context.Context, progress *domain.TopicProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("progress validation failed during update",
			slog.String("error", err.Error()),
			slog.String("progress_id", progress.ID.String()))
		return err
	}

	query := `
		UPDATE user_topic_xp
		SET current_xp = $1,
			total_xp_earned = $2,
			level = $3,
			daily_tasks_count = $4,
			daily_tasks_date = $5,
			srs_stage = $6,
			next_review_date = $7,
			last_activity = $8,
			last_practiced_date = $9
		WHERE id = $10
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		progress.CurrentXP,
		progress.TotalXPEarned,
		progress.Level,
		progress.DailyTasksCount,
		progress.DailyTasksDate,
		progress.SRSStage,
		progress.NextReviewDate,
		progress.LastActivity,
		progress.LastPracticedDate,
		progress.ID,
	)
	if err != nil {
		log.Error("failed to update progress",
			slog.String("error", err.Error()),
			slog.String("progress_id", progress.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("progress_id", progress.ID.String()))
		return err
	}
	if rowsAffected == 0 {
		log.Debug("progress not found for update",
			slog.String("progress_id", progress.ID.String()))
		return store.ErrProgressNotFound
	}

	log.Debug("progress updated",
		slog.String("progress_id", progress.ID.String()),
		slog.Int64("current_xp", progress.CurrentXP),
		slog.Int("level", progress.Level))
	return nil
}

// ListForUser implements store.ProgressStore.ListForUser
// Returns an empty slice when the user has no progress rows.
func (s *PostgresProgressStore) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.TopicProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + progressColumns + ` FROM user_topic_xp WHERE user_id = $1 ORDER BY topic_slug`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list progress for user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	progresses := []*domain.TopicProgress{}
	for rows.Next() {
		progress, err := scanProgress(rows.Scan)
		if err != nil {
			log.Error("failed to scan progress row", slog.String("error", err.Error()))
			return nil, err
		}
		progresses = append(progresses, progress)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return progresses, nil
}
