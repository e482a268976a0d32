package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/praxislabs/praxis-api/internal/domain"
	"github.com/praxislabs/praxis-api/internal/platform/logger"
	"github.com/praxislabs/praxis-api/internal/store"
)

// PostgresTopicConfigStore implements the store.TopicConfigStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTopicConfigStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTopicConfigStore creates a new PostgreSQL implementation of the TopicConfigStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTopicConfigStore(db store.DBTX, logger *slog.Logger) *PostgresTopicConfigStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTopicConfigStore{
		db:     db,
		logger: logger.With(slog.String("component", "topic_config_store")),
	}
}

// Ensure PostgresTopicConfigStore implements store.TopicConfigStore interface
var _ store.TopicConfigStore = (*PostgresTopicConfigStore)(nil)

// WithTx implements store.TopicConfigStore.WithTx
func (s *PostgresTopicConfigStore) WithTx(tx *sql.Tx) store.TopicConfigStore {
	return &PostgresTopicConfigStore{
		db:     tx,
		logger: s.logger,
	}
}

const topicConfigColumns = `
	topic_slug, topic_title, category, difficulty,
	max_xp, base_task_xp,
	daily_full_tasks, daily_half_tasks,
	multiplier_full, multiplier_half, multiplier_low, multiplier_early,
	level_thresholds, review_intervals,
	daily_xp_decay, min_xp_percent,
	created_at, updated_at
`

// scanTopicConfig reads one topic config row. The int-slice columns are
// stored as JSONB and decoded at this boundary.
func scanTopicConfig(scan func(dest ...any) error) (*domain.TopicConfig, error) {
	var config domain.TopicConfig
	var thresholdsJSON, intervalsJSON []byte

	err := scan(
		&config.TopicSlug,
		&config.TopicTitle,
		&config.Category,
		&config.Difficulty,
		&config.MaxXP,
		&config.BaseTaskXP,
		&config.DailyFullTasks,
		&config.DailyHalfTasks,
		&config.MultiplierFull,
		&config.MultiplierHalf,
		&config.MultiplierLow,
		&config.MultiplierEarly,
		&thresholdsJSON,
		&intervalsJSON,
		&config.DailyXPDecay,
		&config.MinXPPercent,
		&config.CreatedAt,
		&config.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(thresholdsJSON) > 0 {
		if err := json.Unmarshal(thresholdsJSON, &config.LevelThresholds); err != nil {
			return nil, fmt.Errorf("failed to decode level_thresholds: %w", err)
		}
	}
	if len(intervalsJSON) > 0 {
		if err := json.Unmarshal(intervalsJSON, &config.ReviewIntervals); err != nil {
			return nil, fmt.Errorf("failed to decode review_intervals: %w", err)
		}
	}

	return &config, nil
}

// GetBySlug implements store.TopicConfigStore.GetBySlug
// Returns store.ErrTopicConfigNotFound if no configuration exists for the slug.
func (s *PostgresTopicConfigStore) GetBySlug(
	ctx context.Context,
	topicSlug string,
) (*domain.TopicConfig, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + topicConfigColumns + ` FROM topic_xp_configs WHERE topic_slug = $1`

	config, err := scanTopicConfig(s.db.QueryRowContext(ctx, query, topicSlug).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("topic config not found", slog.String("topic_slug", topicSlug))
			return nil, store.ErrTopicConfigNotFound
		}
		log.Error("failed to get topic config",
			slog.String("error", err.Error()),
			slog.String("topic_slug", topicSlug))
		return nil, MapError(err)
	}

	return config, nil
}

// List implements store.TopicConfigStore.List
// Returns an empty slice when no configurations exist.
func (s *PostgresTopicConfigStore) List(ctx context.Context) ([]*domain.TopicConfig, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + topicConfigColumns + ` FROM topic_xp_configs ORDER BY topic_slug`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list topic configs", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	configs := []*domain.TopicConfig{}
	for rows.Next() {
		config, err := scanTopicConfig(rows.Scan)
		if err != nil {
			log.Error("failed to scan topic config row", slog.String("error", err.Error()))
			return nil, err
		}
		configs = append(configs, config)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return configs, nil
}

// Upsert implements store.TopicConfigStore.Upsert
// Identity and scoring fields always overwrite; tuning knobs left unset on
// the incoming config preserve the stored values. Callers that need the
// read-merge-write to be atomic should run it inside a transaction via WithTx.
func (s *PostgresTopicConfigStore) Upsert(ctx context.Context, config *domain.TopicConfig) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	existing, err := s.GetBySlug(ctx, config.TopicSlug)
	if err != nil && !errors.Is(err, store.ErrTopicConfigNotFound) {
		return err
	}

	merged := *config
	if existing != nil {
		merged.CreatedAt = existing.CreatedAt
		// Unset tuning knobs keep their stored values
		if merged.DailyFullTasks == 0 {
			merged.DailyFullTasks = existing.DailyFullTasks
		}
		if merged.DailyHalfTasks == 0 {
			merged.DailyHalfTasks = existing.DailyHalfTasks
		}
		if merged.MultiplierFull == 0 {
			merged.MultiplierFull = existing.MultiplierFull
		}
		if merged.MultiplierHalf == 0 {
			merged.MultiplierHalf = existing.MultiplierHalf
		}
		if merged.MultiplierLow == 0 {
			merged.MultiplierLow = existing.MultiplierLow
		}
		if merged.MultiplierEarly == 0 {
			merged.MultiplierEarly = existing.MultiplierEarly
		}
		if len(merged.LevelThresholds) == 0 {
			merged.LevelThresholds = existing.LevelThresholds
		}
	}
	merged.ApplyDefaults()

	now := time.Now().UTC()
	if merged.CreatedAt.IsZero() {
		merged.CreatedAt = now
	}
	merged.UpdatedAt = now

	if err := merged.Validate(); err != nil {
		log.Warn("topic config validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("topic_slug", merged.TopicSlug))
		return err
	}

	thresholdsJSON, err := json.Marshal(merged.LevelThresholds)
	if err != nil {
		return fmt.Errorf("failed to encode level_thresholds: %w", err)
	}
	intervalsJSON, err := json.Marshal(merged.ReviewIntervals)
	if err != nil {
		return fmt.Errorf("failed to encode review_intervals: %w", err)
	}

	query := `
		INSERT INTO topic_xp_configs (
			topic_slug, topic_title, category, difficulty,
			max_xp, base_task_xp,
			daily_full_tasks, daily_half_tasks,
			multiplier_full, multiplier_half, multiplier_low, multiplier_early,
			level_thresholds, review_intervals,
			daily_xp_decay, min_xp_percent,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (topic_slug) DO UPDATE SET
			topic_title = EXCLUDED.topic_title,
			category = EXCLUDED.category,
			difficulty = EXCLUDED.difficulty,
			max_xp = EXCLUDED.max_xp,
			base_task_xp = EXCLUDED.base_task_xp,
			daily_full_tasks = EXCLUDED.daily_full_tasks,
			daily_half_tasks = EXCLUDED.daily_half_tasks,
			multiplier_full = EXCLUDED.multiplier_full,
			multiplier_half = EXCLUDED.multiplier_half,
			multiplier_low = EXCLUDED.multiplier_low,
			multiplier_early = EXCLUDED.multiplier_early,
			level_thresholds = EXCLUDED.level_thresholds,
			review_intervals = EXCLUDED.review_intervals,
			daily_xp_decay = EXCLUDED.daily_xp_decay,
			min_xp_percent = EXCLUDED.min_xp_percent,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(
		ctx,
		query,
		merged.TopicSlug,
		merged.TopicTitle,
		merged.Category,
		merged.Difficulty,
		merged.MaxXP,
		merged.BaseTaskXP,
		merged.DailyFullTasks,
		merged.DailyHalfTasks,
		merged.MultiplierFull,
		merged.MultiplierHalf,
		merged.MultiplierLow,
		merged.MultiplierEarly,
		thresholdsJSON,
		intervalsJSON,
		merged.DailyXPDecay,
		merged.MinXPPercent,
		merged.CreatedAt,
		merged.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert topic config",
			slog.String("error", err.Error()),
			slog.String("topic_slug", merged.TopicSlug))
		return MapError(err)
	}

	log.Info("topic config synced",
		slog.String("topic_slug", merged.TopicSlug),
		slog.String("category", merged.Category))
	return nil
}
