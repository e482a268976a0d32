package scoring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/praxislabs/praxis-api/internal/domain"
	"github.com/praxislabs/praxis-api/internal/domain/xp"
	"github.com/praxislabs/praxis-api/internal/platform/logger"
	"github.com/praxislabs/praxis-api/internal/store"
)

// txRunner opens a transaction on db and runs fn inside it.
// Injectable so tests can run fn without a live database.
type txRunner func(ctx context.Context, db *sql.DB, fn store.TxFn) error

// scoringService is the standard implementation of ScoringService.
type scoringService struct {
	db       *sql.DB
	configs  store.TopicConfigStore
	progress store.ProgressStore
	attempts store.AttemptStore
	engine   xp.Service
	logger   *slog.Logger
	timeFunc func() time.Time // Injectable for testing
	runInTx  txRunner
}

// Ensure scoringService implements ScoringService interface
var _ ScoringService = (*scoringService)(nil)

// NewScoringService creates the standard scoring service.
// The db handle is used only to open transactions; all row access goes
// through the stores. If logger is nil, a default logger will be used.
func NewScoringService(
	db *sql.DB,
	configs store.TopicConfigStore,
	progress store.ProgressStore,
	attempts store.AttemptStore,
	engine xp.Service,
	log *slog.Logger,
) ScoringService {
	if db == nil {
		panic("db cannot be nil")
	}
	if configs == nil || progress == nil || attempts == nil {
		panic("stores cannot be nil")
	}
	if engine == nil {
		engine = xp.NewService()
	}
	if log == nil {
		log = slog.Default()
	}

	return &scoringService{
		db:       db,
		configs:  configs,
		progress: progress,
		attempts: attempts,
		engine:   engine,
		logger:   log.With(slog.String("component", "scoring_service")),
		timeFunc: time.Now,
		runInTx:  store.RunInTransaction,
	}
}

func (s *scoringService) validateSubmission(userID uuid.UUID, taskID, topicSlug string) error {
	if userID == uuid.Nil {
		return fmt.Errorf("%w: user ID is required", ErrInvalidInput)
	}
	if taskID == "" {
		return fmt.Errorf("%w: task ID is required", ErrInvalidInput)
	}
	if topicSlug == "" {
		return fmt.Errorf("%w: topic slug is required", ErrInvalidInput)
	}
	return nil
}

// loadConfig fetches the topic config and fills in defaulted tuning fields.
func loadConfig(ctx context.Context, configs store.TopicConfigStore, topicSlug string) (*domain.TopicConfig, error) {
	cfg, err := configs.GetBySlug(ctx, topicSlug)
	if err != nil {
		if errors.Is(err, store.ErrTopicConfigNotFound) {
			return nil, ErrTopicConfigNotFound
		}
		return nil, fmt.Errorf("failed to load topic config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// SubmitTask implements ScoringService.SubmitTask.
func (s *scoringService) SubmitTask(
	ctx context.Context,
	userID uuid.UUID,
	req SubmitTaskRequest,
) (*SubmitTaskResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.validateSubmission(userID, req.TaskID, req.TopicSlug); err != nil {
		log.Warn("submission rejected",
			slog.String("error", err.Error()),
			slog.String("task_id", req.TaskID))
		return nil, err
	}

	if !req.IsCorrect {
		return s.recordIncorrect(ctx, userID, req)
	}

	now := s.timeFunc().UTC()
	var result *SubmitTaskResult

	err := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		configs := s.configs.WithTx(tx)
		progressStore := s.progress.WithTx(tx)
		attempts := s.attempts.WithTx(tx)

		cfg, err := loadConfig(ctx, configs, req.TopicSlug)
		if err != nil {
			return err
		}

		// Lock the progress row for the duration of the transaction so
		// concurrent submissions serialize on the daily counter.
		isNew := false
		progress, err := progressStore.GetForUpdate(ctx, userID, req.TopicSlug)
		if err != nil {
			if !errors.Is(err, store.ErrProgressNotFound) {
				return fmt.Errorf("failed to load progress: %w", err)
			}
			progress, err = domain.NewTopicProgress(userID, req.TopicSlug)
			if err != nil {
				return err
			}
			isNew = true
		}

		calc, updated, err := s.engine.CalculateSubmission(cfg, progress, xp.SubmissionOptions{
			TaskBaseXP:     req.TaskBaseXP,
			TaskDifficulty: req.TaskDifficulty,
		}, now)
		if err != nil {
			return fmt.Errorf("failed to calculate submission: %w", err)
		}

		attempt := &domain.TaskAttempt{
			ID:             uuid.New(),
			UserID:         userID,
			TaskID:         req.TaskID,
			TopicSlug:      req.TopicSlug,
			CompletedAt:    now,
			XPEarned:       calc.XPEarned,
			IsCorrect:      true,
			NextReviewDate: calc.NextReviewDate,
			ReviewCount:    calc.ReviewCount,
			MasteryLevel:   calc.MasteryLevel,
		}
		if err := attempts.Create(ctx, attempt); err != nil {
			return fmt.Errorf("failed to record attempt: %w", err)
		}

		if isNew {
			err = progressStore.Create(ctx, updated)
		} else {
			err = progressStore.Update(ctx, updated)
		}
		if err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}

		result = &SubmitTaskResult{Calculation: calc, Progress: updated}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTopicConfigNotFound) {
			return nil, err
		}
		log.Error("failed to score submission",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("task_id", req.TaskID),
			slog.String("topic_slug", req.TopicSlug))
		return nil, err
	}

	log.Info("submission scored",
		slog.String("user_id", userID.String()),
		slog.String("task_id", req.TaskID),
		slog.String("topic_slug", req.TopicSlug),
		slog.Int("xp_earned", result.Calculation.XPEarned),
		slog.Int("daily_task_index", result.Calculation.DailyTaskIndex),
		slog.Bool("scheduled_review", result.Calculation.IsScheduledReview))

	return result, nil
}

// recordIncorrect logs an attempt with zero XP. Progress and the repetition
// schedule are left exactly as they were.
func (s *scoringService) recordIncorrect(
	ctx context.Context,
	userID uuid.UUID,
	req SubmitTaskRequest,
) (*SubmitTaskResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.timeFunc().UTC()

	attempt := &domain.TaskAttempt{
		ID:          uuid.New(),
		UserID:      userID,
		TaskID:      req.TaskID,
		TopicSlug:   req.TopicSlug,
		CompletedAt: now,
		XPEarned:    0,
		IsCorrect:   false,
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		log.Error("failed to record incorrect attempt",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("task_id", req.TaskID))
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	// Untouched progress, if any, is returned for display.
	progress, err := s.progress.Get(ctx, userID, req.TopicSlug)
	if err != nil && !errors.Is(err, store.ErrProgressNotFound) {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	log.Info("incorrect attempt recorded",
		slog.String("user_id", userID.String()),
		slog.String("task_id", req.TaskID),
		slog.String("topic_slug", req.TopicSlug))

	return &SubmitTaskResult{
		Calculation: &xp.CalculationResult{
			XPEarned: 0,
			Message:  "No XP for an incorrect answer",
		},
		Progress: progress,
	}, nil
}

// summarize builds the display view of a progress row. A missing config is
// tolerated: the default thresholds apply and the display fields stay empty.
func summarize(progress *domain.TopicProgress, cfg *domain.TopicConfig) *TopicXPSummary {
	summary := &TopicXPSummary{
		TopicSlug: progress.TopicSlug,
		Progress:  progress,
	}

	var thresholds []int
	if cfg != nil {
		summary.TopicTitle = cfg.TopicTitle
		summary.Category = cfg.Category
		thresholds = cfg.LevelThresholds
	}
	summary.LevelInfo = xp.ComputeLevel(progress.CurrentXP, thresholds)

	return summary
}

// GetTopicXP implements ScoringService.GetTopicXP.
func (s *scoringService) GetTopicXP(
	ctx context.Context,
	userID uuid.UUID,
	topicSlug string,
) (*TopicXPSummary, error) {
	if topicSlug == "" {
		return nil, fmt.Errorf("%w: topic slug is required", ErrInvalidInput)
	}

	progress, err := s.progress.Get(ctx, userID, topicSlug)
	if err != nil {
		if errors.Is(err, store.ErrProgressNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	cfg, err := s.configs.GetBySlug(ctx, topicSlug)
	if err != nil && !errors.Is(err, store.ErrTopicConfigNotFound) {
		return nil, fmt.Errorf("failed to load topic config: %w", err)
	}
	if cfg != nil {
		cfg.ApplyDefaults()
	}

	return summarize(progress, cfg), nil
}

// ListTopicXP implements ScoringService.ListTopicXP.
func (s *scoringService) ListTopicXP(ctx context.Context, userID uuid.UUID) ([]*TopicXPSummary, error) {
	rows, err := s.progress.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	configs, err := s.configs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list topic configs: %w", err)
	}
	bySlug := make(map[string]*domain.TopicConfig, len(configs))
	for _, cfg := range configs {
		cfg.ApplyDefaults()
		bySlug[cfg.TopicSlug] = cfg
	}

	summaries := make([]*TopicXPSummary, 0, len(rows))
	for _, progress := range rows {
		summaries = append(summaries, summarize(progress, bySlug[progress.TopicSlug]))
	}

	// Most recently practiced topics first.
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Progress.LastActivity.After(summaries[j].Progress.LastActivity)
	})

	return summaries, nil
}

// GetCompletedTaskIDs implements ScoringService.GetCompletedTaskIDs.
func (s *scoringService) GetCompletedTaskIDs(
	ctx context.Context,
	userID uuid.UUID,
	topicSlug string,
) ([]string, error) {
	if topicSlug == "" {
		return nil, fmt.Errorf("%w: topic slug is required", ErrInvalidInput)
	}

	now := s.timeFunc().UTC()

	progress, err := s.progress.Get(ctx, userID, topicSlug)
	if err != nil {
		if errors.Is(err, store.ErrProgressNotFound) {
			// Never practiced: the topic is hot and the whole pool is open.
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	if s.engine.IsHotTopic(progress.NextReviewDate, now) {
		return []string{}, nil
	}

	taskIDs, err := s.attempts.ListCompletedTaskIDs(ctx, userID, topicSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed tasks: %w", err)
	}
	return taskIDs, nil
}

// GetTopicStats implements ScoringService.GetTopicStats.
func (s *scoringService) GetTopicStats(
	ctx context.Context,
	userID uuid.UUID,
	topicSlug string,
) (*TopicStats, error) {
	if topicSlug == "" {
		return nil, fmt.Errorf("%w: topic slug is required", ErrInvalidInput)
	}

	today := xp.DateOnly(s.timeFunc())
	stats, err := s.attempts.GetTopicStats(ctx, userID, topicSlug, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic stats: %w", err)
	}

	return &TopicStats{
		CompletedTasks: stats.CompletedTasks,
		MasteredTasks:  stats.MasteredTasks,
		AvgMastery:     stats.AvgMastery,
		TasksDue:       stats.TasksDue,
	}, nil
}

// GetTaskHistory implements ScoringService.GetTaskHistory.
func (s *scoringService) GetTaskHistory(
	ctx context.Context,
	userID uuid.UUID,
	taskID string,
	limit int,
) ([]*domain.TaskAttempt, error) {
	if taskID == "" {
		return nil, fmt.Errorf("%w: task ID is required", ErrInvalidInput)
	}

	attempts, err := s.attempts.ListForTask(ctx, userID, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list task history: %w", err)
	}
	return attempts, nil
}

// ListTasksDueForReview implements ScoringService.ListTasksDueForReview.
func (s *scoringService) ListTasksDueForReview(
	ctx context.Context,
	userID uuid.UUID,
	topicSlug string,
) ([]*domain.TaskAttempt, error) {
	if topicSlug == "" {
		return nil, fmt.Errorf("%w: topic slug is required", ErrInvalidInput)
	}

	today := xp.DateOnly(s.timeFunc())
	attempts, err := s.attempts.ListDueForReview(ctx, userID, topicSlug, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks due for review: %w", err)
	}
	return attempts, nil
}

// CalculateTaskXP implements ScoringService.CalculateTaskXP.
func (s *scoringService) CalculateTaskXP(
	ctx context.Context,
	userID uuid.UUID,
	req CalculateTaskXPRequest,
) (*xp.CalculationResult, error) {
	if err := s.validateSubmission(userID, req.TaskID, req.TopicSlug); err != nil {
		return nil, err
	}

	cfg, err := loadConfig(ctx, s.configs, req.TopicSlug)
	if err != nil {
		return nil, err
	}

	lastAttempt, err := s.attempts.GetLastForTask(ctx, userID, req.TaskID)
	if err != nil {
		if !errors.Is(err, store.ErrAttemptNotFound) {
			return nil, fmt.Errorf("failed to load last attempt: %w", err)
		}
		lastAttempt = nil
	}

	now := s.timeFunc().UTC()
	calc, err := s.engine.CalculateTaskXP(cfg, lastAttempt, xp.SubmissionOptions{
		TaskBaseXP:     req.TaskBaseXP,
		TaskDifficulty: req.TaskDifficulty,
	}, now)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate task xp: %w", err)
	}
	return calc, nil
}
