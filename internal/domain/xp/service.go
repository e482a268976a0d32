package xp

import (
	"errors"
	"time"

	"github.com/praxislabs/praxis-api/internal/domain"
)

// Common errors
var (
	ErrNilConfig   = errors.New("topic config cannot be nil")
	ErrNilProgress = errors.New("topic progress cannot be nil")
)

// SubmissionOptions carries the optional per-task inputs of a submission.
type SubmissionOptions struct {
	// TaskBaseXP overrides every other base-XP source when set.
	TaskBaseXP *int
	// TaskDifficulty selects a difficulty-keyed base award when TaskBaseXP
	// is absent ("easy", "medium"/"moderate", "hard"; case-insensitive).
	TaskDifficulty string
}

// Service defines the interface for the XP/SRS scoring calculations.
// Implementations are pure: persistence is the caller's responsibility.
type Service interface {
	// CalculateSubmission scores one correct submission against the current
	// progress, returning the award and the updated progress value.
	CalculateSubmission(
		config *domain.TopicConfig,
		progress *domain.TopicProgress,
		opts SubmissionOptions,
		now time.Time,
	) (*CalculationResult, *domain.TopicProgress, error)

	// CalculateTaskXP runs the legacy per-task decay calculation against the
	// most recent attempt at the same task (nil for a first attempt).
	CalculateTaskXP(
		config *domain.TopicConfig,
		lastAttempt *domain.TaskAttempt,
		opts SubmissionOptions,
		now time.Time,
	) (*CalculationResult, error)

	// IsHotTopic reports whether a topic with the given next review date is
	// due for a review round at the given time.
	IsHotTopic(nextReviewDate *time.Time, now time.Time) bool
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct{}

// NewService creates the standard scoring service.
func NewService() Service {
	return &defaultService{}
}

// CalculateSubmission implements the Service interface.
func (s *defaultService) CalculateSubmission(
	config *domain.TopicConfig,
	progress *domain.TopicProgress,
	opts SubmissionOptions,
	now time.Time,
) (*CalculationResult, *domain.TopicProgress, error) {
	if config == nil {
		return nil, nil, ErrNilConfig
	}
	if progress == nil {
		return nil, nil, ErrNilProgress
	}

	result, updated := calculateSubmission(config, progress, opts.TaskBaseXP, opts.TaskDifficulty, now)
	return result, updated, nil
}

// CalculateTaskXP implements the Service interface.
func (s *defaultService) CalculateTaskXP(
	config *domain.TopicConfig,
	lastAttempt *domain.TaskAttempt,
	opts SubmissionOptions,
	now time.Time,
) (*CalculationResult, error) {
	if config == nil {
		return nil, ErrNilConfig
	}

	return CalculateDecay(config, lastAttempt, opts.TaskBaseXP, opts.TaskDifficulty, now), nil
}

// IsHotTopic implements the Service interface.
func (s *defaultService) IsHotTopic(nextReviewDate *time.Time, now time.Time) bool {
	return isHotTopic(nextReviewDate, now)
}
