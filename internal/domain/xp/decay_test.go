package xp

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/praxislabs/praxis-api/internal/domain"
)

func decayConfig() *domain.TopicConfig {
	cfg := &domain.TopicConfig{
		TopicSlug:       "fractions",
		TopicTitle:      "Fractions",
		BaseTaskXP:      50,
		DailyXPDecay:    0.5,
		MinXPPercent:    0.25,
		ReviewIntervals: []int{1, 3, 7},
	}
	cfg.ApplyDefaults()
	return cfg
}

func decayAttempt(completedAt time.Time, nextReview *time.Time, mastery, reviews int) *domain.TaskAttempt {
	return &domain.TaskAttempt{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		TaskID:         "task-1",
		TopicSlug:      "fractions",
		CompletedAt:    completedAt,
		IsCorrect:      true,
		NextReviewDate: nextReview,
		MasteryLevel:   mastery,
		ReviewCount:    reviews,
	}
}

func TestDecayFirstAttempt(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	result := CalculateDecay(decayConfig(), nil, nil, "", now)

	if result.XPEarned != 50 {
		t.Errorf("Expected 50 XP, got %d", result.XPEarned)
	}
	if result.MasteryLevel != 1 {
		t.Errorf("Expected mastery 1, got %d", result.MasteryLevel)
	}
	if result.NextReviewDate == nil || !result.NextReviewDate.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected next review 2026-03-11, got %v", result.NextReviewDate)
	}
	if result.Message != "First attempt! +50 XP" {
		t.Errorf("Unexpected message %q", result.Message)
	}
}

func TestDecayScheduledReviewFullCredit(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	reviewDate := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	last := decayAttempt(now.Add(-72*time.Hour), &reviewDate, 2, 1)

	result := CalculateDecay(decayConfig(), last, nil, "", now)

	if !result.IsScheduledReview {
		t.Error("Expected a scheduled review")
	}
	if result.XPEarned != 50 {
		t.Errorf("Expected full credit of 50 XP, got %d", result.XPEarned)
	}
	if result.MasteryLevel != 3 {
		t.Errorf("Expected mastery to advance to 3, got %d", result.MasteryLevel)
	}
	if result.ReviewCount != 2 {
		t.Errorf("Expected review count 2, got %d", result.ReviewCount)
	}
}

func TestDecayRepeatBeforeReview(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		daysAgo  int
		wantXP   int
		wantNote string
	}{
		// base 50, decay 0.5/day
		{"one day decayed", 1, 25, "50 * 0.5"},
		{"two days decayed", 2, 13, "round(50 * 0.25)"},
		// 50 * 0.125 = 6.25 falls below the floor of 50 * 0.25 = 12.5,
		// which rounds up to 13 rather than truncating to 12.
		{"floored at min percent", 3, 13, "round(12.5)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			last := decayAttempt(now.Add(-time.Duration(tc.daysAgo)*24*time.Hour), nil, 1, 1)

			result := CalculateDecay(decayConfig(), last, nil, "", now)

			if result.XPEarned != tc.wantXP {
				t.Errorf("Expected %d XP (%s), got %d", tc.wantXP, tc.wantNote, result.XPEarned)
			}
			if result.IsScheduledReview {
				t.Error("Expected an unscheduled repeat, not a review")
			}
			if result.MasteryLevel != 1 {
				t.Errorf("Expected mastery to stay at 1, got %d", result.MasteryLevel)
			}
		})
	}
}

func TestDecayTooEarlyMarksMultiplier(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	reviewDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	last := decayAttempt(now.Add(-24*time.Hour), &reviewDate, 1, 1)

	cfg := decayConfig()
	result := CalculateDecay(cfg, last, nil, "", now)

	if !result.IsTooEarly {
		t.Error("Expected the attempt to be marked too early")
	}
	if result.IsHotTopic {
		t.Error("Expected a cold task")
	}
	if result.Multiplier != cfg.MultiplierEarly {
		t.Errorf("Expected the early multiplier %v, got %v", cfg.MultiplierEarly, result.Multiplier)
	}
}
