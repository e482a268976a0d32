package xp

import (
	"fmt"
	"math"
	"time"

	"github.com/praxislabs/praxis-api/internal/domain"
)

// maxMastery caps the per-task mastery level of the decay path.
const maxMastery = 5

// CalculateDecay is the legacy per-task calculation: repeated attempts at the
// same task decay geometrically by DailyXPDecay per day since the last
// attempt, floored at BaseTaskXP*MinXPPercent, unless the attempt lands on or
// after the task's own recorded review date (full credit, mastery
// incremented).
//
// This path throttles per task rather than per topic-day and is kept as an
// alternate anti-grind strategy; the canonical submission flow uses
// calculateSubmission.
func CalculateDecay(
	config *domain.TopicConfig,
	lastAttempt *domain.TaskAttempt,
	taskBaseXP *int,
	taskDifficulty string,
	now time.Time,
) *CalculationResult {
	baseXP := baseXPFor(config, taskBaseXP, taskDifficulty)

	result := &CalculationResult{
		XPEarned:       baseXP,
		Multiplier:     1.0,
		DailyTaskIndex: 1, // This path does not track daily counts
		IsHotTopic:     true,
	}

	if lastAttempt == nil {
		// First attempt: full credit, mastery starts at 1.
		result.MasteryLevel = 1
		result.NextReviewDate = decayNextReview(0, config.ReviewIntervals, now)
		result.Message = fmt.Sprintf("First attempt! +%d XP", result.XPEarned)
		return result
	}

	result.ReviewCount = lastAttempt.ReviewCount + 1
	result.MasteryLevel = lastAttempt.MasteryLevel

	scheduled := lastAttempt.NextReviewDate != nil && !lastAttempt.NextReviewDate.After(now)
	tooEarly := lastAttempt.NextReviewDate != nil && lastAttempt.NextReviewDate.After(now)

	if scheduled {
		result.IsScheduledReview = true
		result.XPEarned = baseXP
		if result.MasteryLevel < maxMastery {
			result.MasteryLevel++
		}
	} else {
		days := int(now.Sub(lastAttempt.CompletedAt).Hours() / 24)
		decayFactor := math.Pow(config.DailyXPDecay, float64(days))
		minXP := float64(baseXP) * config.MinXPPercent
		// Round after the floor so a fractional minimum is not truncated.
		result.XPEarned = int(math.Round(math.Max(minXP, float64(baseXP)*decayFactor)))
	}

	result.IsHotTopic = !tooEarly
	result.IsTooEarly = tooEarly
	if tooEarly {
		result.Multiplier = config.MultiplierEarly
	}

	result.NextReviewDate = decayNextReview(result.ReviewCount, config.ReviewIntervals, now)
	result.Message = decayMessage(result)

	return result
}

// decayNextReview schedules the task's own next review; past the last
// interval the task is fully absorbed and no date is set.
func decayNextReview(reviewCount int, intervals []int, now time.Time) *time.Time {
	if len(intervals) == 0 || reviewCount >= len(intervals) {
		return nil
	}
	next := addDays(now, intervals[reviewCount])
	return &next
}

func decayMessage(result *CalculationResult) string {
	switch {
	case result.MasteryLevel >= maxMastery:
		return fmt.Sprintf("Topic fully mastered! +%d XP", result.XPEarned)
	case result.IsScheduledReview:
		return fmt.Sprintf("Scheduled review complete. +%d XP", result.XPEarned)
	default:
		return fmt.Sprintf("Review counted. +%d XP", result.XPEarned)
	}
}
