package xp

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/praxislabs/praxis-api/internal/domain"
)

// Base XP awarded when a task declares a difficulty instead of an explicit
// base value. Unknown difficulties fall back to the topic's BaseTaskXP.
const (
	difficultyEasyXP   = 100
	difficultyMediumXP = 250
	difficultyHardXP   = 500
)

// DateOnly normalizes a time to its UTC calendar date at midnight.
// All "is it due today" comparisons in the engine happen at this granularity.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// addDays returns the midnight-normalized date the given number of days after now.
func addDays(now time.Time, days int) time.Time {
	return DateOnly(now.AddDate(0, 0, days))
}

// sameDay reports whether two times fall on the same UTC calendar date.
// A nil first argument (never set) is never the same day.
func sameDay(a *time.Time, b time.Time) bool {
	if a == nil {
		return false
	}
	return DateOnly(*a).Equal(DateOnly(b))
}

// isHotTopic classifies review timing: a topic with no scheduled review, or
// whose review date has arrived or passed, is hot (due for a review round).
func isHotTopic(nextReview *time.Time, now time.Time) bool {
	if nextReview == nil {
		return true
	}
	return !DateOnly(*nextReview).After(DateOnly(now))
}

// baseXPFor selects the base award for a task. Priority: explicit per-task
// value, then difficulty lookup, then the topic's configured default.
func baseXPFor(config *domain.TopicConfig, taskBaseXP *int, taskDifficulty string) int {
	if taskBaseXP != nil {
		return *taskBaseXP
	}

	switch strings.ToLower(taskDifficulty) {
	case "easy":
		return difficultyEasyXP
	case "medium", "moderate":
		return difficultyMediumXP
	case "hard":
		return difficultyHardXP
	}

	return config.BaseTaskXP
}

// dailyMultiplier selects the throttle tier for the next submission of the
// day. The index is the 1-based position among today's submissions: positions
// within DailyFullTasks earn the full multiplier, the next DailyHalfTasks the
// half multiplier, and everything beyond that the low multiplier.
//
// The tier is deliberately independent of review timing: practicing past the
// schedule still earns XP at the current daily-energy tier, it just does not
// advance the repetition schedule.
func dailyMultiplier(config *domain.TopicConfig, dailyCountBefore int) (multiplier float64, dailyTaskIndex int) {
	dailyTaskIndex = dailyCountBefore + 1

	fullEnd := config.DailyFullTasks
	halfEnd := config.DailyFullTasks + config.DailyHalfTasks

	switch {
	case dailyTaskIndex <= fullEnd:
		multiplier = config.MultiplierFull
	case dailyTaskIndex <= halfEnd:
		multiplier = config.MultiplierHalf
	default:
		multiplier = config.MultiplierLow
	}

	return multiplier, dailyTaskIndex
}

// ComputeLevel derives the level from cumulative XP: the count of thresholds
// at or below the current XP, capped at min(5, len(thresholds)). The
// thresholds are sorted defensively so an out-of-order config row cannot
// produce a non-monotonic level. Pure function; recomputing from the same
// inputs always yields the same result.
func ComputeLevel(currentXP int64, levelThresholds []int) LevelInfo {
	thresholds := append([]int(nil), levelThresholds...)
	if len(thresholds) == 0 {
		thresholds = append(thresholds, domain.DefaultLevelThresholds...)
	}
	sort.Ints(thresholds)

	achieved := 0
	for _, threshold := range thresholds {
		if currentXP >= int64(threshold) {
			achieved++
		}
	}

	level := achieved
	if level > 5 {
		level = 5
	}
	if level > len(thresholds) {
		level = len(thresholds)
	}

	info := LevelInfo{Level: level}
	if level > 0 {
		info.CurrentLevelMinXP = int64(thresholds[level-1])
	}
	if level < len(thresholds) {
		next := int64(thresholds[level])
		info.NextLevelXP = &next
	}

	return info
}

// nextReviewAfterAdvance computes the schedule after a hot-topic review
// advances from stageBefore. Past the last configured interval the topic
// graduates: no further review date is set and the topic stays always due.
func nextReviewAfterAdvance(stageBefore int, intervals []int, now time.Time) *time.Time {
	if stageBefore >= len(intervals) {
		return nil
	}
	next := addDays(now, intervals[stageBefore])
	return &next
}

// composeMessage builds the human-readable award summary: a timing tag, the
// XP delta, and a level-up notice when the level increased.
func composeMessage(
	isHot bool,
	dailyCountBefore int,
	config *domain.TopicConfig,
	xpEarned int,
	levelBefore, levelAfter int,
) string {
	var parts []string

	switch {
	case isHot:
		parts = append(parts, "Review on schedule")
	case dailyCountBefore < config.DailyFullTasks:
		// Ahead of schedule but still within the full-energy budget: plain
		// extra practice, not a scolding.
		parts = append(parts, "Practice")
	default:
		parts = append(parts, "Too early")
	}

	parts = append(parts, fmt.Sprintf("+%d XP", xpEarned))

	if levelAfter > levelBefore {
		parts = append(parts, fmt.Sprintf("Level %d reached!", levelAfter))
	}

	return strings.Join(parts, " · ")
}

// calculateSubmission executes the scoring algorithm for one correct
// submission. It is pure: given the config, the current progress and a clock
// reading it returns the award and a new progress value, without touching
// storage. The caller persists the result atomically.
func calculateSubmission(
	config *domain.TopicConfig,
	progress *domain.TopicProgress,
	taskBaseXP *int,
	taskDifficulty string,
	now time.Time,
) (*CalculationResult, *domain.TopicProgress) {
	today := DateOnly(now)

	// Daily counter baseline: reset on the first submission of a new day.
	dailyCountBefore := 0
	if sameDay(progress.DailyTasksDate, now) {
		dailyCountBefore = progress.DailyTasksCount
	}

	hot := isHotTopic(progress.NextReviewDate, now)
	tooEarly := !hot

	baseXP := baseXPFor(config, taskBaseXP, taskDifficulty)
	multiplier, dailyTaskIndex := dailyMultiplier(config, dailyCountBefore)

	xpEarned := int(math.Round(float64(baseXP) * multiplier))
	if xpEarned < 0 {
		xpEarned = 0
	}

	// Stage advance and scheduling. Too-early practice freezes both: XP is
	// still awarded at the daily tier, but the repetition schedule neither
	// advances nor resets.
	stageBefore := progress.SRSStage
	stageAfter := stageBefore
	nextReviewDate := progress.NextReviewDate
	if hot {
		stageAfter = stageBefore + 1
		nextReviewDate = nextReviewAfterAdvance(stageBefore, config.ReviewIntervals, now)
	}

	newCurrentXP := progress.CurrentXP + int64(xpEarned)
	newTotalXP := progress.TotalXPEarned + int64(xpEarned)
	levelInfo := ComputeLevel(newCurrentXP, config.LevelThresholds)

	updated := &domain.TopicProgress{
		ID:                progress.ID,
		UserID:            progress.UserID,
		TopicSlug:         progress.TopicSlug,
		CurrentXP:         newCurrentXP,
		TotalXPEarned:     newTotalXP,
		Level:             levelInfo.Level,
		DailyTasksCount:   dailyCountBefore + 1,
		DailyTasksDate:    &today,
		SRSStage:          stageAfter,
		NextReviewDate:    nextReviewDate,
		LastActivity:      now,
		LastPracticedDate: &today,
		CreatedAt:         progress.CreatedAt,
	}

	result := &CalculationResult{
		XPEarned:          xpEarned,
		NextReviewDate:    nextReviewDate,
		MasteryLevel:      levelInfo.Level,
		ReviewCount:       stageAfter,
		Message:           composeMessage(hot, dailyCountBefore, config, xpEarned, progress.Level, levelInfo.Level),
		IsScheduledReview: hot,
		Multiplier:        multiplier,
		DailyTaskIndex:    dailyTaskIndex,
		IsTooEarly:        tooEarly,
		IsHotTopic:        hot,
	}

	return result, updated
}
