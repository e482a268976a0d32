// Package topicsync loads per-topic scoring configuration documents from a
// content directory and upserts them into the topic config store. It runs at
// startup and on demand through the admin API.
package topicsync

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/praxislabs/praxis-api/internal/domain"
	"github.com/praxislabs/praxis-api/internal/store"
)

// Document is the on-disk shape of a topic's config.json. The tuning knobs
// are pointers so an absent field can be told apart from an explicit zero;
// absent knobs never overwrite stored values.
type Document struct {
	Slug       string  `json:"slug"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	Difficulty *string `json:"difficulty,omitempty"`

	MaxXP        int     `json:"maxXp"`
	BaseTaskXP   int     `json:"baseTaskXp"`
	DailyXPDecay float64 `json:"dailyXpDecay"`
	MinXPPercent float64 `json:"minXpPercent"`

	ReviewIntervals []int `json:"reviewIntervals"`

	DailyFullTasks  *int     `json:"dailyFullTasks,omitempty"`
	DailyHalfTasks  *int     `json:"dailyHalfTasks,omitempty"`
	MultiplierFull  *float64 `json:"multiplierFull,omitempty"`
	MultiplierHalf  *float64 `json:"multiplierHalf,omitempty"`
	MultiplierLow   *float64 `json:"multiplierLow,omitempty"`
	MultiplierEarly *float64 `json:"multiplierEarly,omitempty"`
	LevelThresholds []int    `json:"levelThresholds,omitempty"`
}

// ToConfig converts the document into a domain config. Unset tuning knobs
// stay zero-valued; the store's upsert treats those as "keep the stored value".
func (d *Document) ToConfig() *domain.TopicConfig {
	cfg := &domain.TopicConfig{
		TopicSlug:       d.Slug,
		TopicTitle:      d.Title,
		Category:        d.Category,
		Difficulty:      d.Difficulty,
		MaxXP:           d.MaxXP,
		BaseTaskXP:      d.BaseTaskXP,
		DailyXPDecay:    d.DailyXPDecay,
		MinXPPercent:    d.MinXPPercent,
		ReviewIntervals: d.ReviewIntervals,
		LevelThresholds: d.LevelThresholds,
	}

	if d.DailyFullTasks != nil {
		cfg.DailyFullTasks = *d.DailyFullTasks
	}
	if d.DailyHalfTasks != nil {
		cfg.DailyHalfTasks = *d.DailyHalfTasks
	}
	if d.MultiplierFull != nil {
		cfg.MultiplierFull = *d.MultiplierFull
	}
	if d.MultiplierHalf != nil {
		cfg.MultiplierHalf = *d.MultiplierHalf
	}
	if d.MultiplierLow != nil {
		cfg.MultiplierLow = *d.MultiplierLow
	}
	if d.MultiplierEarly != nil {
		cfg.MultiplierEarly = *d.MultiplierEarly
	}

	return cfg
}

// TopicResult records the outcome of syncing one topic directory.
type TopicResult struct {
	TopicSlug string `json:"topic_slug"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// Result summarizes a directory sync. A failed topic does not abort the run;
// it is recorded and the remaining topics still sync.
type Result struct {
	Synced  int           `json:"synced"`
	Total   int           `json:"total"`
	Results []TopicResult `json:"results"`
}

// txRunner opens a transaction on db and runs fn inside it.
// Injectable so tests can run fn without a live database.
type txRunner func(ctx context.Context, db *sql.DB, fn store.TxFn) error

// Service syncs topic configuration documents into the config store.
type Service struct {
	db      *sql.DB
	configs store.TopicConfigStore
	logger  *slog.Logger
	runInTx txRunner
}

// NewService creates a topic config sync service.
// If logger is nil, a default logger will be used.
func NewService(db *sql.DB, configs store.TopicConfigStore, log *slog.Logger) *Service {
	if db == nil {
		panic("db cannot be nil")
	}
	if configs == nil {
		panic("configs cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		db:      db,
		configs: configs,
		logger:  log.With(slog.String("component", "topicsync")),
		runInTx: store.RunInTransaction,
	}
}

// SyncDir scans dir for topic subdirectories, reads the config.json inside
// each, and upserts it. The directory name is the fallback slug when the
// document does not carry one.
func (s *Service) SyncDir(ctx context.Context, dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read topic config directory %q: %w", dir, err)
	}

	result := &Result{Results: []TopicResult{}}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		result.Total++
		topicResult := TopicResult{TopicSlug: entry.Name()}

		if err := s.syncTopic(ctx, filepath.Join(dir, entry.Name(), "config.json"), entry.Name()); err != nil {
			topicResult.Error = err.Error()
			s.logger.Warn("topic config sync failed",
				slog.String("topic_slug", entry.Name()),
				slog.String("error", err.Error()))
		} else {
			topicResult.Success = true
			result.Synced++
		}

		result.Results = append(result.Results, topicResult)
	}

	s.logger.Info("topic config sync complete",
		slog.Int("synced", result.Synced),
		slog.Int("total", result.Total))

	return result, nil
}

// syncTopic reads one config.json and upserts it inside a transaction, so
// the read-merge-write in the store cannot interleave with another sync.
func (s *Service) syncTopic(ctx context.Context, path, fallbackSlug string) error {
	doc, err := loadDocument(path)
	if err != nil {
		return err
	}
	if doc.Slug == "" {
		doc.Slug = fallbackSlug
	}

	cfg := doc.ToConfig()
	return s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.configs.WithTx(tx).Upsert(ctx, cfg)
	})
}

// loadDocument reads and decodes a single config.json.
func loadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config document: %w", err)
	}
	return &doc, nil
}
