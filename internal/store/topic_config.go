package store

import (
	"context"
	"database/sql"

	"github.com/praxislabs/praxis-api/internal/domain"
)

// TopicConfigStore defines the interface for topic scoring configuration persistence.
// Version: 1.0
type TopicConfigStore interface {
	// GetBySlug retrieves the scoring configuration for a topic.
	// Returns ErrTopicConfigNotFound if no configuration exists for the slug.
	GetBySlug(ctx context.Context, topicSlug string) (*domain.TopicConfig, error)

	// List retrieves all topic configurations ordered by slug.
	// Returns an empty slice when no configurations exist.
	List(ctx context.Context) ([]*domain.TopicConfig, error)

	// Upsert inserts a new configuration or updates the existing row for the
	// same slug. Identity and scoring fields always overwrite; tuning knobs
	// left unset on the incoming config (daily task counts, multipliers,
	// level thresholds) preserve the stored values, so a partial sync cannot
	// erase manual tuning. It handles domain validation internally.
	Upsert(ctx context.Context, config *domain.TopicConfig) error

	// WithTx returns a new TopicConfigStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) TopicConfigStore
}
