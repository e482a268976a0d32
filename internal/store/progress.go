package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/praxislabs/praxis-api/internal/domain"
)

// ProgressStore defines the interface for per-user, per-topic progress persistence.
// Version: 1.0
type ProgressStore interface {
	// Create saves a new progress row.
	// It handles domain validation internally.
	// Returns ErrProgressExists if a row for the user/topic pair already exists.
	Create(ctx context.Context, progress *domain.TopicProgress) error

	// Get retrieves progress by the combination of user ID and topic slug.
	// Returns ErrProgressNotFound if the row does not exist.
	// NOTE: This method does NOT provide any row locking, so it should not be used
	// when you plan to update the row and need concurrency protection.
	Get(ctx context.Context, userID uuid.UUID, topicSlug string) (*domain.TopicProgress, error)

	// GetForUpdate retrieves progress with a row-level lock using SELECT FOR UPDATE.
	// This should be used within a transaction when you plan to update the row
	// and need protection from concurrent submissions.
	// Returns ErrProgressNotFound if the row does not exist.
	GetForUpdate(ctx context.Context, userID uuid.UUID, topicSlug string) (*domain.TopicProgress, error)

	// Update modifies an existing progress row.
	// It handles domain validation internally.
	// The ID field identifies the record to update.
	// Returns ErrProgressNotFound if the row does not exist.
	Update(ctx context.Context, progress *domain.TopicProgress) error

	// ListForUser retrieves every progress row belonging to the user,
	// ordered by topic slug. Returns an empty slice when the user has none.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.TopicProgress, error)

	// WithTx returns a new ProgressStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) ProgressStore
}
