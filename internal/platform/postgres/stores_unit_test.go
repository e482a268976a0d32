package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/praxislabs/praxis-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// untouchableDB fails the test if any store method reaches the database.
// It verifies that validation happens before any SQL is issued.
type untouchableDB struct {
	t *testing.T
}

func (d untouchableDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	d.t.Fatal("ExecContext should not be reached")
	return nil, nil
}

func (d untouchableDB) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	d.t.Fatal("PrepareContext should not be reached")
	return nil, nil
}

func (d untouchableDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	d.t.Fatal("QueryContext should not be reached")
	return nil, nil
}

func (d untouchableDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	d.t.Fatal("QueryRowContext should not be reached")
	return nil
}

func TestNewStoresRejectNilDB(t *testing.T) {
	assert.Panics(t, func() { NewPostgresProgressStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresAttemptStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresTopicConfigStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresUserStore(nil, nil, 0) })
}

func TestProgressCreateValidatesBeforeDB(t *testing.T) {
	s := NewPostgresProgressStore(untouchableDB{t: t}, nil)

	progress := &domain.TopicProgress{
		ID:     uuid.New(),
		UserID: uuid.New(),
		// Missing topic slug
		LastActivity: time.Now().UTC(),
		CreatedAt:    time.Now().UTC(),
	}

	err := s.Create(context.Background(), progress)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyProgressSlug)
}

func TestProgressUpdateValidatesBeforeDB(t *testing.T) {
	s := NewPostgresProgressStore(untouchableDB{t: t}, nil)

	progress := &domain.TopicProgress{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		TopicSlug:    "fractions",
		CurrentXP:    -10, // Negative XP is invalid
		LastActivity: time.Now().UTC(),
		CreatedAt:    time.Now().UTC(),
	}

	err := s.Update(context.Background(), progress)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNegativeXP)
}

func TestAttemptCreateValidatesBeforeDB(t *testing.T) {
	s := NewPostgresAttemptStore(untouchableDB{t: t}, nil)

	attempt := &domain.TaskAttempt{
		ID:     uuid.New(),
		UserID: uuid.New(),
		// Missing task ID
		TopicSlug:   "fractions",
		CompletedAt: time.Now().UTC(),
	}

	err := s.Create(context.Background(), attempt)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyAttemptTaskID)
}

func TestUserCreateValidatesBeforeDB(t *testing.T) {
	s := NewPostgresUserStore(untouchableDB{t: t}, nil, 0)

	user := &domain.User{
		ID:        uuid.New(),
		Email:     "not-an-email",
		Password:  "longenoughpassword",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	err := s.Create(context.Background(), user)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}
