package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/praxislabs/praxis-api/internal/config"
	"github.com/praxislabs/praxis-api/internal/domain/xp"
	"github.com/praxislabs/praxis-api/internal/platform/postgres"
	"github.com/praxislabs/praxis-api/internal/service/auth"
	"github.com/praxislabs/praxis-api/internal/service/scoring"
	"github.com/praxislabs/praxis-api/internal/service/topicsync"
	"github.com/praxislabs/praxis-api/internal/store"
)

// application holds the shared application dependencies so wiring and
// cleanup live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore     store.UserStore
	configStore   store.TopicConfigStore
	progressStore store.ProgressStore
	attemptStore  store.AttemptStore

	// Services
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	scoringService   scoring.ScoringService
	syncService      *topicsync.Service
}

// newApplication wires all dependencies. Core resources (config, logger,
// database) must already be established.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, logger, bcrypt.DefaultCost)
	app.configStore = postgres.NewPostgresTopicConfigStore(db, logger)
	app.progressStore = postgres.NewPostgresProgressStore(db, logger)
	app.attemptStore = postgres.NewPostgresAttemptStore(db, logger)

	app.scoringService = scoring.NewScoringService(
		db,
		app.configStore,
		app.progressStore,
		app.attemptStore,
		xp.NewService(),
		logger,
	)

	app.syncService = topicsync.NewService(db, app.configStore, logger)

	// Seed topic configs from disk when a content directory is configured.
	if dir := cfg.XP.TopicConfigDir; dir != "" {
		result, err := app.syncService.SyncDir(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to sync topic configs: %w", err)
		}
		logger.Info("startup topic config sync finished",
			"synced", result.Synced,
			"total", result.Total)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources during shutdown.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
