package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/praxislabs/praxis-api/internal/api"
	apiMiddleware "github.com/praxislabs/praxis-api/internal/api/middleware"
)

// setupRouter configures the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	taskHandler := api.NewTaskHandler(app.scoringService)
	xpHandler := api.NewXPHandler(app.scoringService)
	syncHandler := api.NewSyncHandler(app.syncService, app.config.XP.TopicConfigDir)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Task submission and legacy preview
			r.Post("/tasks/submit", taskHandler.SubmitTask)
			r.Post("/tasks/calculate-xp", taskHandler.CalculateXP)

			// XP reads
			r.Get("/xp/topics", xpHandler.ListTopics)
			r.Get("/xp/topics/{slug}", xpHandler.GetTopic)
			r.Get("/xp/topics/{slug}/completed", xpHandler.GetCompletedTasks)
			r.Get("/xp/topics/{slug}/stats", xpHandler.GetTopicStats)
			r.Get("/xp/topics/{slug}/due", xpHandler.GetDueTasks)
			r.Get("/xp/tasks/{taskID}/history", xpHandler.GetTaskHistory)

			// Admin
			r.Post("/admin/sync-topics", syncHandler.SyncTopics)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
