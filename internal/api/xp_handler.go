package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/praxislabs/praxis-api/internal/api/shared"
	"github.com/praxislabs/praxis-api/internal/service/scoring"
)

// XPHandler serves the read side of the XP system: per-topic progress,
// completed tasks, stats, history and review queues.
type XPHandler struct {
	scoringService scoring.ScoringService
}

// NewXPHandler creates a new XPHandler with the given dependencies.
func NewXPHandler(scoringService scoring.ScoringService) *XPHandler {
	return &XPHandler{scoringService: scoringService}
}

// topicSlug extracts the {slug} path parameter.
func topicSlug(r *http.Request) string {
	return chi.URLParam(r, "slug")
}

// ListTopics handles GET /api/xp/topics.
func (h *XPHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	summaries, err := h.scoringService.ListTopicXP(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summaries)
}

// GetTopic handles GET /api/xp/topics/{slug}.
func (h *XPHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.scoringService.GetTopicXP(r.Context(), userID, topicSlug(r))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// GetCompletedTasks handles GET /api/xp/topics/{slug}/completed.
func (h *XPHandler) GetCompletedTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	slug := topicSlug(r)
	taskIDs, err := h.scoringService.GetCompletedTaskIDs(r.Context(), userID, slug)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CompletedTasksResponse{
		TopicSlug: slug,
		TaskIDs:   taskIDs,
	})
}

// GetTopicStats handles GET /api/xp/topics/{slug}/stats.
func (h *XPHandler) GetTopicStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.scoringService.GetTopicStats(r.Context(), userID, topicSlug(r))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// GetTaskHistory handles GET /api/xp/tasks/{taskID}/history.
// The optional "limit" query parameter caps the number of attempts returned.
func (h *XPHandler) GetTaskHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	taskID := chi.URLParam(r, "taskID")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	attempts, err := h.scoringService.GetTaskHistory(r.Context(), userID, taskID, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskHistoryResponse{
		TaskID:   taskID,
		Attempts: attempts,
	})
}

// GetDueTasks handles GET /api/xp/topics/{slug}/due.
func (h *XPHandler) GetDueTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	slug := topicSlug(r)
	tasks, err := h.scoringService.ListTasksDueForReview(r.Context(), userID, slug)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DueTasksResponse{
		TopicSlug: slug,
		Tasks:     tasks,
	})
}
