package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/praxislabs/praxis-api/internal/api/shared"
	"github.com/praxislabs/praxis-api/internal/service/scoring"
)

// TaskHandler handles task submission and the legacy XP preview.
type TaskHandler struct {
	scoringService scoring.ScoringService
	validator      *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(scoringService scoring.ScoringService) *TaskHandler {
	return &TaskHandler{
		scoringService: scoringService,
		validator:      validator.New(),
	}
}

// SubmitTask handles POST /api/tasks/submit. A correct answer awards XP and
// advances the repetition schedule; an incorrect one only records an attempt.
func (h *TaskHandler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req SubmitTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.scoringService.SubmitTask(r.Context(), userID, scoring.SubmitTaskRequest{
		TaskID:         req.TaskID,
		TopicSlug:      req.TopicSlug,
		IsCorrect:      req.IsCorrect,
		TaskBaseXP:     req.BaseXP,
		TaskDifficulty: req.Difficulty,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	// An incorrect answer is a handled outcome, not an error: 200 with
	// success=false and the zero-XP result.
	shared.RespondWithJSON(w, r, http.StatusOK, SubmitTaskResponse{
		Success:  req.IsCorrect,
		Message:  result.Calculation.Message,
		XPResult: result.Calculation,
		UserXP:   result.Progress,
	})
}

// CalculateXP handles POST /api/tasks/calculate-xp: the legacy per-task decay
// preview. Nothing is persisted.
func (h *TaskHandler) CalculateXP(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CalculateXPRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	calc, err := h.scoringService.CalculateTaskXP(r.Context(), userID, scoring.CalculateTaskXPRequest{
		TaskID:         req.TaskID,
		TopicSlug:      req.TopicSlug,
		TaskBaseXP:     req.BaseXP,
		TaskDifficulty: req.Difficulty,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, calc)
}
