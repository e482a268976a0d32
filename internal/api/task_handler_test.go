package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/praxislabs/praxis-api/internal/api/shared"
	"github.com/praxislabs/praxis-api/internal/domain"
	"github.com/praxislabs/praxis-api/internal/domain/xp"
	"github.com/praxislabs/praxis-api/internal/service/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubScoringService implements scoring.ScoringService with function fields;
// unset operations fail the test if called.
type stubScoringService struct {
	t *testing.T

	submitTask      func(ctx context.Context, userID uuid.UUID, req scoring.SubmitTaskRequest) (*scoring.SubmitTaskResult, error)
	getTopicXP      func(ctx context.Context, userID uuid.UUID, topicSlug string) (*scoring.TopicXPSummary, error)
	listTopicXP     func(ctx context.Context, userID uuid.UUID) ([]*scoring.TopicXPSummary, error)
	getCompleted    func(ctx context.Context, userID uuid.UUID, topicSlug string) ([]string, error)
	getTopicStats   func(ctx context.Context, userID uuid.UUID, topicSlug string) (*scoring.TopicStats, error)
	getTaskHistory  func(ctx context.Context, userID uuid.UUID, taskID string, limit int) ([]*domain.TaskAttempt, error)
	listDue         func(ctx context.Context, userID uuid.UUID, topicSlug string) ([]*domain.TaskAttempt, error)
	calculateTaskXP func(ctx context.Context, userID uuid.UUID, req scoring.CalculateTaskXPRequest) (*xp.CalculationResult, error)
}

func (s *stubScoringService) SubmitTask(ctx context.Context, userID uuid.UUID, req scoring.SubmitTaskRequest) (*scoring.SubmitTaskResult, error) {
	if s.submitTask == nil {
		s.t.Fatal("unexpected SubmitTask call")
	}
	return s.submitTask(ctx, userID, req)
}

func (s *stubScoringService) GetTopicXP(ctx context.Context, userID uuid.UUID, topicSlug string) (*scoring.TopicXPSummary, error) {
	if s.getTopicXP == nil {
		s.t.Fatal("unexpected GetTopicXP call")
	}
	return s.getTopicXP(ctx, userID, topicSlug)
}

func (s *stubScoringService) ListTopicXP(ctx context.Context, userID uuid.UUID) ([]*scoring.TopicXPSummary, error) {
	if s.listTopicXP == nil {
		s.t.Fatal("unexpected ListTopicXP call")
	}
	return s.listTopicXP(ctx, userID)
}

func (s *stubScoringService) GetCompletedTaskIDs(ctx context.Context, userID uuid.UUID, topicSlug string) ([]string, error) {
	if s.getCompleted == nil {
		s.t.Fatal("unexpected GetCompletedTaskIDs call")
	}
	return s.getCompleted(ctx, userID, topicSlug)
}

func (s *stubScoringService) GetTopicStats(ctx context.Context, userID uuid.UUID, topicSlug string) (*scoring.TopicStats, error) {
	if s.getTopicStats == nil {
		s.t.Fatal("unexpected GetTopicStats call")
	}
	return s.getTopicStats(ctx, userID, topicSlug)
}

func (s *stubScoringService) GetTaskHistory(ctx context.Context, userID uuid.UUID, taskID string, limit int) ([]*domain.TaskAttempt, error) {
	if s.getTaskHistory == nil {
		s.t.Fatal("unexpected GetTaskHistory call")
	}
	return s.getTaskHistory(ctx, userID, taskID, limit)
}

func (s *stubScoringService) ListTasksDueForReview(ctx context.Context, userID uuid.UUID, topicSlug string) ([]*domain.TaskAttempt, error) {
	if s.listDue == nil {
		s.t.Fatal("unexpected ListTasksDueForReview call")
	}
	return s.listDue(ctx, userID, topicSlug)
}

func (s *stubScoringService) CalculateTaskXP(ctx context.Context, userID uuid.UUID, req scoring.CalculateTaskXPRequest) (*xp.CalculationResult, error) {
	if s.calculateTaskXP == nil {
		s.t.Fatal("unexpected CalculateTaskXP call")
	}
	return s.calculateTaskXP(ctx, userID, req)
}

// authedRequest builds a request with the user ID already placed in the
// context, as the auth middleware would.
func authedRequest(method, target string, body []byte, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func TestSubmitTaskHandler(t *testing.T) {
	userID := uuid.New()

	t.Run("successful submission", func(t *testing.T) {
		svc := &stubScoringService{
			t: t,
			submitTask: func(_ context.Context, gotUserID uuid.UUID, req scoring.SubmitTaskRequest) (*scoring.SubmitTaskResult, error) {
				assert.Equal(t, userID, gotUserID)
				assert.Equal(t, "task-1", req.TaskID)
				assert.Equal(t, "fractions", req.TopicSlug)
				assert.True(t, req.IsCorrect)
				return &scoring.SubmitTaskResult{
					Calculation: &xp.CalculationResult{
						XPEarned: 50,
						Message:  "Review on schedule · +50 XP",
					},
					Progress: &domain.TopicProgress{
						UserID:    userID,
						TopicSlug: "fractions",
						CurrentXP: 50,
					},
				}, nil
			},
		}
		handler := NewTaskHandler(svc)

		body, _ := json.Marshal(map[string]any{
			"task_id":    "task-1",
			"topic_slug": "fractions",
			"is_correct": true,
		})
		rec := httptest.NewRecorder()
		handler.SubmitTask(rec, authedRequest(http.MethodPost, "/api/tasks/submit", body, userID))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp SubmitTaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, 50, resp.XPResult.XPEarned)
		assert.Equal(t, int64(50), resp.UserXP.CurrentXP)
	})

	t.Run("incorrect submission reports success false", func(t *testing.T) {
		svc := &stubScoringService{
			t: t,
			submitTask: func(_ context.Context, _ uuid.UUID, req scoring.SubmitTaskRequest) (*scoring.SubmitTaskResult, error) {
				assert.False(t, req.IsCorrect)
				return &scoring.SubmitTaskResult{
					Calculation: &xp.CalculationResult{
						XPEarned: 0,
						Message:  "No XP for an incorrect answer",
					},
					Progress: &domain.TopicProgress{
						UserID:    userID,
						TopicSlug: "fractions",
						CurrentXP: 100,
					},
				}, nil
			},
		}
		handler := NewTaskHandler(svc)

		body, _ := json.Marshal(map[string]any{
			"task_id":    "task-1",
			"topic_slug": "fractions",
			"is_correct": false,
		})
		rec := httptest.NewRecorder()
		handler.SubmitTask(rec, authedRequest(http.MethodPost, "/api/tasks/submit", body, userID))

		// A handled outcome, not an error: 200 with the flag down and the
		// untouched progress for display.
		require.Equal(t, http.StatusOK, rec.Code)

		var resp SubmitTaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Zero(t, resp.XPResult.XPEarned)
		assert.Equal(t, int64(100), resp.UserXP.CurrentXP)
	})

	t.Run("missing fields rejected before the service", func(t *testing.T) {
		handler := NewTaskHandler(&stubScoringService{t: t})

		body, _ := json.Marshal(map[string]any{"is_correct": true})
		rec := httptest.NewRecorder()
		handler.SubmitTask(rec, authedRequest(http.MethodPost, "/api/tasks/submit", body, userID))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid difficulty rejected", func(t *testing.T) {
		handler := NewTaskHandler(&stubScoringService{t: t})

		body, _ := json.Marshal(map[string]any{
			"task_id":    "task-1",
			"topic_slug": "fractions",
			"difficulty": "brutal",
		})
		rec := httptest.NewRecorder()
		handler.SubmitTask(rec, authedRequest(http.MethodPost, "/api/tasks/submit", body, userID))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown topic maps to 404", func(t *testing.T) {
		svc := &stubScoringService{
			t: t,
			submitTask: func(context.Context, uuid.UUID, scoring.SubmitTaskRequest) (*scoring.SubmitTaskResult, error) {
				return nil, scoring.ErrTopicConfigNotFound
			},
		}
		handler := NewTaskHandler(svc)

		body, _ := json.Marshal(map[string]any{
			"task_id":    "task-1",
			"topic_slug": "missing",
			"is_correct": true,
		})
		rec := httptest.NewRecorder()
		handler.SubmitTask(rec, authedRequest(http.MethodPost, "/api/tasks/submit", body, userID))

		require.Equal(t, http.StatusNotFound, rec.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Topic configuration not found", resp.Error)
	})

	t.Run("unauthenticated request rejected", func(t *testing.T) {
		handler := NewTaskHandler(&stubScoringService{t: t})

		body, _ := json.Marshal(map[string]any{
			"task_id":    "task-1",
			"topic_slug": "fractions",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/tasks/submit", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		handler.SubmitTask(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCalculateXPHandler(t *testing.T) {
	userID := uuid.New()

	t.Run("preview without persistence", func(t *testing.T) {
		svc := &stubScoringService{
			t: t,
			calculateTaskXP: func(_ context.Context, _ uuid.UUID, req scoring.CalculateTaskXPRequest) (*xp.CalculationResult, error) {
				assert.Equal(t, "task-9", req.TaskID)
				return &xp.CalculationResult{XPEarned: 100, Message: "First attempt! +100 XP"}, nil
			},
		}
		handler := NewTaskHandler(svc)

		body, _ := json.Marshal(map[string]any{
			"task_id":    "task-9",
			"topic_slug": "fractions",
		})
		rec := httptest.NewRecorder()
		handler.CalculateXP(rec, authedRequest(http.MethodPost, "/api/tasks/calculate-xp", body, userID))

		require.Equal(t, http.StatusOK, rec.Code)

		var calc xp.CalculationResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &calc))
		assert.Equal(t, 100, calc.XPEarned)
	})

	t.Run("malformed body", func(t *testing.T) {
		handler := NewTaskHandler(&stubScoringService{t: t})

		rec := httptest.NewRecorder()
		handler.CalculateXP(rec, authedRequest(http.MethodPost, "/api/tasks/calculate-xp", []byte("{not json"), userID))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
