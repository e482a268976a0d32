package api

import (
	"github.com/google/uuid"
	"github.com/praxislabs/praxis-api/internal/domain"
	"github.com/praxislabs/praxis-api/internal/domain/xp"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT used for API authorization.
	AccessToken string `json:"token"`

	// RefreshToken is the JWT used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh
// endpoint: a fresh token pair.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SubmitTaskRequest defines the payload for the task submission endpoint.
// BaseXP overrides the topic's configured base award; Difficulty selects a
// difficulty-keyed award when BaseXP is absent.
type SubmitTaskRequest struct {
	TaskID     string `json:"task_id"     validate:"required"`
	TopicSlug  string `json:"topic_slug"  validate:"required"`
	IsCorrect  bool   `json:"is_correct"`
	UserAnswer string `json:"user_answer,omitempty"`
	BaseXP     *int   `json:"base_xp,omitempty"    validate:"omitempty,gte=0"`
	Difficulty string `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium moderate hard"`
}

// SubmitTaskResponse defines the response for the task submission endpoint.
type SubmitTaskResponse struct {
	Success  bool                  `json:"success"`
	Message  string                `json:"message"`
	XPResult *xp.CalculationResult `json:"xp_result,omitempty"`
	UserXP   *domain.TopicProgress `json:"user_xp,omitempty"`
}

// CalculateXPRequest defines the payload for the legacy per-task XP preview.
type CalculateXPRequest struct {
	TaskID     string `json:"task_id"     validate:"required"`
	TopicSlug  string `json:"topic_slug"  validate:"required"`
	BaseXP     *int   `json:"base_xp,omitempty"    validate:"omitempty,gte=0"`
	Difficulty string `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium moderate hard"`
}

// CompletedTasksResponse lists the task IDs already answered correctly.
type CompletedTasksResponse struct {
	TopicSlug string   `json:"topic_slug"`
	TaskIDs   []string `json:"task_ids"`
}

// TaskHistoryResponse lists a user's attempts at one task, newest first.
type TaskHistoryResponse struct {
	TaskID   string                `json:"task_id"`
	Attempts []*domain.TaskAttempt `json:"attempts"`
}

// DueTasksResponse lists the attempts whose per-task review date has arrived.
type DueTasksResponse struct {
	TopicSlug string                `json:"topic_slug"`
	Tasks     []*domain.TaskAttempt `json:"tasks"`
}
