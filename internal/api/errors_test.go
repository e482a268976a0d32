package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/praxislabs/praxis-api/internal/service/auth"
	"github.com/praxislabs/praxis-api/internal/service/scoring"
	"github.com/praxislabs/praxis-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid refresh token", auth.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{"topic config not found", scoring.ErrTopicConfigNotFound, http.StatusNotFound},
		{"progress not found", scoring.ErrProgressNotFound, http.StatusNotFound},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"invalid input", scoring.ErrInvalidInput, http.StatusBadRequest},
		{"wrapped invalid input", fmt.Errorf("%w: task ID is required", scoring.ErrInvalidInput), http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, "An unexpected error occurred"},
		{"topic config not found", scoring.ErrTopicConfigNotFound, "Topic configuration not found"},
		{"progress not found", scoring.ErrProgressNotFound, "No progress recorded for this topic"},
		{"invalid input", scoring.ErrInvalidInput, "Invalid request data"},
		{"submission failure", errors.New("failed to score submission: db down"), "Submission failed"},
		{"unknown error", errors.New("secret internals"), "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}
