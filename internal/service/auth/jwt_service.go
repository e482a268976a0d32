package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and validates the signed tokens that tie task
// submissions to a user account. Access tokens authorize API calls; refresh
// tokens carry a longer lifetime and are exchanged for fresh token pairs.
type JWTService interface {
	// GenerateToken issues a signed access token for the user.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken checks an access token's signature, lifetime and type,
	// returning its claims. Fails with ErrExpiredToken, ErrInvalidToken or
	// ErrWrongTokenType.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken issues a signed refresh token for the user.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateRefreshToken checks a refresh token the same way ValidateToken
	// checks an access token. The returned claims identify the user a fresh
	// token pair should be minted for.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the decoded view of a validated token. The wire encoding lives
// in the implementation; callers only read these fields.
type Claims struct {
	UserID    uuid.UUID
	TokenType string // "access" or "refresh"

	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
