package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenType distinguishes the purpose a token was issued for. Each type is
// signed with its own secret, so a token of one type never validates as another.
type TokenType string

const (
	// TokenTypeAccess authenticates API requests.
	TokenTypeAccess TokenType = "access"
	// TokenTypeRefresh is exchanged for a new token pair.
	TokenTypeRefresh TokenType = "refresh"
	// TokenTypeSocket authenticates WebSocket connections.
	TokenTypeSocket TokenType = "socket"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed JWT access token containing the user's information.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns ErrExpiredToken, ErrInvalidToken or ErrWrongTokenType on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed JWT refresh token containing the user's information.
	// Refresh tokens have a longer lifetime and are used to obtain new token pairs.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateRefreshToken validates the provided refresh token string and extracts the claims.
	// Every failure is reported as ErrInvalidRefreshToken.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateSocketToken creates a short-lived token for the WebSocket gateway.
	GenerateSocketToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateSocketToken validates a WebSocket token.
	ValidateSocketToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the custom claims structure for the JWT tokens.
// It extends standard JWT registered claims with application-specific fields.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// TokenType indicates the purpose of the token.
	TokenType TokenType `json:"type,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
