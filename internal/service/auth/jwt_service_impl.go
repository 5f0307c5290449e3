package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

// minSecretLength is the shortest signing secret accepted for any token type.
const minSecretLength = 32

// signer holds the key material and lifetime for one token type.
type signer struct {
	key      []byte
	lifetime time.Duration
}

// hmacJWTService is an implementation of JWTService using HMAC-SHA signing.
type hmacJWTService struct {
	signers   map[TokenType]signer
	timeFunc  func() time.Time // Injectable for testing
	clockSkew time.Duration    // Allowed time difference for validation to handle clock drift
}

// jwtCustomClaims defines the structure of JWT claims we use
type jwtCustomClaims struct {
	UserID    uuid.UUID `json:"uid"`
	TokenType TokenType `json:"type"`
	jwt.RegisteredClaims
}

// Ensure hmacJWTService implements JWTService interface
var _ JWTService = (*hmacJWTService)(nil)

// NewJWTService creates a new JWT service using HMAC-SHA signing with a
// separate secret per token type.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	return newJWTService(cfg, time.Now)
}

func newJWTService(cfg config.AuthConfig, timeFunc func() time.Time) (*hmacJWTService, error) {
	secrets := map[TokenType]string{
		TokenTypeAccess:  cfg.AccessSecret,
		TokenTypeRefresh: cfg.RefreshSecret,
		TokenTypeSocket:  cfg.SocketSecret,
	}
	for tokenType, secret := range secrets {
		if len(secret) < minSecretLength {
			return nil, fmt.Errorf("%s token secret must be at least %d characters", tokenType, minSecretLength)
		}
	}

	return &hmacJWTService{
		signers: map[TokenType]signer{
			TokenTypeAccess: {
				key:      []byte(cfg.AccessSecret),
				lifetime: time.Duration(cfg.AccessTokenLifetimeMinutes) * time.Minute,
			},
			TokenTypeRefresh: {
				key:      []byte(cfg.RefreshSecret),
				lifetime: time.Duration(cfg.RefreshTokenLifetimeMinutes) * time.Minute,
			},
			TokenTypeSocket: {
				key:      []byte(cfg.SocketSecret),
				lifetime: time.Duration(cfg.SocketTokenLifetimeMinutes) * time.Minute,
			},
		},
		timeFunc:  timeFunc,
		clockSkew: 2 * time.Minute,
	}, nil
}

// GenerateToken creates a signed JWT access token with user claims.
func (s *hmacJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.generate(ctx, TokenTypeAccess, userID, time.Time{})
}

// ValidateToken validates a JWT access token and returns the claims if valid.
func (s *hmacJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.validate(ctx, TokenTypeAccess, tokenString)
}

// GenerateRefreshToken creates a signed JWT refresh token with user claims.
func (s *hmacJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.generate(ctx, TokenTypeRefresh, userID, time.Time{})
}

// ValidateRefreshToken validates a JWT refresh token. All failures collapse
// into ErrInvalidRefreshToken.
func (s *hmacJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.validate(ctx, TokenTypeRefresh, tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)
	}
	return claims, nil
}

// GenerateSocketToken creates a signed JWT for the WebSocket gateway.
func (s *hmacJWTService) GenerateSocketToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.generate(ctx, TokenTypeSocket, userID, time.Time{})
}

// ValidateSocketToken validates a WebSocket token.
func (s *hmacJWTService) ValidateSocketToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.validate(ctx, TokenTypeSocket, tokenString)
}

// generate signs a token of the given type. A zero expiry uses the configured lifetime.
func (s *hmacJWTService) generate(
	ctx context.Context,
	tokenType TokenType,
	userID uuid.UUID,
	expiry time.Time,
) (string, error) {
	log := logger.FromContext(ctx)
	sig := s.signers[tokenType]
	now := s.timeFunc()
	if expiry.IsZero() {
		expiry = now.Add(sig.lifetime)
	}

	claims := jwtCustomClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.New().String(), // Unique token ID
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(sig.key)
	if err != nil {
		log.Error("failed to sign JWT",
			"error", err,
			"user_id", userID,
			"token_type", tokenType,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", fmt.Errorf("failed to sign %s token with HMAC-SHA256: %w", tokenType, err)
	}

	return signedToken, nil
}

func (s *hmacJWTService) validate(
	ctx context.Context,
	tokenType TokenType,
	tokenString string,
) (*Claims, error) {
	log := logger.FromContext(ctx)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	now := s.timeFunc()
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time {
			return now
		}),
	}

	key := s.signers[tokenType].key
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return key, nil
		},
		parserOpts...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token validation failed: token expired",
				"error", err,
				"token_type", tokenType)
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("token validation failed: token not yet valid",
				"error", err,
				"token_type", tokenType)
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("token validation failed",
				"error", err,
				"token_type", tokenType,
				"error_type", fmt.Sprintf("%T", err))
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		log.Debug("token validation failed: invalid claims", "token_type", tokenType)
		return nil, ErrInvalidToken
	}

	if claims.TokenType != tokenType {
		log.Debug("token validation failed: wrong token type",
			"expected", tokenType,
			"actual", claims.TokenType)
		return nil, ErrWrongTokenType
	}

	if claims.UserID == uuid.Nil || claims.ExpiresAt == nil || claims.IssuedAt == nil {
		log.Debug("token validation failed: incomplete claims", "token_type", tokenType)
		return nil, ErrInvalidToken
	}

	log.Debug("token validated successfully",
		"user_id", claims.UserID,
		"token_id", claims.ID,
		"token_type", tokenType,
		"expiry", claims.ExpiresAt.Time)

	return &Claims{
		UserID:    claims.UserID,
		TokenType: claims.TokenType,
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}
