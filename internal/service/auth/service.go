package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
	"gorm.io/gorm"
)

// TokenPair is the access and refresh token issued on sign-up, sign-in and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service implements the authentication flows on top of the user store.
// Each issued refresh token replaces the previous one: only its hash is kept.
type Service struct {
	users  store.UserStore
	db     *gorm.DB
	jwt    JWTService
	hasher PasswordHasher
	logger *slog.Logger
}

// NewService creates an authentication Service.
func NewService(
	users store.UserStore,
	db *gorm.DB,
	jwtService JWTService,
	hasher PasswordHasher,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:  users,
		db:     db,
		jwt:    jwtService,
		hasher: hasher,
		logger: logger.With("component", "auth_service"),
	}
}

// SignUp registers a new account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password, name string) (*domain.User, TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, password, name)
	if err != nil {
		return nil, TokenPair{}, err
	}

	if _, err := s.users.GetByEmail(ctx, user.Email); err == nil {
		log.Debug("sign-up rejected: email already registered")
		return nil, TokenPair{}, store.ErrEmailExists
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return nil, TokenPair{}, fmt.Errorf("failed to check email: %w", err)
	}

	user.HashedPassword, err = s.hasher.Hash(user.Password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	user.Password = ""

	tokens, refreshHash, err := s.sign(ctx, user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	// The account and its first session are stored together so a failed
	// sign-up leaves nothing behind.
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		txUsers := s.users.WithTx(tx)
		if err := txUsers.Create(ctx, user); err != nil {
			return err
		}
		return txUsers.SetRefreshTokenHash(ctx, user.ID, refreshHash)
	})
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("failed to create user: %w", err)
	}
	user.RefreshTokenHash = refreshHash

	log.Info("user signed up", "user_id", user.ID)
	return user, tokens, nil
}

// SignIn verifies credentials and issues a fresh token pair.
func (s *Service) SignIn(ctx context.Context, email, password string) (*domain.User, TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateEmail(domain.NormalizeEmail(email)); err != nil {
		return nil, TokenPair{}, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, TokenPair{}, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		log.Debug("sign-in rejected: password mismatch", "user_id", user.ID)
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	tokens, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	log.Info("user signed in", "user_id", user.ID)
	return user, tokens, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token must
// match the hash stored for its user; the stored hash is then rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("refresh rejected: user no longer exists", "user_id", claims.UserID)
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, fmt.Errorf("failed to load user: %w", err)
	}

	if err := CompareRefreshToken(s.hasher, user.RefreshTokenHash, refreshToken); err != nil {
		log.Debug("refresh rejected: token does not match stored hash", "user_id", user.ID)
		return TokenPair{}, ErrInvalidRefreshToken
	}

	return s.issue(ctx, user.ID)
}

// ResetPassword sets a new password for the account with the given email. The
// email must belong to userID. Any outstanding refresh token is revoked.
func (s *Service) ResetPassword(ctx context.Context, userID uuid.UUID, email, newPassword string) error {
	if err := domain.ValidateEmail(domain.NormalizeEmail(email)); err != nil {
		return err
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user.ID != userID {
		return ErrEmailNotOwned
	}

	user.HashedPassword, err = s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		txUsers := s.users.WithTx(tx)
		if err := txUsers.Update(ctx, user); err != nil {
			return err
		}
		return txUsers.SetRefreshTokenHash(ctx, user.ID, "")
	})
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("password reset", "user_id", user.ID)
	return nil
}

// Logout revokes the user's refresh token.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.SetRefreshTokenHash(ctx, userID, ""); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("user logged out", "user_id", userID)
	return nil
}

// issue signs a new pair and stores the hash of its refresh token.
func (s *Service) issue(ctx context.Context, userID uuid.UUID) (TokenPair, error) {
	tokens, hash, err := s.sign(ctx, userID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.users.SetRefreshTokenHash(ctx, userID, hash); err != nil {
		return TokenPair{}, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return tokens, nil
}

// sign creates a token pair and the hash to store for its refresh token.
func (s *Service) sign(ctx context.Context, userID uuid.UUID) (TokenPair, string, error) {
	access, err := s.jwt.GenerateToken(ctx, userID)
	if err != nil {
		return TokenPair{}, "", err
	}
	refresh, err := s.jwt.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return TokenPair{}, "", err
	}

	hash, err := HashRefreshToken(s.hasher, refresh)
	if err != nil {
		return TokenPair{}, "", err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, hash, nil
}
