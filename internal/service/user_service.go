package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/cache"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// SocketTokenIssuer issues WebSocket tokens.
type SocketTokenIssuer interface {
	GenerateSocketToken(ctx context.Context, userID uuid.UUID) (string, error)
}

// SocketDisconnector closes a user's socket connection.
type SocketDisconnector interface {
	Disconnect(userID uuid.UUID)
}

// Profile is the authenticated user's account together with a socket token.
type Profile struct {
	User        *domain.User
	SocketToken string
}

// ProfileUpdate lists the profile fields to change. Nil fields are left untouched.
type ProfileUpdate struct {
	Name  *string
	Email *string
}

// UserService provides profile and account operations for the authenticated user.
type UserService interface {
	// GetProfile returns the user and a fresh socket token.
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)

	// EditProfile applies update and returns the updated user.
	EditProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error)

	// DeleteAccount removes the user with their tasks, cached lists and socket.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	tokens    SocketTokenIssuer
	cache     cache.Store
	sockets   SocketDisconnector
	logger    *slog.Logger
}

// Ensure UserServiceImpl implements UserService interface
var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	tokens SocketTokenIssuer,
	cacheStore cache.Store,
	sockets SocketDisconnector,
	logger *slog.Logger,
) *UserServiceImpl {
	return &UserServiceImpl{
		userStore: userStore,
		tokens:    tokens,
		cache:     cacheStore,
		sockets:   sockets,
		logger:    logger.With("component", "user_service"),
	}
}

// GetProfile implements UserService.
func (s *UserServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	token, err := s.tokens.GenerateSocketToken(ctx, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to issue socket token",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to issue socket token: %w", err)
	}

	return &Profile{User: user, SocketToken: token}, nil
}

// EditProfile implements UserService. The full user is loaded, the requested
// fields replaced and the complete user written back.
func (s *UserServiceImpl) EditProfile(
	ctx context.Context,
	userID uuid.UUID,
	update ProfileUpdate,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if update.Name == nil && update.Email == nil {
		return nil, ErrNoChanges
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if utf8.RuneCountInString(name) > domain.MaxNameLength {
			return nil, domain.ErrNameTooLong
		}
		user.Name = name
	}

	if update.Email != nil {
		email := domain.NormalizeEmail(*update.Email)
		if err := domain.ValidateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}

	if err := s.userStore.Update(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("profile update rejected: email taken", "user_id", userID)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	log.Info("profile updated", "user_id", userID)
	return user, nil
}

// DeleteAccount implements UserService. Tasks and favorites go with the user
// through the database cascade.
func (s *UserServiceImpl) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.userStore.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	cache.Invalidate(ctx, s.cache, cache.UserKeys(userID)...)
	s.sockets.Disconnect(userID)

	logger.FromContextOrDefault(ctx, s.logger).Info("account deleted", "user_id", userID)
	return nil
}
