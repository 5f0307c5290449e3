package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"gorm.io/gorm"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The user must already carry a
	// HashedPassword. Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their (normalized) email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update writes email, name and hashed password of an existing user.
	// Returns ErrUserNotFound if the user does not exist and ErrEmailExists
	// if the new email belongs to another user.
	Update(ctx context.Context, user *domain.User) error

	// SetRefreshTokenHash replaces the stored refresh token hash.
	// An empty hash clears it. Returns ErrUserNotFound if the user does not exist.
	SetRefreshTokenHash(ctx context.Context, id uuid.UUID, hash string) error

	// Delete removes a user and, by cascade, their tasks and favorites.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a UserStore bound to the given transaction.
	WithTx(tx *gorm.DB) UserStore
}
