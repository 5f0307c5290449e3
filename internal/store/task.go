package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"gorm.io/gorm"
)

// TaskStore defines the interface for task persistence. Every lookup that
// takes a user ID is scoped to tasks owned by that user.
type TaskStore interface {
	// Create saves a new task. Returns ErrForeignKey if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task owned by userID.
	// Returns ErrTaskNotFound if it does not exist or belongs to another user.
	GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// ListByUser returns all tasks owned by userID, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)

	// CountByUser returns the number of tasks owned by userID.
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Update writes the title of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task owned by userID.
	// Returns ErrTaskNotFound if nothing was deleted.
	Delete(ctx context.Context, userID, taskID uuid.UUID) error

	// DeleteAllByUser removes every task owned by userID and reports how many were removed.
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// AddFavorite marks a task as a favorite of userID. Adding twice is a no-op.
	AddFavorite(ctx context.Context, userID, taskID uuid.UUID) error

	// RemoveFavorite unmarks a favorite. Removing a missing favorite is a no-op.
	RemoveFavorite(ctx context.Context, userID, taskID uuid.UUID) error

	// ListFavorites returns the tasks userID marked as favorite, newest first.
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)

	// WithTx returns a TaskStore bound to the given transaction.
	WithTx(tx *gorm.DB) TaskStore
}
