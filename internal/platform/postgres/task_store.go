package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/redact"
	"github.com/phrazzld/taskflow-api/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskStore implements store.TaskStore on top of gorm.
type TaskStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewTaskStore creates a TaskStore. The database handle is owned by the caller.
func NewTaskStore(db *gorm.DB, logger *slog.Logger) *TaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *TaskStore) WithTx(tx *gorm.DB) store.TaskStore {
	return &TaskStore{db: tx, logger: s.logger}
}

func (s *TaskStore) fail(ctx context.Context, op string, err error, attrs ...any) error {
	attrs = append(attrs,
		slog.String("operation", op),
		slog.String("error", redact.Error(err)))
	logger.FromContextOrDefault(ctx, s.logger).Error("task store operation failed", attrs...)
	return store.NewStoreError("task", op, "query failed", MapError(err))
}

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	model := taskFromDomain(task)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&model).Error; err != nil {
		if IsForeignKeyViolation(err) {
			return store.NewStoreError("task", "create", "owner does not exist", store.ErrForeignKey)
		}
		return s.fail(ctx, "create", err, slog.String("task_id", task.ID.String()))
	}
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *TaskStore) GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	var model taskModel
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrTaskNotFound
		}
		return nil, s.fail(ctx, "get_by_id", err, slog.String("task_id", taskID.String()))
	}
	task := model.toDomain()
	return &task, nil
}

// ListByUser implements store.TaskStore.ListByUser
func (s *TaskStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	var models []taskModel
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, s.fail(ctx, "list_by_user", err)
	}
	return tasksToDomain(models), nil
}

// CountByUser implements store.TaskStore.CountByUser
func (s *TaskStore) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&taskModel{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, s.fail(ctx, "count_by_user", err)
	}
	return n, nil
}

// Update implements store.TaskStore.Update
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	result := s.db.WithContext(ctx).
		Model(&taskModel{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Updates(map[string]any{
			"title":      task.Title,
			"updated_at": task.UpdatedAt,
		})
	if result.Error != nil {
		return s.fail(ctx, "update", result.Error, slog.String("task_id", task.ID.String()))
	}
	return checkRowsAffected(result.RowsAffected, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete
func (s *TaskStore) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		Delete(&taskModel{})
	if result.Error != nil {
		return s.fail(ctx, "delete", result.Error, slog.String("task_id", taskID.String()))
	}
	return checkRowsAffected(result.RowsAffected, store.ErrTaskNotFound)
}

// DeleteAllByUser implements store.TaskStore.DeleteAllByUser
func (s *TaskStore) DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&taskModel{})
	if result.Error != nil {
		return 0, s.fail(ctx, "delete_all_by_user", result.Error)
	}
	return result.RowsAffected, nil
}

// AddFavorite implements store.TaskStore.AddFavorite. The task must be owned
// by userID; otherwise ErrTaskNotFound is returned.
func (s *TaskStore) AddFavorite(ctx context.Context, userID, taskID uuid.UUID) error {
	if _, err := s.GetByID(ctx, userID, taskID); err != nil {
		return err
	}

	fav := favoriteModel{UserID: userID, TaskID: taskID, CreatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&fav).Error
	if err != nil {
		if IsForeignKeyViolation(err) {
			return store.ErrTaskNotFound
		}
		return s.fail(ctx, "add_favorite", err, slog.String("task_id", taskID.String()))
	}
	return nil
}

// RemoveFavorite implements store.TaskStore.RemoveFavorite
func (s *TaskStore) RemoveFavorite(ctx context.Context, userID, taskID uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		Delete(&favoriteModel{}).Error
	if err != nil {
		return s.fail(ctx, "remove_favorite", err, slog.String("task_id", taskID.String()))
	}
	return nil
}

// ListFavorites implements store.TaskStore.ListFavorites
func (s *TaskStore) ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	var models []taskModel
	err := s.db.WithContext(ctx).
		Model(&taskModel{}).
		Joins("JOIN user_favorite_tasks f ON f.task_id = tasks.id").
		Where("f.user_id = ?", userID).
		Order("tasks.created_at DESC").
		Order("tasks.id").
		Find(&models).Error
	if err != nil {
		return nil, s.fail(ctx, "list_favorites", err)
	}
	return tasksToDomain(models), nil
}
