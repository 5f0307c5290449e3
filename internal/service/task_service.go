package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/cache"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// TaskService manages the tasks of the authenticated user. Every operation is
// scoped to userID: tasks of other users are reported as not found.
type TaskService interface {
	Create(ctx context.Context, userID uuid.UUID, title string) (*domain.Task, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)
	Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, userID, taskID uuid.UUID, title string) (*domain.Task, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
	DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error)
	AddFavorite(ctx context.Context, userID, taskID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, taskID uuid.UUID) error
}

// TaskServiceImpl implements TaskService with cache-aside list reads. Every
// mutation invalidates the owner's cached lists and emits a task event.
type TaskServiceImpl struct {
	taskStore store.TaskStore
	cache     cache.Store
	ttl       time.Duration
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// Ensure TaskServiceImpl implements TaskService interface
var _ TaskService = (*TaskServiceImpl)(nil)

// NewTaskService creates a TaskService. Lists are cached for ttl.
func NewTaskService(
	taskStore store.TaskStore,
	cacheStore cache.Store,
	ttl time.Duration,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *TaskServiceImpl {
	return &TaskServiceImpl{
		taskStore: taskStore,
		cache:     cacheStore,
		ttl:       ttl,
		emitter:   emitter,
		logger:    logger.With("component", "task_service"),
	}
}

// Create implements TaskService.
func (s *TaskServiceImpl) Create(ctx context.Context, userID uuid.UUID, title string) (*domain.Task, error) {
	task, err := domain.NewTask(userID, title)
	if err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.changed(ctx, userID, events.TaskCreated, task)
	return task, nil
}

// ListMine implements TaskService.
func (s *TaskServiceImpl) ListMine(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	tasks, err := cache.GetOrSet(ctx, s.cache, cache.TaskListKey(userID), s.ttl,
		func(ctx context.Context) ([]domain.Task, error) {
			return s.taskStore.ListByUser(ctx, userID)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListFavorites implements TaskService.
func (s *TaskServiceImpl) ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	tasks, err := cache.GetOrSet(ctx, s.cache, cache.FavoritesKey(userID), s.ttl,
		func(ctx context.Context) ([]domain.Task, error) {
			return s.taskStore.ListFavorites(ctx, userID)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite tasks: %w", err)
	}
	return tasks, nil
}

// Get implements TaskService.
func (s *TaskServiceImpl) Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// Update implements TaskService.
func (s *TaskServiceImpl) Update(
	ctx context.Context,
	userID, taskID uuid.UUID,
	title string,
) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if err := task.Rename(title); err != nil {
		return nil, err
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.changed(ctx, userID, events.TaskUpdated, task)
	return task, nil
}

// Delete implements TaskService.
func (s *TaskServiceImpl) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := s.taskStore.Delete(ctx, userID, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.changed(ctx, userID, events.TaskDeleted, map[string]uuid.UUID{"id": taskID})
	return nil
}

// DeleteAll implements TaskService and returns the number of removed tasks.
func (s *TaskServiceImpl) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.taskStore.DeleteAllByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}

	s.changed(ctx, userID, events.TasksCleared, map[string]int64{"deleted": n})
	return n, nil
}

// AddFavorite implements TaskService.
func (s *TaskServiceImpl) AddFavorite(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := s.taskStore.AddFavorite(ctx, userID, taskID); err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	cache.Invalidate(ctx, s.cache, cache.FavoritesKey(userID))
	return nil
}

// RemoveFavorite implements TaskService.
func (s *TaskServiceImpl) RemoveFavorite(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := s.taskStore.RemoveFavorite(ctx, userID, taskID); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	cache.Invalidate(ctx, s.cache, cache.FavoritesKey(userID))
	return nil
}

// changed drops the owner's cached lists and publishes the change. Emission
// failures are logged; the mutation itself already succeeded.
func (s *TaskServiceImpl) changed(ctx context.Context, userID uuid.UUID, eventType string, payload any) {
	cache.Invalidate(ctx, s.cache, cache.UserKeys(userID)...)

	log := logger.FromContextOrDefault(ctx, s.logger)
	event, err := events.NewEvent(eventType, userID, payload)
	if err != nil {
		log.Error("failed to build task event", "error", err, "event_type", eventType)
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to deliver task event",
			"error", err,
			"event_type", eventType,
			"user_id", userID)
	}
}
