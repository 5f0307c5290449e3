package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.tasks.Create(r.Context(), userID, req.Title)
	if err != nil {
		HandleAPIError(w, r, err, "failed_to_create_task")
		return
	}

	log.Debug("task created", slog.String("task_id", task.ID.String()))
	shared.RespondWithSuccess(w, r, http.StatusCreated, "Task is created.", taskToResponse(task))
}

// ListMine handles GET /tasks/my.
func (h *TaskHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	tasks, err := h.tasks.ListMine(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "failed_to_list_tasks")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "", tasksToResponse(tasks))
}

// ListFavorites handles GET /tasks/favorites.
func (h *TaskHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	tasks, err := h.tasks.ListFavorites(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "failed_to_list_favorites")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "", tasksToResponse(tasks))
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "failed_to_get_task")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "", taskToResponse(task))
}

// Update handles PUT /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.tasks.Update(r.Context(), userID, taskID, req.Title)
	if err != nil {
		HandleAPIError(w, r, err, "failed_to_update_task")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "Task is updated.", taskToResponse(task))
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "failed_to_delete_task")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "Task is deleted.", nil)
}

// DeleteAll handles DELETE /tasks.
func (h *TaskHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	n, err := h.tasks.DeleteAll(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "failed_to_delete_tasks")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "All tasks are removed", DeleteAllResponse{Deleted: n})
}

// AddFavorite handles POST /tasks/{id}/favorite.
func (h *TaskHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	if err := h.tasks.AddFavorite(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "failed_to_add_favorite")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "Task is added to favorites.", nil)
}

// RemoveFavorite handles DELETE /tasks/{id}/favorite.
func (h *TaskHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	if err := h.tasks.RemoveFavorite(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "failed_to_remove_favorite")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "Task is removed from favorites.", nil)
}
