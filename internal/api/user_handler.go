package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service"
)

// SessionService ends a user's session.
type SessionService interface {
	Logout(ctx context.Context, userID uuid.UUID) error
}

// UserHandler handles profile and account requests.
type UserHandler struct {
	users    service.UserService
	sessions SessionService
	logger   *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService, sessions SessionService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}
	return &UserHandler{
		users:    users,
		sessions: sessions,
		logger:   logger.With(slog.String("component", "user_handler")),
	}
}

// GetProfile handles GET /users.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	profile, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "failed_to_get_user")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "", ProfileResponse{
		User:        userToResponse(profile.User),
		SocketToken: profile.SocketToken,
	})
}

// EditProfile handles PUT /users/edit-profile.
func (h *UserHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req EditProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.EditProfile(r.Context(), userID, service.ProfileUpdate{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		HandleAPIError(w, r, err, "failed_to_update_user")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "User successfully updated.", userToResponse(user))
}

// DeleteAccount handles DELETE /users/delete-account.
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	if err := h.users.DeleteAccount(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err, "failed_to_delete_user")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "Your account is deleted successfully.", nil)
}

// Logout handles POST /users/log-out.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	if err := h.sessions.Logout(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err, "failed_to_log_out")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "User successfully logged out.", nil)
}
