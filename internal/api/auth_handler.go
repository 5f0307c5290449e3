package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/middleware"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
)

// AuthService is the authentication surface used by AuthHandler.
type AuthService interface {
	SignUp(ctx context.Context, email, password, name string) (*domain.User, auth.TokenPair, error)
	SignIn(ctx context.Context, email, password string) (*domain.User, auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error)
	ResetPassword(ctx context.Context, userID uuid.UUID, email, newPassword string) error
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(authService AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}
	return &AuthHandler{
		auth:   authService,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// SignUp handles POST /authentication/sign-up.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, pair, err := h.auth.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "failed_to_create_user")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("user signed up", "user_id", user.ID)
	shared.RespondWithSuccess(w, r, http.StatusCreated, "User is created.", tokenPairToResponse(pair))
}

// SignIn handles POST /authentication/sign-in.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, pair, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "failed_to_authenticate_user")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("user signed in", "user_id", user.ID)
	shared.RespondWithSuccess(w, r, http.StatusOK, "", tokenPairToResponse(pair))
}

// Refresh handles POST /authentication/refresh. The refresh token travels as
// a Bearer token; a new pair is returned and the presented token is retired.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.BearerToken(r)
	if err != nil {
		HandleAPIError(w, r, auth.ErrInvalidRefreshToken, "")
		return
	}

	pair, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		HandleAPIError(w, r, err, "failed_to_refresh_token")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "", tokenPairToResponse(pair))
}

// ResetPassword handles POST /authentication/reset-password for the
// authenticated owner of the email.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.auth.ResetPassword(r.Context(), userID, req.Email, req.Password); err != nil {
		HandleAPIError(w, r, err, "failed_to_reset_password")
		return
	}

	log.Info("password reset", "user_id", userID)
	shared.RespondWithSuccess(w, r, http.StatusOK, "Password is updated.", nil)
}
