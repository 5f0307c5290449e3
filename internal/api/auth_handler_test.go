package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testPair = auth.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"}

func TestAuthHandler_SignUp(t *testing.T) {
	t.Parallel()

	user := &domain.User{ID: uuid.New(), Email: "test@example.com"}

	tests := []struct {
		name        string
		payload     interface{}
		serviceErr  error
		callService bool
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "valid registration",
			payload:     map[string]string{"email": "test@example.com", "password": "password123", "name": "Ada"},
			callService: true,
			wantStatus:  http.StatusCreated,
		},
		{
			name:        "invalid email",
			payload:     map[string]string{"email": "invalid-email", "password": "password123"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "email must be a valid email",
		},
		{
			name:        "password too short",
			payload:     map[string]string{"email": "test@example.com", "password": "short"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "password must be at least 8 characters long",
		},
		{
			name:        "missing password",
			payload:     map[string]string{"email": "test@example.com"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "password is required",
		},
		{
			name:        "malformed body",
			payload:     `{"email":`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "invalid_request_body",
		},
		{
			name:        "email already exists",
			payload:     map[string]string{"email": "test@example.com", "password": "password123"},
			serviceErr:  fmt.Errorf("failed to create user: %w", store.ErrEmailExists),
			callService: true,
			wantStatus:  http.StatusConflict,
			wantMessage: "user_already_exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockAuthService)
			if tt.callService {
				if tt.serviceErr != nil {
					svc.On("SignUp", mock.Anything, "test@example.com", "password123", mock.Anything).
						Return(nil, auth.TokenPair{}, tt.serviceErr)
				} else {
					svc.On("SignUp", mock.Anything, "test@example.com", "password123", "Ada").
						Return(user, testPair, nil)
				}
			}
			handler := NewAuthHandler(svc, discardLogger())

			rr := httptest.NewRecorder()
			handler.SignUp(rr, newRequest(t, http.MethodPost, "/v1/authentication/sign-up", tt.payload, uuid.Nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			var tokens TokenResponse
			if tt.wantStatus == http.StatusCreated {
				env := decodeEnvelope(t, rr, &tokens)
				assert.Equal(t, "success", env.Status)
				assert.Equal(t, testPair.AccessToken, tokens.AccessToken)
				assert.Equal(t, testPair.RefreshToken, tokens.RefreshToken)
			} else {
				env := decodeEnvelope(t, rr, nil)
				require.NotNil(t, env.Error)
				assert.Equal(t, tt.wantMessage, env.Error.Message)
				assert.Equal(t, tt.wantStatus, env.Error.StatusCode)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_SignIn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		serviceErr  error
		wantStatus  int
		wantMessage string
	}{
		{name: "correct credentials", wantStatus: http.StatusOK},
		{
			name:        "wrong password",
			serviceErr:  auth.ErrInvalidCredentials,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "invalid_credentials",
		},
		{
			name:        "unknown email",
			serviceErr:  fmt.Errorf("failed to find user: %w", store.ErrUserNotFound),
			wantStatus:  http.StatusNotFound,
			wantMessage: "user_not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockAuthService)
			user := &domain.User{ID: uuid.New()}
			if tt.serviceErr != nil {
				svc.On("SignIn", mock.Anything, "test@example.com", "password123").
					Return(nil, auth.TokenPair{}, tt.serviceErr)
			} else {
				svc.On("SignIn", mock.Anything, "test@example.com", "password123").Return(user, testPair, nil)
			}
			handler := NewAuthHandler(svc, discardLogger())

			body := map[string]string{"email": "test@example.com", "password": "password123"}
			rr := httptest.NewRecorder()
			handler.SignIn(rr, newRequest(t, http.MethodPost, "/v1/authentication/sign-in", body, uuid.Nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.serviceErr == nil {
				var tokens TokenResponse
				decodeEnvelope(t, rr, &tokens)
				assert.Equal(t, testPair.AccessToken, tokens.AccessToken)
				return
			}
			env := decodeEnvelope(t, rr, nil)
			assert.Equal(t, tt.wantMessage, env.Error.Message)
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("rotates the pair", func(t *testing.T) {
		svc := new(mockAuthService)
		rotated := auth.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}
		svc.On("Refresh", mock.Anything, "old-refresh").Return(rotated, nil)
		handler := NewAuthHandler(svc, discardLogger())

		req := newRequest(t, http.MethodPost, "/v1/authentication/refresh", nil, uuid.Nil)
		req.Header.Set("Authorization", "Bearer old-refresh")
		rr := httptest.NewRecorder()
		handler.Refresh(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var tokens TokenResponse
		decodeEnvelope(t, rr, &tokens)
		assert.Equal(t, "new-refresh", tokens.RefreshToken)
	})

	t.Run("missing token", func(t *testing.T) {
		svc := new(mockAuthService)
		handler := NewAuthHandler(svc, discardLogger())

		rr := httptest.NewRecorder()
		handler.Refresh(rr, newRequest(t, http.MethodPost, "/v1/authentication/refresh", nil, uuid.Nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		env := decodeEnvelope(t, rr, nil)
		assert.Equal(t, "invalid_refresh_token", env.Error.Message)
		svc.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
	})

	t.Run("mismatched token", func(t *testing.T) {
		svc := new(mockAuthService)
		svc.On("Refresh", mock.Anything, "stale").Return(auth.TokenPair{}, auth.ErrInvalidRefreshToken)
		handler := NewAuthHandler(svc, discardLogger())

		req := newRequest(t, http.MethodPost, "/v1/authentication/refresh", nil, uuid.Nil)
		req.Header.Set("Authorization", "Bearer stale")
		rr := httptest.NewRecorder()
		handler.Refresh(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		env := decodeEnvelope(t, rr, nil)
		assert.Equal(t, "invalid_refresh_token", env.Error.Message)
	})
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	body := map[string]string{"email": "test@example.com", "password": "newpassword"}

	tests := []struct {
		name        string
		userID      uuid.UUID
		serviceErr  error
		wantStatus  int
		wantMessage string
	}{
		{name: "owner resets password", userID: userID, wantStatus: http.StatusOK},
		{
			name:        "unauthenticated",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "invalid_access_token",
		},
		{
			name:        "email of another user",
			userID:      userID,
			serviceErr:  auth.ErrEmailNotOwned,
			wantStatus:  http.StatusForbidden,
			wantMessage: "email_not_owned",
		},
		{
			name:        "unknown email",
			userID:      userID,
			serviceErr:  store.ErrUserNotFound,
			wantStatus:  http.StatusNotFound,
			wantMessage: "user_not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockAuthService)
			if tt.userID != uuid.Nil {
				svc.On("ResetPassword", mock.Anything, userID, "test@example.com", "newpassword").Return(tt.serviceErr)
			}
			handler := NewAuthHandler(svc, discardLogger())

			rr := httptest.NewRecorder()
			handler.ResetPassword(rr, newRequest(t, http.MethodPost, "/v1/authentication/reset-password", body, tt.userID))

			assert.Equal(t, tt.wantStatus, rr.Code)
			env := decodeEnvelope(t, rr, nil)
			if tt.wantMessage == "" {
				assert.Equal(t, "Password is updated.", env.Message)
				return
			}
			assert.Equal(t, tt.wantMessage, env.Error.Message)
		})
	}
}
