package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/job"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
)

// SignUpRequest defines the payload for the sign-up endpoint.
type SignUpRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=24"`
	Name     string `json:"name"     validate:"max=100"`
}

// SignInRequest defines the payload for the sign-in endpoint.
type SignInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ResetPasswordRequest defines the payload for the reset-password endpoint.
type ResetPasswordRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=24"`
}

// TokenResponse carries a freshly issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func tokenPairToResponse(pair auth.TokenPair) TokenResponse {
	return TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
}

// UserResponse is the public view of a user. Secrets are never included.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ProfileResponse is returned by GET /users.
type ProfileResponse struct {
	User        UserResponse `json:"user"`
	SocketToken string       `json:"socket_token"`
}

// EditProfileRequest changes the name, the email or both. At least one
// field must be present.
type EditProfileRequest struct {
	Name  *string `json:"name"  validate:"omitempty,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// TaskRequest is the payload for creating or renaming a task.
type TaskRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		Title:     t.Title,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func tasksToResponse(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, taskToResponse(&tasks[i]))
	}
	return out
}

// DeleteAllResponse reports how many tasks were removed.
type DeleteAllResponse struct {
	Deleted int64 `json:"deleted"`
}

// ReportRequestResponse is returned when a report is scheduled.
type ReportRequestResponse struct {
	JobID uuid.UUID `json:"job_id"`
}

// ReportStatusResponse describes a scheduled report job.
type ReportStatusResponse struct {
	JobID       uuid.UUID  `json:"job_id"`
	Status      job.Status `json:"status"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	RunAt       time.Time  `json:"run_at"`
	LastError   string     `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func jobToStatusResponse(j *job.Job) ReportStatusResponse {
	return ReportStatusResponse{
		JobID:       j.ID,
		Status:      j.Status,
		Attempts:    j.Attempts,
		MaxAttempts: j.MaxAttempts,
		RunAt:       j.RunAt,
		LastError:   j.LastError,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}
