package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/job"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newRequest builds a request with an optional JSON body, authenticated as
// userID unless it is uuid.Nil.
func newRequest(t *testing.T, method, target string, body interface{}, userID uuid.UUID) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req = req.WithContext(shared.WithUserID(req.Context(), userID))
	}
	return req
}

// withURLParam attaches a chi route parameter to req.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data interface{}) shared.Envelope {
	t.Helper()

	var raw struct {
		shared.Envelope
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw))
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.Envelope
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) SignUp(ctx context.Context, email, password, name string) (*domain.User, auth.TokenPair, error) {
	args := m.Called(ctx, email, password, name)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Get(1).(auth.TokenPair), args.Error(2)
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (*domain.User, auth.TokenPair, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Get(1).(auth.TokenPair), args.Error(2)
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(auth.TokenPair), args.Error(1)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, userID uuid.UUID, email, newPassword string) error {
	return m.Called(ctx, userID, email, newPassword).Error(0)
}

func (m *mockAuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) GetProfile(ctx context.Context, userID uuid.UUID) (*service.Profile, error) {
	args := m.Called(ctx, userID)
	profile, _ := args.Get(0).(*service.Profile)
	return profile, args.Error(1)
}

func (m *mockUserService) EditProfile(
	ctx context.Context,
	userID uuid.UUID,
	update service.ProfileUpdate,
) (*domain.User, error) {
	args := m.Called(ctx, userID, update)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type mockTaskService struct{ mock.Mock }

func (m *mockTaskService) Create(ctx context.Context, userID uuid.UUID, title string) (*domain.Task, error) {
	args := m.Called(ctx, userID, title)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *mockTaskService) ListMine(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	args := m.Called(ctx, userID)
	tasks, _ := args.Get(0).([]domain.Task)
	return tasks, args.Error(1)
}

func (m *mockTaskService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	args := m.Called(ctx, userID)
	tasks, _ := args.Get(0).([]domain.Task)
	return tasks, args.Error(1)
}

func (m *mockTaskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, userID, taskID)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *mockTaskService) Update(ctx context.Context, userID, taskID uuid.UUID, title string) (*domain.Task, error) {
	args := m.Called(ctx, userID, taskID, title)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *mockTaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	return m.Called(ctx, userID, taskID).Error(0)
}

func (m *mockTaskService) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTaskService) AddFavorite(ctx context.Context, userID, taskID uuid.UUID) error {
	return m.Called(ctx, userID, taskID).Error(0)
}

func (m *mockTaskService) RemoveFavorite(ctx context.Context, userID, taskID uuid.UUID) error {
	return m.Called(ctx, userID, taskID).Error(0)
}

type mockReportScheduler struct{ mock.Mock }

func (m *mockReportScheduler) Request(ctx context.Context, userID uuid.UUID) (*job.Job, error) {
	args := m.Called(ctx, userID)
	j, _ := args.Get(0).(*job.Job)
	return j, args.Error(1)
}

func (m *mockReportScheduler) Status(ctx context.Context, userID, jobID uuid.UUID) (*job.Job, error) {
	args := m.Called(ctx, userID, jobID)
	j, _ := args.Get(0).(*job.Job)
	return j, args.Error(1)
}

var (
	_ AuthService         = (*mockAuthService)(nil)
	_ SessionService      = (*mockAuthService)(nil)
	_ service.UserService = (*mockUserService)(nil)
	_ service.TaskService = (*mockTaskService)(nil)
	_ ReportScheduler     = (*mockReportScheduler)(nil)
)
