package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskflow-api/internal/cache"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/testdb"
	"github.com/phrazzld/taskflow-api/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "error", ShutdownTimeoutSeconds: 1},
		Database: config.DatabaseConfig{
			URL:          "postgres://localhost/taskflow_test",
			MaxOpenConns: 1,
		},
		Auth: config.AuthConfig{
			AccessSecret:                strings.Repeat("a", 32),
			RefreshSecret:               strings.Repeat("r", 32),
			SocketSecret:                strings.Repeat("s", 32),
			AccessTokenLifetimeMinutes:  15,
			RefreshTokenLifetimeMinutes: 60,
			SocketTokenLifetimeMinutes:  5,
			BcryptCost:                  bcrypt.MinCost,
		},
		Cache:  config.CacheConfig{TTLSeconds: 60},
		Socket: config.SocketConfig{Port: 4000, Path: "/socket"},
		Jobs: config.JobsConfig{
			WorkerCount:         1,
			QueueSize:           10,
			PollIntervalMillis:  50,
			StuckJobAgeMinutes:  10,
			ReportDelayMillis:   1000,
			ReportMaxAttempts:   3,
			ReportBackoffMillis: 5000,
			KeepCompleted:       5,
			KeepFailed:          5,
		},
	}
}

func newTestApp(t *testing.T) *application {
	t.Helper()
	app, err := newApplication(testConfig(), testdb.DiscardLogger(), testdb.Open(t), cache.NewMemory())
	require.NoError(t, err)
	return app
}

// apiClient issues requests against a running test server.
type apiClient struct {
	t      *testing.T
	server *httptest.Server
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		StatusCode int    `json:"status_code"`
		Message    string `json:"message"`
		Path       string `json:"path"`
	} `json:"error"`
}

func (c *apiClient) do(method, path, token string, body interface{}) (int, envelope) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

type tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (c *apiClient) signUp(email string) tokens {
	c.t.Helper()
	status, env := c.do(http.MethodPost, "/v1/authentication/sign-up", "",
		map[string]string{"email": email, "password": "password123", "name": "Test"})
	require.Equal(c.t, http.StatusCreated, status)

	var pair tokens
	require.NoError(c.t, json.Unmarshal(env.Data, &pair))
	return pair
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(newTestApp(t).setupRouter())
	defer server.Close()

	resp, err := server.Client().Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestUnknownRoute(t *testing.T) {
	server := httptest.NewServer(newTestApp(t).setupRouter())
	defer server.Close()
	client := &apiClient{t: t, server: server}

	status, env := client.do(http.MethodGet, "/v1/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "failure", env.Status)
	assert.Equal(t, "/v1/nothing-here", env.Error.Path)
}

func TestAuthenticationFlow(t *testing.T) {
	server := httptest.NewServer(newTestApp(t).setupRouter())
	defer server.Close()
	client := &apiClient{t: t, server: server}

	pair := client.signUp("flow@example.com")

	// Duplicate sign-up is a conflict.
	status, env := client.do(http.MethodPost, "/v1/authentication/sign-up", "",
		map[string]string{"email": "FLOW@example.com", "password": "password123"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "user_already_exists", env.Error.Message)

	// Wrong password and unknown email.
	status, _ = client.do(http.MethodPost, "/v1/authentication/sign-in", "",
		map[string]string{"email": "flow@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = client.do(http.MethodPost, "/v1/authentication/sign-in", "",
		map[string]string{"email": "nobody@example.com", "password": "password123"})
	assert.Equal(t, http.StatusNotFound, status)

	// A refresh token is not accepted as an access token.
	status, _ = client.do(http.MethodGet, "/v1/users", pair.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// Refresh rotates the pair; the old refresh token stops working.
	status, env = client.do(http.MethodPost, "/v1/authentication/refresh", pair.RefreshToken, nil)
	require.Equal(t, http.StatusOK, status)
	var rotated tokens
	require.NoError(t, json.Unmarshal(env.Data, &rotated))
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	status, env = client.do(http.MethodPost, "/v1/authentication/refresh", pair.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid_refresh_token", env.Error.Message)

	// Logout revokes the current refresh token.
	status, env = client.do(http.MethodPost, "/v1/users/log-out", rotated.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User successfully logged out.", env.Message)

	status, _ = client.do(http.MethodPost, "/v1/authentication/refresh", rotated.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSignUpRejectsPasswordOverHashLimit(t *testing.T) {
	server := httptest.NewServer(newTestApp(t).setupRouter())
	defer server.Close()
	client := &apiClient{t: t, server: server}

	// 20 characters pass the length rule but encode to 80 bytes.
	status, env := client.do(http.MethodPost, "/v1/authentication/sign-up", "",
		map[string]string{"email": "emoji@example.com", "password": strings.Repeat("😀", 20)})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "password must be at most 72 bytes long", env.Error.Message)

	status, _ = client.do(http.MethodPost, "/v1/authentication/sign-in", "",
		map[string]string{"email": "emoji@example.com", "password": strings.Repeat("😀", 18)})
	assert.Equal(t, http.StatusNotFound, status, "no account was created")
}

func TestResetPasswordRequiresOwnership(t *testing.T) {
	server := httptest.NewServer(newTestApp(t).setupRouter())
	defer server.Close()
	client := &apiClient{t: t, server: server}

	client.signUp("owner@example.com")
	other := client.signUp("other@example.com")

	status, _ := client.do(http.MethodPost, "/v1/authentication/reset-password", "",
		map[string]string{"email": "owner@example.com", "password": "newpassword"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := client.do(http.MethodPost, "/v1/authentication/reset-password", other.AccessToken,
		map[string]string{"email": "owner@example.com", "password": "newpassword"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "email_not_owned", env.Error.Message)
}

func TestResetPassword(t *testing.T) {
	server := httptest.NewServer(newTestApp(t).setupRouter())
	defer server.Close()
	client := &apiClient{t: t, server: server}

	owner := client.signUp("owner@example.com")

	status, _ := client.do(http.MethodPost, "/v1/authentication/reset-password", owner.AccessToken,
		map[string]string{"email": "owner@example.com", "password": "newpassword"})
	require.Equal(t, http.StatusOK, status)

	// Rate limited to one request per window.
	status, _ = client.do(http.MethodPost, "/v1/authentication/reset-password", owner.AccessToken,
		map[string]string{"email": "owner@example.com", "password": "another-one"})
	assert.Equal(t, http.StatusTooManyRequests, status)

	status, _ = client.do(http.MethodPost, "/v1/authentication/sign-in", "",
		map[string]string{"email": "owner@example.com", "password": "newpassword"})
	assert.Equal(t, http.StatusOK, status)
}

func TestTaskLifecycle(t *testing.T) {
	server := httptest.NewServer(newTestApp(t).setupRouter())
	defer server.Close()
	client := &apiClient{t: t, server: server}

	alice := client.signUp("alice@example.com")
	bob := client.signUp("bob@example.com")

	status, env := client.do(http.MethodPost, "/v1/tasks", alice.AccessToken, map[string]string{"title": "Write docs"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Task is created.", env.Message)

	var task struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &task))

	var list []json.RawMessage
	status, env = client.do(http.MethodGet, "/v1/tasks/my", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	// Other users cannot see the task.
	status, _ = client.do(http.MethodGet, "/v1/tasks/"+task.ID, bob.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = client.do(http.MethodPut, "/v1/tasks/"+task.ID, alice.AccessToken, map[string]string{"title": "Write more docs"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Task is updated.", env.Message)

	status, _ = client.do(http.MethodPost, "/v1/tasks/"+task.ID+"/favorite", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	status, env = client.do(http.MethodGet, "/v1/tasks/favorites", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	status, _ = client.do(http.MethodDelete, "/v1/tasks/"+task.ID, alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = client.do(http.MethodGet, "/v1/tasks/"+task.ID, alice.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// The cached list was invalidated by the delete.
	status, env = client.do(http.MethodGet, "/v1/tasks/my", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Empty(t, list)

	status, _ = client.do(http.MethodGet, "/v1/tasks/not-a-uuid", alice.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = client.do(http.MethodDelete, "/v1/tasks", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "All tasks are removed", env.Message)
}

func TestReportRequest(t *testing.T) {
	server := httptest.NewServer(newTestApp(t).setupRouter())
	defer server.Close()
	client := &apiClient{t: t, server: server}

	user := client.signUp("reports@example.com")
	other := client.signUp("snoop@example.com")

	status, env := client.do(http.MethodGet, "/v1/reports", user.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Report is being processed. Please wait.", env.Message)

	var scheduled struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &scheduled))
	require.NotEmpty(t, scheduled.JobID)

	status, env = client.do(http.MethodGet, "/v1/reports/"+scheduled.JobID, user.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	var job struct {
		Status      string `json:"status"`
		MaxAttempts int    `json:"max_attempts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &job))
	assert.Equal(t, "pending", job.Status)
	assert.Equal(t, 3, job.MaxAttempts)

	status, _ = client.do(http.MethodGet, "/v1/reports/"+scheduled.JobID, other.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSocketReceivesTaskEvents(t *testing.T) {
	app := newTestApp(t)
	apiServer := httptest.NewServer(app.setupRouter())
	defer apiServer.Close()
	socketServer := httptest.NewServer(app.setupSocketRouter())
	defer socketServer.Close()
	client := &apiClient{t: t, server: apiServer}

	pair := client.signUp("socket@example.com")

	status, env := client.do(http.MethodGet, "/v1/users", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	var profile struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
		SocketToken string `json:"socket_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "socket@example.com", profile.User.Email)
	require.NotEmpty(t, profile.SocketToken)

	url := "ws" + strings.TrimPrefix(socketServer.URL, "http") + "/socket"
	header := http.Header{"Authorization": []string{"Bearer " + profile.SocketToken}}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var frame struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, ws.EventAuthenticationSuccess, frame.Event)

	status, _ = client.do(http.MethodPost, "/v1/tasks", pair.AccessToken, map[string]string{"title": "Pushed"})
	require.Equal(t, http.StatusCreated, status)

	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "task_created", frame.Event)
	assert.Contains(t, string(frame.Data), "Pushed")
}
