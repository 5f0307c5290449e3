package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// envelope mirrors the API response wrapper.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// frame is one server-to-client socket message.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SocketToken signs in and exchanges the access token for a socket token.
func (c *apiClient) SocketToken(ctx context.Context, email, password string) (string, error) {
	var pair struct {
		AccessToken string `json:"access_token"`
	}
	credentials := map[string]string{"email": email, "password": password}
	if err := c.call(ctx, http.MethodPost, "/v1/authentication/sign-in", "", credentials, &pair); err != nil {
		return "", fmt.Errorf("sign in: %w", err)
	}

	var profile struct {
		SocketToken string `json:"socket_token"`
	}
	if err := c.call(ctx, http.MethodGet, "/v1/users", pair.AccessToken, nil, &profile); err != nil {
		return "", fmt.Errorf("fetch profile: %w", err)
	}
	if profile.SocketToken == "" {
		return "", errors.New("fetch profile: no socket token in response")
	}
	return profile.SocketToken, nil
}

func (c *apiClient) call(ctx context.Context, method, path, token string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("unexpected response (%d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if env.Error != nil && env.Error.Message != "" {
			return fmt.Errorf("%d %s", resp.StatusCode, env.Error.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return json.Unmarshal(env.Data, out)
}

// dialSocket opens an authenticated socket and waits for the server's
// authentication verdict.
func dialSocket(url, token string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	header := http.Header{"Authorization": []string{"Bearer " + token}}

	conn, resp, err := dialer.Dial(url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", url, err)
	}

	f, err := readFrame(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read authentication frame: %w", err)
	}
	if f.Event != "authentication_success" {
		conn.Close()
		var reason string
		_ = json.Unmarshal(f.Data, &reason)
		return nil, fmt.Errorf("authentication rejected: %s", reason)
	}
	return conn, nil
}

func readFrame(conn *websocket.Conn) (frame, error) {
	var f frame
	err := conn.ReadJSON(&f)
	return f, err
}
