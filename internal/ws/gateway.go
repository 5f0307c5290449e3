package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
)

// Keepalive defaults.
const (
	DefaultPongWait     = 60 * time.Second
	DefaultPingInterval = (DefaultPongWait * 9) / 10
)

// TokenValidator validates socket tokens.
type TokenValidator interface {
	ValidateSocketToken(ctx context.Context, tokenString string) (*auth.Claims, error)
}

// Gateway upgrades authenticated HTTP requests to WebSocket connections and
// registers them in a Registry.
type Gateway struct {
	registry     *Registry
	tokens       TokenValidator
	upgrader     websocket.Upgrader
	logger       *slog.Logger
	pongWait     time.Duration
	pingInterval time.Duration
}

// GatewayOption customizes a Gateway.
type GatewayOption func(*Gateway)

// WithKeepalive overrides the ping interval and the read deadline extended by each pong.
func WithKeepalive(pingInterval, pongWait time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.pingInterval = pingInterval
		g.pongWait = pongWait
	}
}

// NewGateway creates a Gateway. Cross-origin upgrades are accepted since every
// connection must present a token.
func NewGateway(registry *Registry, tokens TokenValidator, logger *slog.Logger, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		registry: registry,
		tokens:   tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:       logger.With("component", "socket_gateway"),
		pongWait:     DefaultPongWait,
		pingInterval: DefaultPingInterval,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// ServeHTTP implements http.Handler.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Debug("socket upgrade failed", "error", err)
		return
	}
	conn := NewConn(raw)

	token := bearerToken(r)
	if token == "" {
		g.logger.Debug("socket rejected: missing token", "remote_addr", r.RemoteAddr)
		_ = conn.CloseWith(websocket.ClosePolicyViolation, "Unauthorized")
		return
	}

	claims, err := g.tokens.ValidateSocketToken(r.Context(), token)
	if err != nil {
		g.logger.Debug("socket rejected: invalid token", "error", err, "remote_addr", r.RemoteAddr)
		_ = conn.WriteFrame(Frame{Event: EventAuthenticationFailure, Data: err.Error()})
		_ = conn.CloseWith(websocket.ClosePolicyViolation, err.Error())
		return
	}

	userID := claims.UserID
	register := func() { g.registry.Register(userID, conn) }
	if err := conn.writeAfter(register, Frame{Event: EventAuthenticationSuccess}); err != nil {
		g.registry.Unregister(userID, conn)
		_ = conn.Close()
		return
	}
	g.logger.Debug("socket connected", "user_id", userID, "connections", g.registry.Count())

	done := make(chan struct{})
	go g.keepalive(conn, done)

	g.readLoop(conn)
	close(done)

	g.registry.Unregister(userID, conn)
	_ = conn.Close()
	g.logger.Debug("socket disconnected", "user_id", userID)
}

// readLoop discards client messages until the connection fails or the peer
// stops answering pings.
func (g *Gateway) readLoop(conn *Conn) {
	raw := conn.ws
	raw.SetReadLimit(4096)
	_ = raw.SetReadDeadline(time.Now().Add(g.pongWait))
	raw.SetPongHandler(func(string) error {
		return raw.SetReadDeadline(time.Now().Add(g.pongWait))
	})

	for {
		if _, _, err := raw.NextReader(); err != nil {
			return
		}
	}
}

func (g *Gateway) keepalive(conn *Conn, done <-chan struct{}) {
	ticker := time.NewTicker(g.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		}
	}
}
