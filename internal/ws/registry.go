package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskflow-api/internal/events"
)

// ErrNotConnected is returned by Send when the user has no open connection.
var ErrNotConnected = errors.New("user not connected")

// Registry maps users to their current connection. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	conns  map[uuid.UUID]*Conn
	logger *slog.Logger
}

// Ensure Registry implements events.EventHandler interface
var _ events.EventHandler = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		conns:  make(map[uuid.UUID]*Conn),
		logger: logger.With("component", "socket_registry"),
	}
}

// Register makes conn the connection of userID, closing any previous one.
func (r *Registry) Register(userID uuid.UUID, conn *Conn) {
	r.mu.Lock()
	old, ok := r.conns[userID]
	r.conns[userID] = conn
	r.mu.Unlock()

	if ok && old != conn {
		r.logger.Debug("replacing socket connection", "user_id", userID)
		_ = old.CloseWith(websocket.CloseNormalClosure, "Replaced by a new connection")
	}
}

// Unregister removes conn if it is still the registered connection of userID.
// It reports whether an entry was removed.
func (r *Registry) Unregister(userID uuid.UUID, conn *Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.conns[userID]; ok && current == conn {
		delete(r.conns, userID)
		return true
	}
	return false
}

// Disconnect closes and removes the connection of userID, if any.
func (r *Registry) Disconnect(userID uuid.UUID) {
	r.mu.Lock()
	conn, ok := r.conns[userID]
	delete(r.conns, userID)
	r.mu.Unlock()

	if ok {
		_ = conn.CloseWith(websocket.CloseNormalClosure, "Account closed")
	}
}

// Send writes f to the connection of userID.
func (r *Registry) Send(userID uuid.UUID, f Frame) error {
	r.mu.RLock()
	conn, ok := r.conns[userID]
	r.mu.RUnlock()
	if !ok {
		return ErrNotConnected
	}
	return conn.WriteFrame(f)
}

// IsConnected reports whether userID has an open connection.
func (r *Registry) IsConnected(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[userID]
	return ok
}

// Count returns the number of connected users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// CloseAll closes every connection with a going-away code and empties the registry.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[uuid.UUID]*Conn)
	r.mu.Unlock()

	for _, conn := range conns {
		_ = conn.CloseWith(websocket.CloseGoingAway, "Server shutting down")
	}
}

// HandleEvent forwards a task event to its owner. Users without a connection
// miss the event.
func (r *Registry) HandleEvent(_ context.Context, event *events.Event) error {
	frame := Frame{Event: event.Type}
	if len(event.Payload) > 0 {
		frame.Data = event.Payload
	}
	err := r.Send(event.UserID, frame)
	if errors.Is(err, ErrNotConnected) {
		return nil
	}
	return err
}
