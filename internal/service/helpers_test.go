package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/ws"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingEmitter captures emitted events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.Event
	err    error
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.err
}

func (e *recordingEmitter) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

// fakeSockets records frames and disconnects.
type fakeSockets struct {
	mu           sync.Mutex
	connected    map[uuid.UUID]bool
	frames       map[uuid.UUID][]ws.Frame
	disconnected []uuid.UUID
}

func newFakeSockets(connected ...uuid.UUID) *fakeSockets {
	s := &fakeSockets{
		connected: make(map[uuid.UUID]bool),
		frames:    make(map[uuid.UUID][]ws.Frame),
	}
	for _, id := range connected {
		s.connected[id] = true
	}
	return s
}

func (s *fakeSockets) Send(userID uuid.UUID, frame ws.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected[userID] {
		return ws.ErrNotConnected
	}
	s.frames[userID] = append(s.frames[userID], frame)
	return nil
}

func (s *fakeSockets) Disconnect(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connected, userID)
	s.disconnected = append(s.disconnected, userID)
}
