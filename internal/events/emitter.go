package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// subscription is a handler plus the event types it listens to.
// An empty types list matches every event.
type subscription struct {
	handler EventHandler
	types   []string
}

func (s subscription) matches(eventType string) bool {
	return len(s.types) == 0 || slices.Contains(s.types, eventType)
}

// InMemoryEventEmitter dispatches events synchronously, on the caller's
// goroutine, to the handlers subscribed to their type.
type InMemoryEventEmitter struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

// NewInMemoryEventEmitter returns an emitter with no subscribers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{
		logger: logger.With("component", "event_emitter"),
	}
}

// RegisterHandler subscribes handler to the given event types, or to all
// events when none are given. Nil handlers are ignored.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler, types ...string) {
	if handler == nil {
		return
	}

	e.mu.Lock()
	e.subs = append(e.subs, subscription{handler: handler, types: slices.Clone(types)})
	count := len(e.subs)
	e.mu.Unlock()

	e.logger.Debug("event handler registered", "types", types, "handler_count", count)
}

// EmitEvent delivers event to every matching handler. A failing handler does
// not stop delivery to the rest; all failures are returned joined.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	if event == nil {
		return errors.New("nil event")
	}

	e.mu.RLock()
	subs := slices.Clone(e.subs)
	e.mu.RUnlock()

	log := e.logger.With("event_id", event.ID, "event_type", event.Type, "user_id", event.UserID)

	var errs []error
	delivered := 0
	for i, sub := range subs {
		if !sub.matches(event.Type) {
			continue
		}
		delivered++
		if err := sub.handler.HandleEvent(ctx, event); err != nil {
			log.Error("event handler failed", "handler_index", i, "error", err)
			errs = append(errs, fmt.Errorf("handler %d: %w", i, err))
		}
	}

	log.Debug("event emitted", "delivered", delivered)
	return errors.Join(errs...)
}
