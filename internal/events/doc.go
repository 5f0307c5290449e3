// Package events decouples services from the components that react to data
// changes.
//
// Services emit an Event after a successful mutation; the in-memory emitter
// hands it to every registered EventHandler. The WebSocket gateway registers a
// handler that forwards task events to the owning user's connection.
package events
