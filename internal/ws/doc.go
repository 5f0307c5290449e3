// Package ws pushes server events to connected users over WebSockets.
//
// A Gateway authenticates each upgrade request with a socket token and keeps
// at most one connection per user in a Registry. Services reach users through
// the Registry: report results are sent directly, task change events arrive
// through the events emitter. Delivery is best effort; frames for users
// without a connection are dropped.
package ws
