package ws

// Frame event names sent by the server.
const (
	EventAuthenticationSuccess = "authentication_success"
	EventAuthenticationFailure = "authentication_failure"
	EventReport                = "report"
)

// Frame is the JSON envelope of every server-to-client message.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}
