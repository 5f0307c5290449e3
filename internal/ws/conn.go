package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Conn is a WebSocket connection whose writes are serialized.
type Conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	once    sync.Once
}

// NewConn wraps an established connection.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// WriteFrame sends f as a JSON text message.
func (c *Conn) WriteFrame(f Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(f)
}

// writeAfter runs fn and then writes f while holding the write lock, so no
// frame sent by another goroutine once fn has run can precede f.
func (c *Conn) writeAfter(fn func(), f Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	fn()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(f)
}

// CloseWith sends a close frame with code and reason, then closes the connection.
func (c *Conn) CloseWith(code int, reason string) error {
	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	c.writeMu.Unlock()
	return c.Close()
}

// Close closes the underlying connection. Repeated calls are no-ops.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() { err = c.ws.Close() })
	return err
}

func (c *Conn) ping() error {
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}
