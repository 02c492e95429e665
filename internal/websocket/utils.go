package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/quizmaster/quizmaster-backend/internal/response"
)

const (
	writeWait = 10 * time.Second
	readWait  = 5 * time.Minute
)

// Conn serializes writes to a connection shared by the read loop and the
// ticker goroutine. gorilla/websocket allows one concurrent writer only.
type Conn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Wrap returns a write-serialized Conn.
func Wrap(conn *websocket.Conn) *Conn {
	return &Conn{conn: conn}
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func (c *Conn) WriteTyped(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func (c *Conn) WriteError(code response.ErrCode) error {
	return c.WriteErrorMessage(code, response.GetMessage(code))
}

// WriteErrorMessage sends an ErrorResponse with a custom message.
func (c *Conn) WriteErrorMessage(code response.ErrCode, msg string) error {
	return c.WriteTyped(ErrorResponse{
		Event: EventError,
		Code:  string(code),
		Error: msg,
	})
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline.
func (c *Conn) ReadJSON(v interface{}) error {
	_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
	return c.conn.ReadJSON(v)
}

// Close sends a normal close frame and closes the connection.
func (c *Conn) Close() error {
	c.mu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.mu.Unlock()
	return c.conn.Close()
}
