package feed

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the minimal transport surface a channel needs. It is satisfied by
// *websocket.Conn in production and by a fake in tests, so the state
// machine and dialect decoders never depend on gorilla/websocket directly.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteJSON(v interface{}) error
	Close() error
}

// Dialer opens a transport connection to a venue endpoint. Swappable so
// tests can avoid a real network dial.
type Dialer func(ctx context.Context, url string) (Conn, error)

// DefaultDialer dials a real secure WebSocket using gorilla/websocket.
func DefaultDialer(ctx context.Context, url string) (Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
