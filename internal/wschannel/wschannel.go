// Package wschannel implements spec.md §1's FrameChannel over
// WebSocket: "the wire framing of the duplex channel ... any
// WebSocket-equivalent implementation suffices." No teacher file
// implements this directly (the teacher's own duplex channel is a raw
// net.Conn/unix-socket in
// internal/runtime/server/connection.go); this follows that file's
// read-goroutine-feeds-a-channel shape while adopting
// github.com/gorilla/websocket for the transport, grounded on that
// dependency's appearance in my-take-dev-myT-x and
// other_examples/manifests/artpar-terminal-tunnel.
package wschannel

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WriteTimeout bounds a single frame write so a stuck peer cannot
// freeze the reactor (spec.md §5: "short (~100ms) write timeouts").
const WriteTimeout = 100 * time.Millisecond

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// ErrClosed is returned by Send/Recv after Close.
var ErrClosed = errors.New("wschannel: closed")

// Channel adapts a *websocket.Conn to the FrameChannel capability
// internal/client.State and the reactor need: binary+text frame
// send/receive, close, ping/pong.
type Channel struct {
	conn   *websocket.Conn
	closed bool
}

// Upgrade accepts a WebSocket handshake on w/r, producing a Channel.
func Upgrade(w http.ResponseWriter, r *http.Request) (*Channel, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return &Channel{conn: conn}, nil
}

// Send writes a binary frame, honoring WriteTimeout (spec.md §5).
func (c *Channel) Send(frame []byte) error {
	if c.closed {
		return ErrClosed
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	return c.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// SendText writes a text frame, for the self-describing JSON codec
// path (spec.md §4.7).
func (c *Channel) SendText(frame []byte) error {
	if c.closed {
		return ErrClosed
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

// Recv blocks for the next frame. isText distinguishes the JSON vs
// binary codec path a caller should apply.
func (c *Channel) Recv() (data []byte, isText bool, err error) {
	if c.closed {
		return nil, false, ErrClosed
	}
	mt, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, false, err
	}
	return data, mt == websocket.TextMessage, nil
}

// Ping sends a protocol-level WebSocket ping (independent of the
// application-level MsgPing/MsgPong pair, spec.md §4.7).
func (c *Channel) Ping() error {
	if c.closed {
		return ErrClosed
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// Close closes the underlying connection.
func (c *Channel) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
