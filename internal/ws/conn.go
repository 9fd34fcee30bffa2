package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// conn is one attached websocket with a buffered outbound queue. Writes go
// through the queue so broadcasts never block on a slow client.
type conn struct {
	id   string
	sock *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// enqueue queues an outbound frame, dropping it if the client has fallen too
// far behind. A broadcast can hold a conn snapshot across a detach, so the
// closed flag is checked under the same lock that close takes.
func (c *conn) enqueue(payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// writePump drains the send queue onto the socket until the queue closes.
func (c *conn) writePump() {
	for msg := range c.send {
		if err := c.sock.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *conn) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	c.sock.Close()
}
