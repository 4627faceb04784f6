package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Buffered sends per connection; a full buffer drops the push, the
	// client can recover with GetNotifications.
	sendBuffer = 8
)

// client is one websocket connection bound to an authenticated user. All
// writes go through the outbound channel so the connection has a single
// writer.
type client struct {
	conn   *websocket.Conn
	userID uint64

	outbound chan []byte

	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, userID uint64) *client {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	return &client{
		conn:     conn,
		userID:   userID,
		outbound: make(chan []byte, sendBuffer),
	}
}

// send queues a message for delivery. A slow connection loses the push
// rather than blocking the caller.
func (c *client) send(message []byte) {
	select {
	case c.outbound <- message:
	default:
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.outbound)
	})
}

// writePump delivers queued messages and keepalive pings until the
// outbound channel closes or a write fails.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.outbound:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
