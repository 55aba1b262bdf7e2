package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is one member's live connection as the hub and router see it.
type Conn interface {
	Send(env Envelope) error
	Close() error
	ID() string
	UserID() int
}

const writeTimeout = 5 * time.Second

// wsConn wraps a gorilla connection. Writes are serialized: the router,
// broadcasts from other connections' handlers and the pinger all share it.
type wsConn struct {
	conn   *websocket.Conn
	id     string
	userID int

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

func newWSConn(conn *websocket.Conn, id string, userID int) *wsConn {
	return &wsConn{
		conn:   conn,
		id:     id,
		userID: userID,
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(env Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(env)
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

func (c *wsConn) ID() string  { return c.id }
func (c *wsConn) UserID() int { return c.userID }
