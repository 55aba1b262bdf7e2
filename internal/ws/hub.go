package ws

import (
	"sync"
)

// Hub maintains the process-local view of connections: which conn belongs to
// which user and which conns are joined to which room. The cross-instance
// presence view lives in the presence registry; the hub only ever delivers to
// conns it holds.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int]map[Conn]struct{}
	users map[int]Conn
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[int]map[Conn]struct{}),
		users: make(map[int]Conn),
	}
}

// AddConn tracks a user's connection. A second connection for the same user
// replaces the first for delivery purposes.
func (h *Hub) AddConn(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.users[c.UserID()] = c
}

// RemoveConn drops the connection from the user table and every room it
// joined. A stale conn (already replaced by a newer one) only leaves rooms.
func (h *Hub) RemoveConn(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.users[c.UserID()]; ok && current == c {
		delete(h.users, c.UserID())
	}
	for roomID, conns := range h.rooms {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// JoinRoom adds the connection to a room's broadcast group.
func (h *Hub) JoinRoom(roomID int, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.rooms[roomID]
	if !ok {
		conns = make(map[Conn]struct{})
		h.rooms[roomID] = conns
	}
	conns[c] = struct{}{}
}

// LeaveRoom removes the connection from a room's broadcast group.
func (h *Hub) LeaveRoom(roomID int, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[roomID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// BroadcastRoom sends the envelope to every connection in the room, the
// sender's included. Delivery is best-effort; a failed write closes the conn.
func (h *Hub) BroadcastRoom(roomID int, env Envelope) {
	for _, c := range h.roomConns(roomID) {
		h.send(c, env)
	}
}

// BroadcastRoomExcept sends to every room member but one; used for typing
// indicators.
func (h *Hub) BroadcastRoomExcept(roomID int, except Conn, env Envelope) {
	for _, c := range h.roomConns(roomID) {
		if c == except {
			continue
		}
		h.send(c, env)
	}
}

// BroadcastAll sends the envelope to every tracked connection.
func (h *Hub) BroadcastAll(env Envelope) {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.users))
	for _, c := range h.users {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		h.send(c, env)
	}
}

// SendToUser delivers to the user's live connection if this instance holds it.
func (h *Hub) SendToUser(userID int, env Envelope) bool {
	h.mu.RLock()
	c, ok := h.users[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	h.send(c, env)
	return true
}

// InRoom reports whether the connection currently belongs to the room group.
func (h *Hub) InRoom(roomID int, c Conn) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[roomID][c]
	return ok
}

func (h *Hub) roomConns(roomID int) []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := make([]Conn, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		conns = append(conns, c)
	}
	return conns
}

func (h *Hub) send(c Conn, env Envelope) {
	if err := c.Send(env); err != nil {
		c.Close()
		h.RemoveConn(c)
	}
}
