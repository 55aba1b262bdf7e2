package ws

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id     string
	userID int

	mu       sync.Mutex
	sent     []Envelope
	failSend bool
	closed   bool
}

func newFakeConn(id string, userID int) *fakeConn {
	return &fakeConn{id: id, userID: userID}
}

func (c *fakeConn) Send(env Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSend {
		return errors.New("send failed")
	}
	c.sent = append(c.sent, env)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) ID() string  { return c.id }
func (c *fakeConn) UserID() int { return c.userID }

func (c *fakeConn) envelopes(event string) []Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Envelope
	for _, env := range c.sent {
		if env.Event == event {
			out = append(out, env)
		}
	}
	return out
}

func TestHubBroadcastRoomReachesEveryMemberOnce(t *testing.T) {
	hub := NewHub()
	a := newFakeConn("a", 1)
	b := newFakeConn("b", 2)
	outsider := newFakeConn("c", 3)

	hub.AddConn(a)
	hub.AddConn(b)
	hub.AddConn(outsider)
	hub.JoinRoom(7, a)
	hub.JoinRoom(7, b)

	hub.BroadcastRoom(7, NewEnvelope(EventNewMessage, map[string]string{"content": "hello"}))

	require.Len(t, a.envelopes(EventNewMessage), 1)
	require.Len(t, b.envelopes(EventNewMessage), 1)
	assert.Empty(t, outsider.envelopes(EventNewMessage))
}

func TestHubBroadcastRoomExceptSkipsSender(t *testing.T) {
	hub := NewHub()
	a := newFakeConn("a", 1)
	b := newFakeConn("b", 2)
	hub.AddConn(a)
	hub.AddConn(b)
	hub.JoinRoom(7, a)
	hub.JoinRoom(7, b)

	hub.BroadcastRoomExcept(7, a, NewEnvelope(EventTyping, TypingPayload{RoomID: 7, UserID: 1, IsTyping: true}))

	assert.Empty(t, a.envelopes(EventTyping))
	require.Len(t, b.envelopes(EventTyping), 1)
}

func TestHubLeaveRoomStopsDelivery(t *testing.T) {
	hub := NewHub()
	a := newFakeConn("a", 1)
	hub.AddConn(a)
	hub.JoinRoom(7, a)
	hub.LeaveRoom(7, a)

	hub.BroadcastRoom(7, NewEnvelope(EventNewMessage, nil))

	assert.Empty(t, a.sent)
	assert.False(t, hub.InRoom(7, a))
}

func TestHubSendToUser(t *testing.T) {
	hub := NewHub()
	a := newFakeConn("a", 1)
	hub.AddConn(a)

	require.True(t, hub.SendToUser(1, NewEnvelope(EventNewDirectMessage, nil)))
	require.False(t, hub.SendToUser(99, NewEnvelope(EventNewDirectMessage, nil)))
	assert.Len(t, a.envelopes(EventNewDirectMessage), 1)
}

func TestHubSecondConnReplacesFirstForDelivery(t *testing.T) {
	hub := NewHub()
	first := newFakeConn("first", 1)
	second := newFakeConn("second", 1)
	hub.AddConn(first)
	hub.AddConn(second)

	hub.SendToUser(1, NewEnvelope(EventNewDirectMessage, nil))

	assert.Empty(t, first.sent)
	assert.Len(t, second.sent, 1)

	// The stale connection's removal must not evict the live one.
	hub.RemoveConn(first)
	require.True(t, hub.SendToUser(1, NewEnvelope(EventNewDirectMessage, nil)))
}

func TestHubFailedWriteEvictsConn(t *testing.T) {
	hub := NewHub()
	a := newFakeConn("a", 1)
	a.failSend = true
	hub.AddConn(a)
	hub.JoinRoom(7, a)

	hub.BroadcastRoom(7, NewEnvelope(EventNewMessage, nil))

	assert.True(t, a.closed)
	assert.False(t, hub.InRoom(7, a))
	assert.False(t, hub.SendToUser(1, NewEnvelope(EventNewDirectMessage, nil)))
}
