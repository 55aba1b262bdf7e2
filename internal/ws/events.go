package ws

import (
	"encoding/json"

	"github.com/jmoiron/sqlx/types"

	"portal-service/internal/models"
)

// Inbound event names. The portal's older web client used snake_case for the
// room events, so both spellings are accepted.
const (
	EventJoinRoom      = "joinRoom"
	EventJoinRoomAlt   = "join_room"
	EventLeaveRoom     = "leaveRoom"
	EventLeaveRoomAlt  = "leave_room"
	EventRoomMessage   = "roomMessage"
	EventMessage       = "message"
	EventDirectMessage = "directMessage"
	EventTyping        = "typing"
	EventMessageRead   = "messageRead"
)

// Outbound event names.
const (
	EventNewMessage       = "newMessage"
	EventNewDirectMessage = "newDirectMessage"
	EventRoomHistory      = "roomHistory"
	EventUserStatus       = "userStatus"
	EventError            = "error"
)

// Envelope frames every websocket payload in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals data into an outbound envelope.
func NewEnvelope(event string, data interface{}) Envelope {
	raw, _ := json.Marshal(data)
	return Envelope{Event: event, Data: raw}
}

// RoomRef identifies a room in join/leave events.
type RoomRef struct {
	RoomID int `json:"roomId"`
}

// RoomMessageIn is the inbound room message payload. SenderID is taken from
// the authenticated connection, never from the payload.
type RoomMessageIn struct {
	RoomID      int            `json:"roomId"`
	Content     string         `json:"content"`
	MessageType string         `json:"type"`
	Metadata    types.JSONText `json:"metadata,omitempty"`
}

// DirectMessageIn is the inbound direct message payload.
type DirectMessageIn struct {
	ReceiverID  int            `json:"receiverId"`
	Content     string         `json:"content"`
	MessageType string         `json:"type"`
	Metadata    types.JSONText `json:"metadata,omitempty"`
}

// TypingPayload is broadcast best-effort to a room's other members.
type TypingPayload struct {
	RoomID   int  `json:"roomId"`
	UserID   int  `json:"userId"`
	IsTyping bool `json:"isTyping"`
}

// MessageReadIn acknowledges a direct message.
type MessageReadIn struct {
	MessageID int `json:"messageId"`
}

// MessageReadOut notifies the sender that their message was read.
type MessageReadOut struct {
	MessageID int `json:"messageId"`
	UserID    int `json:"userId"`
}

// RoomHistoryOut replays recent room messages on join.
type RoomHistoryOut struct {
	RoomID   int                  `json:"roomId"`
	Messages []models.RoomMessage `json:"messages"`
}

// UserStatusOut announces a presence change together with the full online set.
type UserStatusOut struct {
	UserID      int   `json:"userId"`
	Online      bool  `json:"online"`
	OnlineUsers []int `json:"onlineUsers"`
}

// ErrorOut reports a rejected event back to the offending connection.
type ErrorOut struct {
	Event  string `json:"event"`
	Reason string `json:"reason"`
}
