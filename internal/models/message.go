package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// RoomMessage is an immutable message posted to a room.
type RoomMessage struct {
	ID          int            `db:"id" json:"id"`
	RoomID      int            `db:"room_id" json:"room_id"`
	SenderID    int            `db:"sender_id" json:"sender_id"`
	Content     string         `db:"content" json:"content"`
	MessageType string         `db:"message_type" json:"type"`
	Metadata    types.JSONText `db:"metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// DirectMessage is a point-to-point message between two users. Only is_read
// ever changes after insert.
type DirectMessage struct {
	ID          int            `db:"id" json:"id"`
	SenderID    int            `db:"sender_id" json:"sender_id"`
	ReceiverID  int            `db:"receiver_id" json:"receiver_id"`
	Content     string         `db:"content" json:"content"`
	MessageType string         `db:"message_type" json:"type"`
	Metadata    types.JSONText `db:"metadata" json:"metadata,omitempty"`
	IsRead      bool           `db:"is_read" json:"is_read"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}
