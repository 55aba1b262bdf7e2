package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Notification types emitted by the delivery router.
const (
	NotificationRoomMessage   = "room_message"
	NotificationDirectMessage = "direct_message"
)

// Notification is a side-effect record surfaced to polling clients.
type Notification struct {
	ID               int            `db:"id" json:"id"`
	UserID           int            `db:"user_id" json:"user_id"`
	NotificationType string         `db:"notification_type" json:"type"`
	Content          string         `db:"content" json:"content"`
	Metadata         types.JSONText `db:"metadata" json:"metadata,omitempty"`
	Seen             bool           `db:"seen" json:"seen"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}
