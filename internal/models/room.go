package models

import "time"

// Room is a named broadcast group of members.
type Room struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedBy int       `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RoomMember links a user to a room.
type RoomMember struct {
	RoomID   int       `db:"room_id" json:"room_id"`
	UserID   int       `db:"user_id" json:"user_id"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}
