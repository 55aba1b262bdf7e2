package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"portal-service/internal/models"
)

// RoomMessageRepository defines interactions for room messages.
type RoomMessageRepository interface {
	CreateRoomMessage(ctx context.Context, roomID int, senderID int, content string, messageType string, metadata types.JSONText) (models.RoomMessage, error)
	ListRecent(ctx context.Context, roomID int, limit int) ([]models.RoomMessage, error)
}

// RoomMessageRepo is a sqlx-backed repository.
type RoomMessageRepo struct {
	db *sqlx.DB
}

// NewRoomMessageRepo constructs RoomMessageRepo.
func NewRoomMessageRepo(db *sqlx.DB) *RoomMessageRepo {
	return &RoomMessageRepo{db: db}
}

// CreateRoomMessage stores a message in a room and returns the persisted row.
func (r *RoomMessageRepo) CreateRoomMessage(ctx context.Context, roomID int, senderID int, content string, messageType string, metadata types.JSONText) (models.RoomMessage, error) {
	if messageType == "" {
		messageType = "text"
	}
	var meta interface{}
	if len(metadata) > 0 {
		meta = metadata
	}
	var msg models.RoomMessage
	err := r.db.QueryRowxContext(ctx, `INSERT INTO room_messages (room_id, sender_id, content, message_type, metadata)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, room_id, sender_id, content, message_type, COALESCE(metadata, 'null'::jsonb), created_at`,
		roomID, senderID, content, messageType, meta).
		Scan(&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content, &msg.MessageType, &msg.Metadata, &msg.CreatedAt)
	return msg, err
}

// ListRecent returns the newest messages for a room, re-sorted oldest first
// so clients can append them directly.
func (r *RoomMessageRepo) ListRecent(ctx context.Context, roomID int, limit int) ([]models.RoomMessage, error) {
	query := `SELECT id, room_id, sender_id, content, message_type, COALESCE(metadata, 'null'::jsonb) AS metadata, created_at FROM (
            SELECT * FROM room_messages WHERE room_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2
        ) recent ORDER BY created_at ASC, id ASC`
	var msgs []models.RoomMessage
	err := r.db.SelectContext(ctx, &msgs, query, roomID, limit)
	return msgs, err
}
