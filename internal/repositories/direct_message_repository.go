package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"portal-service/internal/models"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	// ErrNotReceiver is returned when a read receipt comes from anyone other
	// than the message's receiver.
	ErrNotReceiver = errors.New("user is not the message receiver")
)

// DirectMessageRepository defines interactions for direct messages.
type DirectMessageRepository interface {
	CreateDirectMessage(ctx context.Context, senderID int, receiverID int, content string, messageType string, metadata types.JSONText) (models.DirectMessage, error)
	GetDirectMessage(ctx context.Context, messageID int) (models.DirectMessage, error)
	Conversation(ctx context.Context, userID int, peerID int, limit int) ([]models.DirectMessage, error)
	MarkRead(ctx context.Context, messageID int, receiverID int) error
	UnreadCount(ctx context.Context, userID int) (int, error)
}

// DirectMessageRepo is a sqlx-backed repository.
type DirectMessageRepo struct {
	db *sqlx.DB
}

// NewDirectMessageRepo constructs DirectMessageRepo.
func NewDirectMessageRepo(db *sqlx.DB) *DirectMessageRepo {
	return &DirectMessageRepo{db: db}
}

// CreateDirectMessage stores a direct message with is_read=false.
func (r *DirectMessageRepo) CreateDirectMessage(ctx context.Context, senderID int, receiverID int, content string, messageType string, metadata types.JSONText) (models.DirectMessage, error) {
	if messageType == "" {
		messageType = "text"
	}
	var meta interface{}
	if len(metadata) > 0 {
		meta = metadata
	}
	var msg models.DirectMessage
	err := r.db.QueryRowxContext(ctx, `INSERT INTO direct_messages (sender_id, receiver_id, content, message_type, metadata)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, sender_id, receiver_id, content, message_type, COALESCE(metadata, 'null'::jsonb), is_read, created_at`,
		senderID, receiverID, content, messageType, meta).
		Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.MessageType, &msg.Metadata, &msg.IsRead, &msg.CreatedAt)
	return msg, err
}

// GetDirectMessage retrieves a single direct message.
func (r *DirectMessageRepo) GetDirectMessage(ctx context.Context, messageID int) (models.DirectMessage, error) {
	var msg models.DirectMessage
	err := r.db.GetContext(ctx, &msg, `SELECT id, sender_id, receiver_id, content, message_type, COALESCE(metadata, 'null'::jsonb) AS metadata, is_read, created_at
        FROM direct_messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DirectMessage{}, ErrMessageNotFound
	}
	return msg, err
}

// Conversation returns the messages exchanged between two users, oldest first
// within the fetched page.
func (r *DirectMessageRepo) Conversation(ctx context.Context, userID int, peerID int, limit int) ([]models.DirectMessage, error) {
	query := `SELECT id, sender_id, receiver_id, content, message_type, COALESCE(metadata, 'null'::jsonb) AS metadata, is_read, created_at FROM (
            SELECT * FROM direct_messages
            WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
            ORDER BY created_at DESC, id DESC LIMIT $3
        ) recent ORDER BY created_at ASC, id ASC`
	var msgs []models.DirectMessage
	err := r.db.SelectContext(ctx, &msgs, query, userID, peerID, limit)
	return msgs, err
}

// MarkRead flips is_read for a message, but only when the caller is its
// receiver. A zero-row update distinguishes a missing message from a
// mismatched receiver.
func (r *DirectMessageRepo) MarkRead(ctx context.Context, messageID int, receiverID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE direct_messages SET is_read = TRUE WHERE id=$1 AND receiver_id=$2`, messageID, receiverID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM direct_messages WHERE id=$1)`, messageID); err != nil {
			return err
		}
		if !exists {
			return ErrMessageNotFound
		}
		return ErrNotReceiver
	}
	return nil
}

// UnreadCount counts unread messages addressed to the user.
func (r *DirectMessageRepo) UnreadCount(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM direct_messages WHERE receiver_id=$1 AND is_read = FALSE`, userID)
	return count, err
}
