package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"portal-service/internal/models"
)

// NotificationRepository records side-effect notifications for polling clients.
type NotificationRepository interface {
	Create(ctx context.Context, userID int, notificationType string, content string, metadata types.JSONText) (models.Notification, error)
	ListForUser(ctx context.Context, userID int, limit int) ([]models.Notification, error)
	MarkSeen(ctx context.Context, userID int) error
}

// NotificationRepo is a sqlx-backed repository.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create inserts one notification. No dedup, no batching.
func (r *NotificationRepo) Create(ctx context.Context, userID int, notificationType string, content string, metadata types.JSONText) (models.Notification, error) {
	var meta interface{}
	if len(metadata) > 0 {
		meta = metadata
	}
	var n models.Notification
	err := r.db.QueryRowxContext(ctx, `INSERT INTO notifications (user_id, notification_type, content, metadata)
        VALUES ($1, $2, $3, $4)
        RETURNING id, user_id, notification_type, content, COALESCE(metadata, 'null'::jsonb), seen, created_at`,
		userID, notificationType, content, meta).
		Scan(&n.ID, &n.UserID, &n.NotificationType, &n.Content, &n.Metadata, &n.Seen, &n.CreatedAt)
	return n, err
}

// ListForUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID int, limit int) ([]models.Notification, error) {
	query := `SELECT id, user_id, notification_type, content, COALESCE(metadata, 'null'::jsonb) AS metadata, seen, created_at
        FROM notifications WHERE user_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`
	var items []models.Notification
	err := r.db.SelectContext(ctx, &items, query, userID, limit)
	return items, err
}

// MarkSeen marks every notification for the user as seen.
func (r *NotificationRepo) MarkSeen(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET seen = TRUE WHERE user_id=$1 AND seen = FALSE`, userID)
	return err
}
