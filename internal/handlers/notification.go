package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portal-service/internal/models"
	"portal-service/internal/repositories"
)

const notificationPageSize = 100

// NotificationHandler serves the polling surface for unseen items.
type NotificationHandler struct {
	notifs repositories.NotificationRepository
}

// NewNotificationHandler builds a NotificationHandler.
func NewNotificationHandler(notifs repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notifs: notifs}
}

// ListNotifications returns the caller's notifications, newest first.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	items, err := h.notifs.ListForUser(c.Request.Context(), c.GetInt("userID"), notificationPageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}
	if items == nil {
		items = []models.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// MarkSeen clears the caller's unseen flag on every notification.
func (h *NotificationHandler) MarkSeen(c *gin.Context) {
	if err := h.notifs.MarkSeen(c.Request.Context(), c.GetInt("userID")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update notifications"})
		return
	}
	c.Status(http.StatusNoContent)
}
