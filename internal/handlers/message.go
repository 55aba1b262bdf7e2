package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"portal-service/internal/models"
	"portal-service/internal/repositories"
)

// MessageHandler serves the direct-message REST surface. It is the documented
// fallback for delivery: an offline receiver re-fetches the conversation on
// their next load.
type MessageHandler struct {
	directMsgs repositories.DirectMessageRepository
	users      repositories.UserRepository
	pageSize   int
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(directMsgs repositories.DirectMessageRepository, users repositories.UserRepository, pageSize int) *MessageHandler {
	return &MessageHandler{directMsgs: directMsgs, users: users, pageSize: pageSize}
}

// GetConversation returns the messages exchanged with a peer.
func (h *MessageHandler) GetConversation(c *gin.Context) {
	peerID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	userID := c.GetInt("userID")

	msgs, err := h.directMsgs.Conversation(c.Request.Context(), userID, peerID, h.pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if msgs == nil {
		msgs = []models.DirectMessage{}
	}

	peer, err := h.users.GetUser(c.Request.Context(), peerID)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load peer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs, "peer": peer})
}

// GetUnreadCount answers "do I have unseen direct messages".
func (h *MessageHandler) GetUnreadCount(c *gin.Context) {
	userID := c.GetInt("userID")
	count, err := h.directMsgs.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}
