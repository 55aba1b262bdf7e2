package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"portal-service/internal/models"
	"portal-service/internal/repositories"
	"portal-service/internal/telemetry"
)

// RoomHandler manages chat room endpoints.
type RoomHandler struct {
	rooms    repositories.RoomRepository
	roomMsgs repositories.RoomMessageRepository
	users    repositories.UserRepository
	pageSize int
	audit    *telemetry.AuditEmitter
}

// NewRoomHandler builds a RoomHandler.
func NewRoomHandler(rooms repositories.RoomRepository, roomMsgs repositories.RoomMessageRepository, users repositories.UserRepository, pageSize int, audit *telemetry.AuditEmitter) *RoomHandler {
	return &RoomHandler{rooms: rooms, roomMsgs: roomMsgs, users: users, pageSize: pageSize, audit: audit}
}

func (h *RoomHandler) emitAudit(c *gin.Context, action, detail string) {
	h.audit.Emit(c.Request.Context(), action, detail, requestIDFromContext(c), userIDFromContext(c))
}

// CreateRoom creates a named broadcast group. Admin only (route-gated).
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.rooms.CreateRoom(c.Request.Context(), req.Name, c.GetInt("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
		return
	}

	h.emitAudit(c, "room.create", room.Name)
	c.JSON(http.StatusCreated, room)
}

// ListRooms returns the rooms the caller belongs to.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListRoomsForUser(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}
	if rooms == nil {
		rooms = []models.Room{}
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// AddMember enrolls a user into a room. Admin only (route-gated).
func (h *RoomHandler) AddMember(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	var req struct {
		UserID int `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.rooms.GetRoom(c.Request.Context(), roomID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "room not found"})
		return
	}
	if _, err := h.users.GetUser(c.Request.Context(), req.UserID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "user not found"})
		return
	}

	if err := h.rooms.AddMember(c.Request.Context(), roomID, req.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add member"})
		return
	}

	h.emitAudit(c, "room.member.add", strconv.Itoa(req.UserID))
	c.Status(http.StatusNoContent)
}

// GetRoomMessages returns recent messages for a room the caller belongs to.
func (h *RoomHandler) GetRoomMessages(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	userID := c.GetInt("userID")
	member, err := h.rooms.IsMember(c.Request.Context(), roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room member"})
		return
	}

	msgs, err := h.roomMsgs.ListRecent(c.Request.Context(), roomID, h.pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	senderIDs := make([]int, 0, len(msgs))
	senderIDSet := map[int]struct{}{}
	for _, m := range msgs {
		if _, ok := senderIDSet[m.SenderID]; !ok {
			senderIDSet[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}

	users, err := h.users.BulkUsers(c.Request.Context(), senderIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load senders"})
		return
	}
	senderNames := map[int]string{}
	for _, u := range users {
		senderNames[u.ID] = u.FullName
	}

	type messageResponse struct {
		models.RoomMessage
		SenderName string `json:"sender_name,omitempty"`
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, messageResponse{RoomMessage: m, SenderName: senderNames[m.SenderID]})
	}

	c.JSON(http.StatusOK, gin.H{"messages": resp})
}
