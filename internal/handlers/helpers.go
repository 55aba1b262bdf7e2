package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if id := c.GetString(requestIDContextKey); id != "" {
		return id
	}

	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDContextKey, id)
	return id
}

func userIDFromContext(c *gin.Context) *string {
	if userID := c.GetInt("userID"); userID != 0 {
		value := strconv.Itoa(userID)
		return &value
	}
	return nil
}
