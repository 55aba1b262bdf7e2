package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portal-service/internal/mocks"
	"portal-service/internal/models"
	"portal-service/internal/repositories"
)

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/messages/direct/:user_id", handler.GetConversation)
	r.GET("/messages/unread", handler.GetUnreadCount)
	return r
}

func TestGetConversationSuccess(t *testing.T) {
	messageRepo := new(mocks.DirectMessageRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewMessageHandler(messageRepo, userRepo, 50)
	router := setupMessageRouter(handler)

	messageRepo.On("Conversation", mock.Anything, 1, 2, 50).Return([]models.DirectMessage{
		{ID: 1, SenderID: 1, ReceiverID: 2, Content: "hi"},
		{ID: 2, SenderID: 2, ReceiverID: 1, Content: "hey"},
	}, nil).Once()
	userRepo.On("GetUser", mock.Anything, 2).Return(models.User{ID: 2, FullName: "Bob Example"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/direct/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	messageRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestGetConversationUnknownPeerStillReturnsMessages(t *testing.T) {
	messageRepo := new(mocks.DirectMessageRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewMessageHandler(messageRepo, userRepo, 50)
	router := setupMessageRouter(handler)

	messageRepo.On("Conversation", mock.Anything, 1, 2, 50).Return([]models.DirectMessage{{ID: 1, SenderID: 2, ReceiverID: 1}}, nil).Once()
	userRepo.On("GetUser", mock.Anything, 2).Return(models.User{}, repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/direct/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetConversationInvalidPeerID(t *testing.T) {
	handler := NewMessageHandler(new(mocks.DirectMessageRepositoryMock), new(mocks.UserRepositoryMock), 50)
	router := setupMessageRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/messages/direct/bad", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUnreadCount(t *testing.T) {
	messageRepo := new(mocks.DirectMessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.UserRepositoryMock), 50)
	router := setupMessageRouter(handler)

	messageRepo.On("UnreadCount", mock.Anything, 1).Return(3, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/unread", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 3, resp["unread"])
}
