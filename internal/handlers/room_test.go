package handlers

import (
	"bytes"
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

func setupRoomRouter(handler *RoomHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/rooms", handler.CreateRoom)
	r.GET("/rooms", handler.ListRooms)
	r.POST("/rooms/:room_id/members", handler.AddMember)
	r.GET("/rooms/:room_id/messages", handler.GetRoomMessages)
	return r
}

func TestCreateRoomSuccess(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, new(mocks.RoomMessageRepositoryMock), new(mocks.UserRepositoryMock), 50, nil)
	router := setupRoomRouter(handler)

	roomRepo.On("CreateRoom", mock.Anything, "general", 1).Return(models.Room{ID: 5, Name: "general"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms", bytes.NewBufferString(`{"name":"general"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	roomRepo.AssertExpectations(t)
}

func TestCreateRoomInvalidBody(t *testing.T) {
	handler := NewRoomHandler(new(mocks.RoomRepositoryMock), new(mocks.RoomMessageRepositoryMock), new(mocks.UserRepositoryMock), 50, nil)
	router := setupRoomRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/rooms", bytes.NewBufferString(`{"name":5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRoomsSuccess(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, new(mocks.RoomMessageRepositoryMock), new(mocks.UserRepositoryMock), 50, nil)
	router := setupRoomRouter(handler)

	roomRepo.On("ListRoomsForUser", mock.Anything, 1).Return([]models.Room{{ID: 5, Name: "general"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	roomRepo.AssertExpectations(t)
}

func TestAddMemberSuccess(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewRoomHandler(roomRepo, new(mocks.RoomMessageRepositoryMock), userRepo, 50, nil)
	router := setupRoomRouter(handler)

	roomRepo.On("GetRoom", mock.Anything, 9).Return(models.Room{ID: 9}, nil).Once()
	userRepo.On("GetUser", mock.Anything, 2).Return(models.User{ID: 2}, nil).Once()
	roomRepo.On("AddMember", mock.Anything, 9, 2).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/9/members", bytes.NewBufferString(`{"user_id":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	roomRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestAddMemberUnknownRoom(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, new(mocks.RoomMessageRepositoryMock), new(mocks.UserRepositoryMock), 50, nil)
	router := setupRoomRouter(handler)

	roomRepo.On("GetRoom", mock.Anything, 9).Return(models.Room{}, repositories.ErrRoomNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/9/members", bytes.NewBufferString(`{"user_id":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	roomRepo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddMemberUnknownUser(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewRoomHandler(roomRepo, new(mocks.RoomMessageRepositoryMock), userRepo, 50, nil)
	router := setupRoomRouter(handler)

	roomRepo.On("GetRoom", mock.Anything, 9).Return(models.Room{ID: 9}, nil).Once()
	userRepo.On("GetUser", mock.Anything, 2).Return(models.User{}, repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/9/members", bytes.NewBufferString(`{"user_id":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	roomRepo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetRoomMessagesSuccess(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	messageRepo := new(mocks.RoomMessageRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewRoomHandler(roomRepo, messageRepo, userRepo, 50, nil)
	router := setupRoomRouter(handler)

	roomRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Once()
	messageRepo.On("ListRecent", mock.Anything, 9, 50).Return([]models.RoomMessage{{ID: 1, RoomID: 9, SenderID: 2, Content: "hi"}}, nil).Once()
	userRepo.On("BulkUsers", mock.Anything, []int{2}).Return([]models.User{{ID: 2, FullName: "Bob Example"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/9/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Bob Example")
	roomRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestGetRoomMessagesForbiddenForNonMember(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	messageRepo := new(mocks.RoomMessageRepositoryMock)
	handler := NewRoomHandler(roomRepo, messageRepo, new(mocks.UserRepositoryMock), 50, nil)
	router := setupRoomRouter(handler)

	roomRepo.On("IsMember", mock.Anything, 9, 1).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/9/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messageRepo.AssertNotCalled(t, "ListRecent", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetRoomMessagesInvalidID(t *testing.T) {
	handler := NewRoomHandler(new(mocks.RoomRepositoryMock), new(mocks.RoomMessageRepositoryMock), new(mocks.UserRepositoryMock), 50, nil)
	router := setupRoomRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/rooms/bad/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
