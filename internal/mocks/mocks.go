package mocks

import (
	"context"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/mock"

	"portal-service/internal/models"
	"portal-service/internal/presence"
	"portal-service/internal/repositories"
)

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) CreateRoom(ctx context.Context, name string, createdBy int) (models.Room, error) {
	args := m.Called(ctx, name, createdBy)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, roomID int) (models.Room, error) {
	args := m.Called(ctx, roomID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) ListRoomsForUser(ctx context.Context, userID int) ([]models.Room, error) {
	args := m.Called(ctx, userID)
	var rooms []models.Room
	if val := args.Get(0); val != nil {
		rooms = val.([]models.Room)
	}
	return rooms, args.Error(1)
}

func (m *RoomRepositoryMock) AddMember(ctx context.Context, roomID int, userID int) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

func (m *RoomRepositoryMock) IsMember(ctx context.Context, roomID int, userID int) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepositoryMock) ListMemberIDs(ctx context.Context, roomID int) ([]int, error) {
	args := m.Called(ctx, roomID)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

type RoomMessageRepositoryMock struct {
	mock.Mock
}

func (m *RoomMessageRepositoryMock) CreateRoomMessage(ctx context.Context, roomID int, senderID int, content string, messageType string, metadata types.JSONText) (models.RoomMessage, error) {
	args := m.Called(ctx, roomID, senderID, content, messageType, metadata)
	var msg models.RoomMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.RoomMessage)
	}
	return msg, args.Error(1)
}

func (m *RoomMessageRepositoryMock) ListRecent(ctx context.Context, roomID int, limit int) ([]models.RoomMessage, error) {
	args := m.Called(ctx, roomID, limit)
	var msgs []models.RoomMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.RoomMessage)
	}
	return msgs, args.Error(1)
}

type DirectMessageRepositoryMock struct {
	mock.Mock
}

func (m *DirectMessageRepositoryMock) CreateDirectMessage(ctx context.Context, senderID int, receiverID int, content string, messageType string, metadata types.JSONText) (models.DirectMessage, error) {
	args := m.Called(ctx, senderID, receiverID, content, messageType, metadata)
	var msg models.DirectMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.DirectMessage)
	}
	return msg, args.Error(1)
}

func (m *DirectMessageRepositoryMock) GetDirectMessage(ctx context.Context, messageID int) (models.DirectMessage, error) {
	args := m.Called(ctx, messageID)
	var msg models.DirectMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.DirectMessage)
	}
	return msg, args.Error(1)
}

func (m *DirectMessageRepositoryMock) Conversation(ctx context.Context, userID int, peerID int, limit int) ([]models.DirectMessage, error) {
	args := m.Called(ctx, userID, peerID, limit)
	var msgs []models.DirectMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.DirectMessage)
	}
	return msgs, args.Error(1)
}

func (m *DirectMessageRepositoryMock) MarkRead(ctx context.Context, messageID int, receiverID int) error {
	args := m.Called(ctx, messageID, receiverID)
	return args.Error(0)
}

func (m *DirectMessageRepositoryMock) UnreadCount(ctx context.Context, userID int) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) Create(ctx context.Context, userID int, notificationType string, content string, metadata types.JSONText) (models.Notification, error) {
	args := m.Called(ctx, userID, notificationType, content, metadata)
	var n models.Notification
	if val := args.Get(0); val != nil {
		n = val.(models.Notification)
	}
	return n, args.Error(1)
}

func (m *NotificationRepositoryMock) ListForUser(ctx context.Context, userID int, limit int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit)
	var items []models.Notification
	if val := args.Get(0); val != nil {
		items = val.([]models.Notification)
	}
	return items, args.Error(1)
}

func (m *NotificationRepositoryMock) MarkSeen(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type CreditRepositoryMock struct {
	mock.Mock
}

func (m *CreditRepositoryMock) ListTools(ctx context.Context) ([]models.Tool, error) {
	args := m.Called(ctx)
	var tools []models.Tool
	if val := args.Get(0); val != nil {
		tools = val.([]models.Tool)
	}
	return tools, args.Error(1)
}

func (m *CreditRepositoryMock) GetTool(ctx context.Context, toolID int) (models.Tool, error) {
	args := m.Called(ctx, toolID)
	var tool models.Tool
	if val := args.Get(0); val != nil {
		tool = val.(models.Tool)
	}
	return tool, args.Error(1)
}

func (m *CreditRepositoryMock) GetBalance(ctx context.Context, userID int) (models.MemberCredit, error) {
	args := m.Called(ctx, userID)
	var credit models.MemberCredit
	if val := args.Get(0); val != nil {
		credit = val.(models.MemberCredit)
	}
	return credit, args.Error(1)
}

func (m *CreditRepositoryMock) AddCredits(ctx context.Context, userID int, amount int) (models.MemberCredit, error) {
	args := m.Called(ctx, userID, amount)
	var credit models.MemberCredit
	if val := args.Get(0); val != nil {
		credit = val.(models.MemberCredit)
	}
	return credit, args.Error(1)
}

func (m *CreditRepositoryMock) StartSession(ctx context.Context, userID int, toolID int) (models.ToolSession, error) {
	args := m.Called(ctx, userID, toolID)
	var session models.ToolSession
	if val := args.Get(0); val != nil {
		session = val.(models.ToolSession)
	}
	return session, args.Error(1)
}

func (m *CreditRepositoryMock) StopSession(ctx context.Context, userID int) (models.ToolSession, error) {
	args := m.Called(ctx, userID)
	var session models.ToolSession
	if val := args.Get(0); val != nil {
		session = val.(models.ToolSession)
	}
	return session, args.Error(1)
}

func (m *CreditRepositoryMock) ActiveSession(ctx context.Context, userID int) (models.ToolSession, error) {
	args := m.Called(ctx, userID)
	var session models.ToolSession
	if val := args.Get(0); val != nil {
		session = val.(models.ToolSession)
	}
	return session, args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) BulkUsers(ctx context.Context, userIDs []int) ([]models.User, error) {
	args := m.Called(ctx, userIDs)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

type RegistryMock struct {
	mock.Mock
}

func (m *RegistryMock) Register(ctx context.Context, userID int, connID string) error {
	args := m.Called(ctx, userID, connID)
	return args.Error(0)
}

func (m *RegistryMock) Unregister(ctx context.Context, userID int, connID string) (bool, error) {
	args := m.Called(ctx, userID, connID)
	return args.Bool(0), args.Error(1)
}

func (m *RegistryMock) Lookup(ctx context.Context, userID int) (string, bool, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *RegistryMock) Online(ctx context.Context) ([]int, error) {
	args := m.Called(ctx)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

func (m *RegistryMock) Refresh(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

var _ repositories.RoomRepository = (*RoomRepositoryMock)(nil)
var _ repositories.RoomMessageRepository = (*RoomMessageRepositoryMock)(nil)
var _ repositories.DirectMessageRepository = (*DirectMessageRepositoryMock)(nil)
var _ repositories.NotificationRepository = (*NotificationRepositoryMock)(nil)
var _ repositories.CreditRepository = (*CreditRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ presence.Registry = (*RegistryMock)(nil)
