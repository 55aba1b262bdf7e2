package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"portal-service/internal/models"
	"portal-service/internal/observability"
	"portal-service/internal/presence"
	"portal-service/internal/repositories"
)

// Router is the delivery router: it accepts inbound socket events, persists
// what must be durable and fans the result out to the right connections.
// Persistence failures are fail-closed: nothing is broadcast and the caller
// gets an error event.
type Router struct {
	hub      *Hub
	registry presence.Registry

	rooms      repositories.RoomRepository
	roomMsgs   repositories.RoomMessageRepository
	directMsgs repositories.DirectMessageRepository
	notifs     repositories.NotificationRepository

	historyLimit int
	log          zerolog.Logger
}

// NewRouter constructs the delivery router.
func NewRouter(
	hub *Hub,
	registry presence.Registry,
	rooms repositories.RoomRepository,
	roomMsgs repositories.RoomMessageRepository,
	directMsgs repositories.DirectMessageRepository,
	notifs repositories.NotificationRepository,
	historyLimit int,
	log zerolog.Logger,
) *Router {
	return &Router{
		hub:          hub,
		registry:     registry,
		rooms:        rooms,
		roomMsgs:     roomMsgs,
		directMsgs:   directMsgs,
		notifs:       notifs,
		historyLimit: historyLimit,
		log:          log,
	}
}

// Connect registers the connection's presence and announces it.
func (r *Router) Connect(ctx context.Context, c Conn) error {
	r.hub.AddConn(c)
	if err := r.registry.Register(ctx, c.UserID(), c.ID()); err != nil {
		return err
	}
	r.broadcastStatus(ctx, c.UserID(), true)
	return nil
}

// Disconnect tears presence down. Unregistering a user whose entry has
// already been replaced or removed announces nothing.
func (r *Router) Disconnect(ctx context.Context, c Conn) {
	r.hub.RemoveConn(c)
	removed, err := r.registry.Unregister(ctx, c.UserID(), c.ID())
	if err != nil {
		r.log.Warn().Err(err).Int("user_id", c.UserID()).Msg("presence unregister failed")
		return
	}
	if removed {
		r.broadcastStatus(ctx, c.UserID(), false)
	}
}

// Refresh extends the connection's presence entry; wired to pong frames.
func (r *Router) Refresh(ctx context.Context, c Conn) {
	if err := r.registry.Refresh(ctx, c.UserID()); err != nil {
		r.log.Warn().Err(err).Int("user_id", c.UserID()).Msg("presence refresh failed")
	}
}

// HandleEvent dispatches one inbound envelope. Events on a single connection
// are handled to completion in arrival order by the read loop.
func (r *Router) HandleEvent(ctx context.Context, c Conn, env Envelope) {
	observability.IncWSEvent(env.Event)

	switch env.Event {
	case EventJoinRoom, EventJoinRoomAlt:
		r.handleJoinRoom(ctx, c, env)
	case EventLeaveRoom, EventLeaveRoomAlt:
		r.handleLeaveRoom(ctx, c, env)
	case EventRoomMessage, EventMessage:
		r.handleRoomMessage(ctx, c, env)
	case EventDirectMessage:
		r.handleDirectMessage(ctx, c, env)
	case EventTyping:
		r.handleTyping(ctx, c, env)
	case EventMessageRead:
		r.handleMessageRead(ctx, c, env)
	default:
		r.sendError(c, env.Event, "unknown event")
	}
}

func (r *Router) handleJoinRoom(ctx context.Context, c Conn, env Envelope) {
	var req RoomRef
	if err := json.Unmarshal(env.Data, &req); err != nil || req.RoomID == 0 {
		r.sendError(c, env.Event, "invalid payload")
		return
	}

	member, err := r.rooms.IsMember(ctx, req.RoomID, c.UserID())
	if err != nil {
		r.sendError(c, env.Event, "failed to verify membership")
		return
	}
	if !member {
		r.sendError(c, env.Event, "not a room member")
		return
	}

	r.hub.JoinRoom(req.RoomID, c)

	history, err := r.roomMsgs.ListRecent(ctx, req.RoomID, r.historyLimit)
	if err != nil {
		r.sendError(c, env.Event, "failed to load history")
		return
	}
	if history == nil {
		history = []models.RoomMessage{}
	}
	if err := c.Send(NewEnvelope(EventRoomHistory, RoomHistoryOut{RoomID: req.RoomID, Messages: history})); err != nil {
		r.log.Debug().Err(err).Int("room_id", req.RoomID).Msg("history send failed")
	}
}

func (r *Router) handleLeaveRoom(ctx context.Context, c Conn, env Envelope) {
	var req RoomRef
	if err := json.Unmarshal(env.Data, &req); err != nil || req.RoomID == 0 {
		r.sendError(c, env.Event, "invalid payload")
		return
	}
	r.hub.LeaveRoom(req.RoomID, c)
}

func (r *Router) handleRoomMessage(ctx context.Context, c Conn, env Envelope) {
	var req RoomMessageIn
	if err := json.Unmarshal(env.Data, &req); err != nil {
		r.sendError(c, env.Event, "invalid payload")
		return
	}
	if req.RoomID == 0 || strings.TrimSpace(req.Content) == "" {
		r.sendError(c, env.Event, "roomId and content are required")
		return
	}

	member, err := r.rooms.IsMember(ctx, req.RoomID, c.UserID())
	if err != nil || !member {
		r.sendError(c, env.Event, "not a room member")
		return
	}

	msg, err := r.roomMsgs.CreateRoomMessage(ctx, req.RoomID, c.UserID(), req.Content, req.MessageType, req.Metadata)
	if err != nil {
		r.log.Error().Err(err).Int("room_id", req.RoomID).Msg("room message persist failed")
		r.sendError(c, env.Event, "message not stored")
		return
	}
	observability.IncMessage("room")

	// The broadcast row is the single source of truth: every joined conn,
	// sender included, receives the same server-assigned id and timestamp.
	r.hub.BroadcastRoom(req.RoomID, NewEnvelope(EventNewMessage, msg))

	r.notifyRoomMembers(ctx, msg)

	_ = observability.PublishEvent(ctx, fmt.Sprintf("chat.room.%d", req.RoomID), observability.EventEnvelope{
		EventType: "chat_events",
		EventName: "room_message",
		Payload:   msg,
	})
}

// notifyRoomMembers inserts one notification per member other than the
// sender, connected or not. Surfaced by polling, never pushed.
func (r *Router) notifyRoomMembers(ctx context.Context, msg models.RoomMessage) {
	memberIDs, err := r.rooms.ListMemberIDs(ctx, msg.RoomID)
	if err != nil {
		r.log.Warn().Err(err).Int("room_id", msg.RoomID).Msg("room member listing failed, notifications skipped")
		return
	}
	meta, _ := json.Marshal(map[string]int{"room_id": msg.RoomID, "message_id": msg.ID})
	for _, memberID := range memberIDs {
		if memberID == msg.SenderID {
			continue
		}
		n, err := r.notifs.Create(ctx, memberID, models.NotificationRoomMessage, msg.Content, meta)
		if err != nil {
			r.log.Warn().Err(err).Int("user_id", memberID).Msg("notification insert failed")
			continue
		}
		r.publishNotification(ctx, n)
	}
}

func (r *Router) handleDirectMessage(ctx context.Context, c Conn, env Envelope) {
	var req DirectMessageIn
	if err := json.Unmarshal(env.Data, &req); err != nil {
		r.sendError(c, env.Event, "invalid payload")
		return
	}
	if req.ReceiverID == 0 || strings.TrimSpace(req.Content) == "" {
		r.sendError(c, env.Event, "receiverId and content are required")
		return
	}

	msg, err := r.directMsgs.CreateDirectMessage(ctx, c.UserID(), req.ReceiverID, req.Content, req.MessageType, req.Metadata)
	if err != nil {
		r.log.Error().Err(err).Int("receiver_id", req.ReceiverID).Msg("direct message persist failed")
		r.sendError(c, env.Event, "message not stored")
		return
	}
	observability.IncMessage("direct")

	out := NewEnvelope(EventNewDirectMessage, msg)

	// Local echo to the sender first; it doubles as the delivery confirmation.
	if err := c.Send(out); err != nil {
		r.log.Debug().Err(err).Msg("direct message echo failed")
	}

	_, online, err := r.registry.Lookup(ctx, req.ReceiverID)
	if err != nil {
		r.log.Warn().Err(err).Int("receiver_id", req.ReceiverID).Msg("presence lookup failed")
	}
	if online {
		r.hub.SendToUser(req.ReceiverID, out)
	} else {
		meta, _ := json.Marshal(map[string]int{"sender_id": msg.SenderID, "message_id": msg.ID})
		n, err := r.notifs.Create(ctx, req.ReceiverID, models.NotificationDirectMessage, msg.Content, meta)
		if err != nil {
			r.log.Warn().Err(err).Int("user_id", req.ReceiverID).Msg("notification insert failed")
		} else {
			r.publishNotification(ctx, n)
		}
	}

	_ = observability.PublishEvent(ctx, fmt.Sprintf("chat.direct.%d", req.ReceiverID), observability.EventEnvelope{
		EventType: "chat_events",
		EventName: "direct_message",
		Payload:   msg,
	})
}

func (r *Router) handleTyping(ctx context.Context, c Conn, env Envelope) {
	var req TypingPayload
	if err := json.Unmarshal(env.Data, &req); err != nil || req.RoomID == 0 {
		return
	}
	req.UserID = c.UserID()
	r.hub.BroadcastRoomExcept(req.RoomID, c, NewEnvelope(EventTyping, req))
}

func (r *Router) handleMessageRead(ctx context.Context, c Conn, env Envelope) {
	var req MessageReadIn
	if err := json.Unmarshal(env.Data, &req); err != nil || req.MessageID == 0 {
		r.sendError(c, env.Event, "invalid payload")
		return
	}

	// Only the true receiver may flip the flag; the repository enforces the
	// ownership match inside the UPDATE.
	if err := r.directMsgs.MarkRead(ctx, req.MessageID, c.UserID()); err != nil {
		r.sendError(c, env.Event, err.Error())
		return
	}

	msg, err := r.directMsgs.GetDirectMessage(ctx, req.MessageID)
	if err != nil {
		r.log.Warn().Err(err).Int("message_id", req.MessageID).Msg("read message lookup failed")
		return
	}

	// The sender learns about the receipt only while connected; otherwise the
	// acknowledgment is dropped and a later history fetch shows the flag.
	_, online, err := r.registry.Lookup(ctx, msg.SenderID)
	if err != nil {
		r.log.Warn().Err(err).Int("sender_id", msg.SenderID).Msg("presence lookup failed")
		return
	}
	if online {
		r.hub.SendToUser(msg.SenderID, NewEnvelope(EventMessageRead, MessageReadOut{
			MessageID: req.MessageID,
			UserID:    c.UserID(),
		}))
	}
}

func (r *Router) publishNotification(ctx context.Context, n models.Notification) {
	_ = observability.PublishEvent(ctx, "notification.created", observability.EventEnvelope{
		EventType: "notification_events",
		EventName: "notification_created",
		Payload:   n,
	})
}

func (r *Router) broadcastStatus(ctx context.Context, userID int, online bool) {
	onlineUsers, err := r.registry.Online(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("online listing failed")
		onlineUsers = nil
	}
	if onlineUsers == nil {
		onlineUsers = []int{}
	}
	r.hub.BroadcastAll(NewEnvelope(EventUserStatus, UserStatusOut{
		UserID:      userID,
		Online:      online,
		OnlineUsers: onlineUsers,
	}))
}

func (r *Router) sendError(c Conn, event, reason string) {
	if err := c.Send(NewEnvelope(EventError, ErrorOut{Event: event, Reason: reason})); err != nil {
		r.log.Debug().Err(err).Str("event", event).Msg("error send failed")
	}
}
