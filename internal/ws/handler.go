package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"portal-service/internal/auth"
	"portal-service/internal/observability"
)

const (
	pingInterval = 15 * time.Second
	readLimit    = 1 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler authenticates and upgrades socket connections, then pumps inbound
// events into the delivery router.
type Handler struct {
	router *Router
	tokens *auth.TokenManager
	log    zerolog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(router *Router, tokens *auth.TokenManager, log zerolog.Logger) *Handler {
	return &Handler{router: router, tokens: tokens, log: log}
}

// Handle serves GET /ws. Authentication happens at handshake: a missing or
// invalid token refuses the connection before the upgrade.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("portal-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	userID, _, err := h.tokens.Validate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	wc := newWSConn(conn, newConnID(), userID)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")

	// Registration failing (shared registry unreachable) refuses the session;
	// an undiscoverable connection would never receive direct messages.
	if err := h.router.Connect(ctx, wc); err != nil {
		h.log.Error().Err(err).Int("user_id", userID).Msg("presence register failed")
		observability.DecWSActive()
		wc.Close()
		return
	}

	evt := h.log.Info().
		Int("user_id", userID).
		Str("conn_id", wc.ID()).
		Str("ip", observability.ClientIP(c.Request))
	if device := observability.DeviceID(c.Request); device != "" {
		evt = evt.Str("device_id", device)
	}
	evt.Msg("ws connected")

	// The request context is canceled once this handler returns, but the
	// session outlives it; keep the trace values, drop the cancelation.
	sessionCtx := context.WithoutCancel(ctx)
	go h.pingLoop(wc)
	go h.readLoop(sessionCtx, wc)
}

func (h *Handler) readLoop(ctx context.Context, wc *wsConn) {
	defer func() {
		h.router.Disconnect(ctx, wc)
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		wc.Close()
		h.log.Info().Int("user_id", wc.UserID()).Str("conn_id", wc.ID()).Msg("ws disconnected")
	}()

	wc.conn.SetReadLimit(readLimit)
	wc.conn.SetReadDeadline(time.Now().Add(2 * pingInterval))
	wc.conn.SetPongHandler(func(string) error {
		wc.conn.SetReadDeadline(time.Now().Add(2 * pingInterval))
		h.router.Refresh(ctx, wc)
		return nil
	})

	for {
		_, data, err := wc.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			continue
		}

		// Each event runs to completion before the next one on this
		// connection is read; other connections proceed concurrently.
		h.router.HandleEvent(ctx, wc, env)
	}
}

func (h *Handler) pingLoop(wc *wsConn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			wc.writeMu.Lock()
			err := wc.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			wc.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-wc.closed:
			return
		}
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		const prefix = "Bearer "
		if len(header) > len(prefix) && header[:len(prefix)] == prefix {
			return header[len(prefix):]
		}
		return ""
	}
	return c.Query("token")
}
