package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"portal-service/internal/auth"
	"portal-service/internal/config"
	"portal-service/internal/db"
	"portal-service/internal/handlers"
	"portal-service/internal/logging"
	"portal-service/internal/middleware"
	"portal-service/internal/observability"
	"portal-service/internal/presence"
	"portal-service/internal/rabbitmq"
	"portal-service/internal/repositories"
	"portal-service/internal/telemetry"
	"portal-service/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logging.New(cfg.LogLevel)

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}

	ctx := context.Background()
	shutdownTracing, err := telemetry.InitTracing(ctx, "portal-service", cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init tracing")
	}
	defer shutdownTracing(ctx)

	var registry presence.Registry
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		registry = presence.NewRedisRegistry(client, time.Duration(cfg.PresenceTTLSec)*time.Second)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis presence registry")
	} else {
		registry = presence.NewMemoryRegistry()
		log.Info().Msg("using in-memory presence registry")
	}

	if cfg.AMQPURL != "" {
		eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Warn().Err(err).Msg("event publishing disabled")
		} else {
			observability.SetPublisher(eventPublisher)
			defer eventPublisher.Close()
		}
	}

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
	defer auditPublisher.Close()
	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, "audit.portal", "portal-service", cfg.Environment, log)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer)

	roomRepo := repositories.NewRoomRepo(database)
	roomMsgRepo := repositories.NewRoomMessageRepo(database)
	directMsgRepo := repositories.NewDirectMessageRepo(database)
	notifRepo := repositories.NewNotificationRepo(database)
	creditRepo := repositories.NewCreditRepo(database)
	userRepo := repositories.NewUserRepo(database)

	hub := ws.NewHub()
	router := ws.NewRouter(hub, registry, roomRepo, roomMsgRepo, directMsgRepo, notifRepo, cfg.HistoryPageSize, log)
	wsHandler := ws.NewHandler(router, tokens, log)

	messageHandler := handlers.NewMessageHandler(directMsgRepo, userRepo, cfg.HistoryPageSize)
	roomHandler := handlers.NewRoomHandler(roomRepo, roomMsgRepo, userRepo, cfg.HistoryPageSize, auditEmitter)
	notificationHandler := handlers.NewNotificationHandler(notifRepo)
	creditHandler := handlers.NewCreditHandler(creditRepo, auditEmitter)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware("portal-service"))
	engine.Use(observability.HTTPMetricsMiddleware())

	engine.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.AuthMiddleware(tokens)
	api := engine.Group("/api", authMiddleware)

	api.GET("/messages/direct/:user_id", messageHandler.GetConversation)
	api.GET("/messages/unread", messageHandler.GetUnreadCount)

	api.GET("/rooms", roomHandler.ListRooms)
	api.POST("/rooms", middleware.RequireAdmin(), roomHandler.CreateRoom)
	api.POST("/rooms/:room_id/members", middleware.RequireAdmin(), roomHandler.AddMember)
	api.GET("/rooms/:room_id/messages", roomHandler.GetRoomMessages)

	api.GET("/notifications", notificationHandler.ListNotifications)
	api.POST("/notifications/seen", notificationHandler.MarkSeen)

	api.GET("/tools", creditHandler.ListTools)
	api.GET("/credits/balance", creditHandler.GetBalance)
	api.POST("/credits/purchase", creditHandler.Purchase)
	api.POST("/tools/:tool_id/session", creditHandler.StartSession)
	api.DELETE("/tools/session", creditHandler.StopSession)
	api.GET("/tools/session", creditHandler.GetActiveSession)

	engine.GET("/ws", wsHandler.Handle)

	handlers.RegisterDebugRoutes(engine, auditEmitter, cfg.DebugRoutes)

	log.Info().Str("port", cfg.Port).Msg("portal service listening")
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
