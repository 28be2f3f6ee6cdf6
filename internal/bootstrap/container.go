package bootstrap

import (
	"context"
	"log"

	"realtime-chat-be/internal/chat"
	"realtime-chat-be/internal/config"
	"realtime-chat-be/internal/controller"
	"realtime-chat-be/internal/handler"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/repository/implementation"
	"realtime-chat-be/internal/service"
	"realtime-chat-be/internal/websocket"

	pktNats "realtime-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	UserController controller.IUserController
	RoomController controller.IRoomController

	// WebSocket surface
	ChatHandler  *handler.ChatHandler
	WebSocketHub *websocket.Hub

	// Chat engine (exposed for main.go's cleanup loop)
	Registry   *chat.Registry
	Dispatcher *chat.Dispatcher

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. Presence falls back to the database", err)
			rdb = nil
		}
	}

	// 4. Repositories
	userRepo := implementation.NewUserRepository(db)
	roomRepo := implementation.NewRoomRepository(db)
	messageRepo := implementation.NewMessageRepository(db)
	receiptRepo := implementation.NewReceiptRepository(db)
	eventLogRepo := implementation.NewEventLogRepository(db)

	// 5. Services
	presenceService := service.NewPresenceService(rdb, userRepo, sysLogger)
	userService := service.NewUserService(userRepo, presenceService)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	messageService := service.NewMessageService(messageRepo, receiptRepo, userRepo, roomRepo)
	publisherService := service.NewPublisherService(cfg.Chat.EventExportTopic, pubSub, sysLogger)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Chat.EventExportTopic,
		eventLogRepo,
		natsPub,
		cfg.Chat.PersistAuditTrail,
		sysLogger,
	)

	// 6. Chat engine
	registry := chat.NewRegistry()
	ledger := chat.NewLedger(messageService, receiptRepo)

	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(wsLogger)
	go wsHub.Run()

	dispatcher := chat.NewDispatcher(
		registry,
		ledger,
		userService,
		service.NewTokenVerifier(cfg.JWT.Secret),
		messageService,
		wsHub,
		publisherService,
		sysLogger,
		cfg.Chat.StoreTimeout,
		cfg.Chat.HistoryLimit,
	)

	roomService := service.NewRoomService(roomRepo, registry, messageService)

	// 7. HTTP surface
	authController := controller.NewAuthController(authService)
	userController := controller.NewUserController(userService)
	roomController := controller.NewRoomController(roomService, messageService)
	chatHandler := handler.NewChatHandler(wsHub, dispatcher, registry, sysLogger)

	return &Container{
		AuthController:  authController,
		UserController:  userController,
		RoomController:  roomController,
		ChatHandler:     chatHandler,
		WebSocketHub:    wsHub,
		Registry:        registry,
		Dispatcher:      dispatcher,
		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}
