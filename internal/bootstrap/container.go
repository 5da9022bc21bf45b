package bootstrap

import (
	"context"
	"log"

	"ophiuchus-be/internal/config"
	"ophiuchus-be/internal/controller"
	"ophiuchus-be/internal/handler"
	"ophiuchus-be/internal/pkg/logger"
	"ophiuchus-be/internal/pkg/mailer"
	"ophiuchus-be/internal/repository/unitofwork"
	"ophiuchus-be/internal/service"
	"ophiuchus-be/internal/websocket"
	"ophiuchus-be/pkg/llm/factory"
	"ophiuchus-be/pkg/narrative"
	"ophiuchus-be/pkg/spotify"

	pktNats "ophiuchus-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController        controller.IAuthController
	QuestController       controller.IQuestController
	RoomController        controller.IRoomController
	LeaderboardController controller.ILeaderboardController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. External collaborators
	llmProvider, err := factory.NewProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM provider: %v", err)
	}
	log.Printf("[INFO] Using LLM provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	narrator := narrative.NewGenerator(llmProvider, cfg.Ai.LLMModel, cfg.Ai.FallbackModel)

	catalog := spotify.NewClient(cfg.Keys.SpotifyClientID, cfg.Keys.SpotifyClientSecret)

	// 3.5 Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS subscriber: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Keys.GameCompletedTopic, pubSub)
	leaderboardService := service.NewLeaderboardService(uowFactory, rdb, sysLogger)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.GameCompletedTopic,
		uowFactory,
		leaderboardService,
		emailService,
		sysLogger,
	)

	authService := service.NewAuthService(uowFactory, emailService, natsPub)
	sessionService := service.NewSessionService(uowFactory, catalog, narrator, natsPub, sysLogger)
	roomService := service.NewRoomService(uowFactory, catalog, narrator, sysLogger)
	revealService := service.NewRevealService(uowFactory, narrator, publisherService, natsPub, sysLogger)

	notifService := service.NewNotificationService(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}
	notifHandler := handler.NewNotificationHandler(wsHub, wsLogger)

	// 5. Controllers
	return &Container{
		AuthController:        controller.NewAuthController(authService),
		QuestController:       controller.NewQuestController(sessionService, revealService),
		RoomController:        controller.NewRoomController(roomService),
		LeaderboardController: controller.NewLeaderboardController(leaderboardService),

		ConsumerService: consumerService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}
