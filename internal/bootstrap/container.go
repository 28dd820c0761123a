package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-canvas-be/internal/config"
	"ai-canvas-be/internal/controller"
	"ai-canvas-be/internal/handler"
	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/internal/pkg/mailer"
	"ai-canvas-be/internal/repository/implementation"
	"ai-canvas-be/internal/repository/memory"
	"ai-canvas-be/internal/repository/unitofwork"
	"ai-canvas-be/internal/service"
	"ai-canvas-be/internal/websocket"
	"ai-canvas-be/pkg/artifact/locker"
	"ai-canvas-be/pkg/artifact/orchestrator"
	"ai-canvas-be/pkg/embedding"
	"ai-canvas-be/pkg/llm/factory"

	pktNats "ai-canvas-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController       controller.IAuthController
	OAuthController      controller.IOAuthController
	UserController       controller.IUserController
	DocumentController   controller.IDocumentController
	ChatController       controller.IChatController
	SuggestionController controller.ISuggestionController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
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

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Generation Core
	artifactRepo := memory.NewArtifactRepository()
	snapshotSaver := service.NewSnapshotSaver(uowFactory)
	orch := orchestrator.New(llmProvider, snapshotSaver, locker.NewRegistry())
	orch.StreamTimeout = time.Duration(cfg.Ai.StreamTimeoutSeconds) * time.Second
	orch.Machines = artifactRepo

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Keys.EmbedTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.EmbedTopic,
		uowFactory,
		embeddingProvider,
	)

	authService := service.NewAuthService(uowFactory, emailService, natsPub)
	oauthService := service.NewOAuthService(uowFactory, sysLogger)
	userService := service.NewUserService(uowFactory)

	chatService := service.NewChatService(
		uowFactory,
		llmProvider,
		embeddingProvider,
		wsHub,
		sysLogger,
	)
	documentService := service.NewDocumentService(
		uowFactory,
		orch,
		artifactRepo,
		wsHub,
		publisherService,
		natsPub,
		chatService,
		sysLogger,
	)
	suggestionService := service.NewSuggestionService(
		uowFactory,
		llmProvider,
		wsHub,
		natsPub,
		sysLogger,
	)

	// 7. Notification System
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, natsSub, wsHub, wsLogger)

	if natsSub != nil {
		go notifService.Start()
	}

	streamHandler := handler.NewStreamHandler(notifService, wsHub, wsLogger)

	// 8. Controllers
	return &Container{
		AuthController:       controller.NewAuthController(authService),
		OAuthController:      controller.NewOAuthController(oauthService),
		UserController:       controller.NewUserController(userService),
		DocumentController:   controller.NewDocumentController(documentService),
		ChatController:       controller.NewChatController(chatService),
		SuggestionController: controller.NewSuggestionController(suggestionService),

		ConsumerService: consumerService,

		StreamHandler: streamHandler,
		WebSocketHub:  wsHub,
	}
}
