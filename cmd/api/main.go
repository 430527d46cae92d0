package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"movehub/internal/config"
	"movehub/internal/database"
	"movehub/internal/middleware"
	"movehub/internal/modules/auth"
	"movehub/internal/modules/chat"
	"movehub/internal/modules/notification"
	"movehub/internal/modules/quote"
	"movehub/internal/modules/realtime"
	jwtsvc "movehub/internal/pkg/jwt"
	"movehub/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	conversationRepo := repository.NewConversationRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	hub := realtime.NewHub()
	realtimeHandler := realtime.NewHandler(hub, j, cfg.WSAuthGrace)

	notificationService := notification.NewService(notificationRepo, hub)
	notificationHandler := notification.NewHandler(notificationService)

	chatService := chat.NewService(conversationRepo, notificationService, hub)
	chatHandler := chat.NewHandler(chatService)

	quoteService := quote.NewService(quoteRepo, notificationService, chatService)
	quoteHandler := quote.NewHandler(quoteService)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// ws авторизуется сам: токеном в запросе или authenticate-сообщением
		realtimeHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterRoutes(v1, protected)
			quoteHandler.RegisterRoutes(protected)
			notification.RegisterRoutes(protected, notificationHandler)
			chatHandler.RegisterRoutes(protected)
		}
	}

	log.Printf("listening addr=%s env=%s", cfg.Addr, cfg.AppEnv)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
