package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"murmur/internal/auth"
	"murmur/internal/config"
	"murmur/internal/database"
	"murmur/internal/handlers"
	"murmur/internal/realtime"
	"murmur/internal/services"
	"murmur/pkg/logger"

	"github.com/go-chi/chi/v5"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresDB(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize real-time components
	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry, cfg.Realtime.DispatchBuffer)
	hub := realtime.NewHub(registry)
	go dispatcher.Run()
	go hub.Run()
	defer dispatcher.Shutdown()
	defer hub.Shutdown()

	// Initialize services
	authService := auth.NewService(db, cfg)
	messageService := services.NewMessageService(db, dispatcher)
	interactionService := services.NewInteractionService(db, dispatcher)

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(authService)
	messageHandlers := handlers.NewMessageHandlers(messageService)
	postHandlers := handlers.NewPostHandlers(db, interactionService)
	profileHandlers := handlers.NewProfileHandlers(interactionService)
	notificationHandlers := handlers.NewNotificationHandlers(interactionService)
	wsHandlers := handlers.NewWebSocketHandlers(authService, hub, cfg)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      setupRoutes(authHandlers, messageHandlers, postHandlers, profileHandlers, notificationHandlers, wsHandlers, authService),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	logger.Info("🚀 Server started on http://localhost%s", cfg.Server.Port)
	logger.Info("📡 WebSocket endpoint: ws://localhost%s/ws", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server shutting down...")
}

func setupRoutes(
	authHandlers *handlers.AuthHandlers,
	messageHandlers *handlers.MessageHandlers,
	postHandlers *handlers.PostHandlers,
	profileHandlers *handlers.ProfileHandlers,
	notificationHandlers *handlers.NotificationHandlers,
	wsHandlers *handlers.WebSocketHandlers,
	authService *auth.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(handlers.CORSMiddleware)

	// Auth routes
	r.Post("/api/auth/register", authHandlers.Register)
	r.Post("/api/auth/login", authHandlers.Login)

	// Authenticated REST routes
	r.Group(func(r chi.Router) {
		r.Use(handlers.RequireAuth(authService))

		r.Get("/api/messages", messageHandlers.Conversations)
		r.Get("/api/messages/{id}", messageHandlers.Messages)
		r.Post("/api/messages/send/{id}", messageHandlers.Send)
		r.Post("/api/messages/share", messageHandlers.Share)

		r.Post("/api/posts", postHandlers.Create)
		r.Put("/api/posts/like/{id}", postHandlers.Like)
		r.Put("/api/posts/unlike/{id}", postHandlers.Unlike)
		r.Post("/api/posts/comment/{id}", postHandlers.Comment)

		r.Put("/api/profile/follow/{id}", profileHandlers.Follow)
		r.Put("/api/profile/unfollow/{id}", profileHandlers.Unfollow)

		r.Get("/api/notifications", notificationHandlers.List)
		r.Put("/api/notifications/read", notificationHandlers.MarkRead)
	})

	// WebSocket route, authenticated via token query parameter
	r.Get("/ws", wsHandlers.HandleWebSocket)

	return r
}
