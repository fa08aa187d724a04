package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kursor/services/user/handlers"
	"kursor/services/user/models"
	"kursor/services/user/repository"
	"kursor/services/user/usecase"
	"kursor/shared/config"
	"kursor/shared/database"
	"kursor/shared/logger"
	"kursor/shared/middleware"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(config.UserPort)
	if err != nil {
		logger.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Environment: cfg.Environment,
		Service:     handlers.ServiceName,
	})
	logger.SetDefault(log)

	log.Info("Starting User service...")

	if err := cfg.RequireDatabase(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.RequireJWT(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(database.DefaultConfig(cfg.Database.URL))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := db.Migrate(&models.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Info("Database connected and migrations completed")

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize dependencies
	userRepo := repository.NewUserRepository(db)
	jwtConfig := middleware.DefaultJWTConfig(cfg.JWT.Secret)

	authUsecase := usecase.NewAuthUsecase(userRepo, jwtConfig)
	profileUsecase := usecase.NewProfileUsecase(userRepo)

	// Create Gin router
	router := gin.New()

	// Setup common middleware
	middleware.SetupCommonMiddleware(router, middleware.Options{
		Service:      handlers.ServiceName,
		AllowOrigins: cfg.CORS.AllowOrigins,
		Production:   cfg.IsProduction(),
	})

	// Setup routes
	handlers.SetupRoutes(router, handlers.Routes{
		Auth:        handlers.NewAuthHandler(authUsecase, cfg.IsProduction()),
		Profile:     handlers.NewProfileHandler(profileUsecase, cfg.IsProduction()),
		Users:       handlers.NewUserHandler(profileUsecase, cfg.IsProduction()),
		JWT:         jwtConfig,
		Port:        cfg.Server.Port,
		Environment: cfg.Environment,
		Database:    db.Health,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Infof("User service starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down User service...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("User service stopped")
}
