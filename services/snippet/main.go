package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kursor/services/snippet/handlers"
	"kursor/services/snippet/models"
	"kursor/services/snippet/repository"
	"kursor/services/snippet/usecase"
	"kursor/shared/config"
	"kursor/shared/database"
	"kursor/shared/logger"
	"kursor/shared/middleware"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(config.SnippetPort)
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

	log.Info("Starting Snippet service...")

	if err := cfg.RequireDatabase(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.Connect(database.DefaultConfig(cfg.Database.URL))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(&models.SavedCode{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Info("Database connected and migrations completed")

	assertionSecret := cfg.Gateway.IdentityAssertionSecret
	if assertionSecret != "" {
		log.Info("Identity assertions required on snippet routes")
	} else {
		log.Warn("IDENTITY_ASSERTION_SECRET not set, trusting raw user ids from the gateway")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	snippetRepo := repository.NewSnippetRepository(db)
	snippetUsecase := usecase.NewSnippetUsecase(snippetRepo)

	router := gin.New()
	middleware.SetupCommonMiddleware(router, middleware.Options{
		Service:      handlers.ServiceName,
		AllowOrigins: cfg.CORS.AllowOrigins,
		Production:   cfg.IsProduction(),
	})

	handlers.SetupRoutes(router, handlers.Routes{
		Snippets:        handlers.NewSnippetHandler(snippetUsecase, cfg.IsProduction()),
		AssertionSecret: assertionSecret,
		Port:            cfg.Server.Port,
		Environment:     cfg.Environment,
		Database:        db.Health,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Infof("Snippet service starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Snippet service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Snippet service stopped")
}
