package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kursor/services/execution/handlers"
	"kursor/services/execution/judge0"
	"kursor/services/execution/store"
	"kursor/services/execution/usecase"
	"kursor/shared/config"
	"kursor/shared/logger"
	"kursor/shared/middleware"
	"kursor/shared/redis"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(config.ExecutionPort)
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

	log.Info("Starting Execution service...")

	if cfg.Judge0.APIKey == "" {
		log.Warn("RAPIDAPI_KEY not set, execution requests will fail")
	}

	checks := map[string]middleware.HealthCheck{}

	// Completed results go to Redis when configured, otherwise stay in process
	var results store.ResultStore = store.NewMemoryStore(0, store.DefaultTTL)
	if cfg.Redis.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err := redis.ConnectRedis(ctx, redis.DefaultConfig(cfg.Redis.URL))
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		results = store.NewRedisStore(redisClient, store.DefaultTTL)
		checks["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx)
		}
		log.Info("Redis connected, caching execution results")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	client := judge0.NewClient(judge0.Config{
		URL:     cfg.Judge0.URL,
		Host:    cfg.Judge0.Host,
		APIKey:  cfg.Judge0.APIKey,
		Timeout: cfg.Judge0.Timeout,
	})
	executionUsecase := usecase.NewExecutionUsecase(client, results)

	router := gin.New()
	middleware.SetupCommonMiddleware(router, middleware.Options{
		Service:      handlers.ServiceName,
		AllowOrigins: cfg.CORS.AllowOrigins,
		Production:   cfg.IsProduction(),
	})

	handlers.SetupRoutes(router, handlers.Routes{
		Execution:   handlers.NewExecutionHandler(executionUsecase, cfg.IsProduction()),
		Port:        cfg.Server.Port,
		Environment: cfg.Environment,
		ResultStore: results.Name(),
		Checks:      checks,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Infof("Execution service starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Execution service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Execution service stopped")
}
