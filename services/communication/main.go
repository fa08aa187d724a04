package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kursor/services/communication/email"
	"kursor/services/communication/handlers"
	"kursor/services/communication/usecase"
	"kursor/shared/config"
	"kursor/shared/logger"
	"kursor/shared/middleware"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(config.CommunicationPort)
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

	log.Info("Starting Communication service...")

	mailEnabled := cfg.Mail.MailEnabled()

	var sender email.Sender
	if mailEnabled {
		smtpConfig := email.DefaultSMTPConfig()
		smtpConfig.Host = cfg.Mail.SMTPHost
		smtpConfig.Port = cfg.Mail.SMTPPort
		smtpConfig.Username = cfg.Mail.SMTPUsername
		smtpConfig.Password = cfg.Mail.APIKey
		smtpConfig.FromEmail = cfg.Mail.FromEmail
		smtpConfig.ImplicitTLS = cfg.Mail.SMTPPort == 465

		sender, err = email.NewSMTPSender(smtpConfig)
		if err != nil {
			log.Fatalf("Failed to initialize email sender: %v", err)
		}
		log.Infof("Email sender initialized for %s:%d", smtpConfig.Host, smtpConfig.Port)
	} else {
		log.Warn("RESEND_API_KEY not set, running in demo mode")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	communicationUsecase := usecase.NewCommunicationUsecase(sender, usecase.Config{
		ContactAdminEmail: cfg.Mail.ContactAdminEmail,
		Demo:              !mailEnabled,
	})

	router := gin.New()
	middleware.SetupCommonMiddleware(router, middleware.Options{
		Service:      handlers.ServiceName,
		AllowOrigins: cfg.CORS.AllowOrigins,
		Production:   cfg.IsProduction(),
	})

	handlers.SetupRoutes(router, handlers.Routes{
		Communication: handlers.NewCommunicationHandler(communicationUsecase, cfg.IsProduction()),
		Port:          cfg.Server.Port,
		Environment:   cfg.Environment,
		HasMailKey:    mailEnabled,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Infof("Communication service starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Communication service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Communication service stopped")
}
