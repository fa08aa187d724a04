package handlers

import (
	"net/http"

	"kursor/shared/middleware"

	"github.com/gin-gonic/gin"
)

// ServiceName identifies the communication service in health and info bodies
const ServiceName = "communication-service"

var endpoints = []string{
	"GET /health",
	"POST /contact",
	"POST /notify",
	"GET /info",
}

// Routes bundles everything SetupRoutes mounts
type Routes struct {
	Communication *CommunicationHandler
	Port          string
	Environment   string
	// HasMailKey reports whether a real mail provider key is configured
	HasMailKey bool
}

// SetupRoutes configures all routes for the communication service
func SetupRoutes(router *gin.Engine, r Routes) {
	router.GET("/health", middleware.HealthHandler(ServiceName, r.Port, nil))
	router.GET("/info", infoHandler(r))

	router.POST("/contact", r.Communication.Contact)
	router.POST("/notify", r.Communication.Notify)

	router.NoRoute(middleware.NotFoundHandler(endpoints))
}

func infoHandler(r Routes) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":      ServiceName,
			"version":      "1.0.0",
			"features":     []string{"contact-form", "notifications"},
			"endpoints":    endpoints,
			"environment":  r.Environment,
			"hasResendKey": r.HasMailKey,
		})
	}
}
