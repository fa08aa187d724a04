package handlers

import (
	"net/http"

	"kursor/services/execution/models"
	"kursor/shared/middleware"

	"github.com/gin-gonic/gin"
)

// ServiceName identifies the execution service in health and info bodies
const ServiceName = "execution-service"

var endpoints = []string{
	"GET /health",
	"POST /execute",
	"GET /status/:token",
	"GET /execute/:token",
	"GET /languages",
	"GET /info",
}

// Routes bundles everything SetupRoutes mounts
type Routes struct {
	Execution   *ExecutionHandler
	Port        string
	Environment string
	// ResultStore names the backend holding completed results
	ResultStore string
	// Checks are reported on /health, e.g. the Redis connection
	Checks map[string]middleware.HealthCheck
}

// SetupRoutes configures all routes for the execution service
func SetupRoutes(router *gin.Engine, r Routes) {
	router.GET("/health", middleware.HealthHandler(ServiceName, r.Port, r.Checks))
	router.GET("/info", infoHandler(r))

	router.POST("/execute", r.Execution.Execute)
	router.GET("/execute/:token", r.Execution.Status)
	router.GET("/status/:token", r.Execution.Status)
	router.GET("/languages", r.Execution.Languages)

	router.NoRoute(middleware.NotFoundHandler(endpoints))
}

func infoHandler(r Routes) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     ServiceName,
			"version":     "1.0.0",
			"features":    []string{"code-execution", "judge0", "result-cache"},
			"endpoints":   endpoints,
			"languages":   models.LanguageNames(),
			"environment": r.Environment,
			"resultStore": r.ResultStore,
		})
	}
}
