package handlers

import (
	"net/http"

	"kursor/shared/middleware"

	"github.com/gin-gonic/gin"
)

// ServiceName identifies the snippet service in health and info bodies
const ServiceName = "snippet-service"

var endpoints = []string{
	"GET /health",
	"GET /snippets",
	"GET /snippets/:id",
	"POST /snippets",
	"PUT /snippets/:id",
	"DELETE /snippets/:id",
	"GET /snippets/language/:language",
	"GET /stats",
	"GET /info",
}

// Routes bundles everything SetupRoutes mounts
type Routes struct {
	Snippets *SnippetHandler
	// AssertionSecret switches identity resolution to signed assertions
	AssertionSecret string
	Port            string
	Environment     string
	Database        middleware.HealthCheck
}

// SetupRoutes configures all routes for the snippet service
func SetupRoutes(router *gin.Engine, r Routes) {
	router.GET("/health", middleware.HealthHandler(ServiceName, r.Port, map[string]middleware.HealthCheck{
		"database": r.Database,
	}))
	router.GET("/info", infoHandler(r.Environment))

	identity := middleware.GatewayIdentityMiddleware(r.AssertionSecret)

	snippets := router.Group("/snippets")
	snippets.Use(identity)
	{
		snippets.GET("", r.Snippets.ListSnippets)
		snippets.POST("", r.Snippets.CreateSnippet)
		snippets.GET("/language/:language", r.Snippets.ListByLanguage)
		snippets.GET("/:id", r.Snippets.GetSnippet)
		snippets.PUT("/:id", r.Snippets.UpdateSnippet)
		snippets.DELETE("/:id", r.Snippets.DeleteSnippet)
	}

	router.GET("/stats", identity, r.Snippets.GetStats)

	router.NoRoute(middleware.NotFoundHandler(endpoints))
}

func infoHandler(environment string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     ServiceName,
			"version":     "1.0.0",
			"features":    []string{"snippet-crud", "search", "pagination", "statistics"},
			"endpoints":   endpoints,
			"environment": environment,
			"database":    "gorm",
		})
	}
}
