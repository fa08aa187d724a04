package handlers

import (
	"net/http"

	"kursor/shared/middleware"

	"github.com/gin-gonic/gin"
)

// ServiceName identifies the user service in health and info bodies
const ServiceName = "user-service"

var endpoints = []string{
	"GET /health",
	"POST /auth/signup",
	"POST /auth/login",
	"POST /auth/validate",
	"POST /auth/change-password",
	"GET /profile",
	"PUT /profile",
	"GET /users/:id",
	"GET /users",
	"GET /info",
}

// Routes bundles everything SetupRoutes mounts
type Routes struct {
	Auth        *AuthHandler
	Profile     *ProfileHandler
	Users       *UserHandler
	JWT         *middleware.JWTConfig
	Port        string
	Environment string
	Database    middleware.HealthCheck
}

// SetupRoutes configures all routes for the user service
func SetupRoutes(router *gin.Engine, r Routes) {
	router.GET("/health", middleware.HealthHandler(ServiceName, r.Port, map[string]middleware.HealthCheck{
		"database": r.Database,
	}))
	router.GET("/info", infoHandler(r.Environment))

	auth := router.Group("/auth")
	{
		auth.POST("/signup", r.Auth.Signup)
		auth.POST("/login", r.Auth.Login)
		auth.POST("/validate", r.Auth.Validate)
		auth.POST("/change-password", middleware.JWTMiddleware(r.JWT), r.Auth.ChangePassword)
	}

	profile := router.Group("/profile")
	profile.Use(middleware.JWTMiddleware(r.JWT))
	{
		profile.GET("", r.Profile.GetMyProfile)
		profile.PUT("", r.Profile.UpdateMyProfile)
	}

	router.GET("/users/:id", r.Users.GetUser)
	router.GET("/users", middleware.JWTMiddleware(r.JWT), r.Users.SearchUsers)

	router.NoRoute(middleware.NotFoundHandler(endpoints))
}

func infoHandler(environment string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": ServiceName,
			"version": "1.0.0",
			"features": []string{
				"authentication",
				"user-profiles",
				"jwt-tokens",
				"password-management",
			},
			"endpoints":   endpoints,
			"environment": environment,
			"database":    "gorm",
			"tokenExpiry": "7d",
		})
	}
}
