package middleware

import (
	"fmt"
	"net/http"
	"time"

	"kursor/shared/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// Options controls the common middleware chain
type Options struct {
	// Service is reported in error bodies and log lines
	Service string
	// AllowOrigins lists the browser origins permitted by CORS
	AllowOrigins []string
	// Production hides panic details from clients
	Production bool
}

// CORSMiddleware returns CORS middleware for the given origins
func CORSMiddleware(origins []string) gin.HandlerFunc {
	config := cors.DefaultConfig()
	if len(origins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}
	config.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"X-Request-ID",
		"X-Requested-With",
	}
	config.ExposeHeaders = []string{"X-Request-ID"}
	config.MaxAge = 12 * time.Hour

	return cors.New(config)
}

// RequestIDMiddleware generates and adds request ID to context
func RequestIDMiddleware() gin.HandlerFunc {
	return requestid.New()
}

// RecoveryMiddleware turns panics into a JSON 500. Details are only exposed
// outside production.
func RecoveryMiddleware(opts Options) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := requestid.Get(c)

		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"panic":      recovered,
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
		}).Error("Panic recovered")

		body := gin.H{
			"error":      "Internal server error",
			"request_id": requestID,
		}
		if opts.Service != "" {
			body["service"] = opts.Service
		}
		if !opts.Production {
			body["details"] = fmt.Sprint(recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}

// LoggerMiddlewareWithRequestID logs HTTP requests with request ID extraction
func LoggerMiddlewareWithRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		if raw != "" {
			path = path + "?" + raw
		}

		logFields := map[string]interface{}{
			"request_id":  requestid.Get(c),
			"method":      c.Request.Method,
			"path":        path,
			"status_code": c.Writer.Status(),
			"latency":     latency,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
			"body_size":   c.Writer.Size(),
		}

		// Add user ID if available (for authenticated requests)
		if userID, exists := c.Get(ContextUserID); exists {
			logFields["user_id"] = userID
		}

		statusCode := c.Writer.Status()
		switch {
		case statusCode >= 500:
			logger.WithFields(logFields).Error("HTTP Request - Server Error")
		case statusCode >= 400:
			logger.WithFields(logFields).Warn("HTTP Request - Client Error")
		default:
			logger.WithFields(logFields).Info("HTTP Request")
		}
	}
}

// SetupCommonMiddleware sets up all common middleware in the correct order
func SetupCommonMiddleware(r *gin.Engine, opts Options) {
	// Recovery should be first to catch any panics
	r.Use(RecoveryMiddleware(opts))
	r.Use(RequestIDMiddleware())
	r.Use(CORSMiddleware(opts.AllowOrigins))
	r.Use(LoggerMiddlewareWithRequestID())
}
