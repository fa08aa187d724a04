package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// ErrorResponse writes a JSON error body. The underlying error is only
// included as "details" when production is false.
func ErrorResponse(c *gin.Context, status int, message string, err error, production bool) {
	body := gin.H{
		"error":      message,
		"request_id": requestid.Get(c),
	}
	if err != nil && !production {
		body["details"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

// HealthCheck reports an optional dependency check for the health endpoint.
// A nil error means the dependency is reachable.
type HealthCheck func() error

// HealthHandler returns the standard GET /health handler of a service.
// Each named check is reported as "connected" or "disconnected"; the
// service stays "healthy" only while every check passes.
func HealthHandler(service, port string, checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		body := gin.H{
			"service":   service,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      port,
		}
		for name, check := range checks {
			if err := check(); err != nil {
				body[name] = "disconnected"
				status = "unhealthy"
				continue
			}
			body[name] = "connected"
		}
		body["status"] = status

		code := http.StatusOK
		if status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, body)
	}
}

// NotFoundHandler answers unknown routes with the list of endpoints the
// service does expose.
func NotFoundHandler(endpoints []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":              "Endpoint not found",
			"requestedPath":      RequestedPath(c),
			"availableEndpoints": endpoints,
		})
	}
}

// RequestedPath returns the request target as the client sent it
func RequestedPath(c *gin.Context) string {
	if c.Request.RequestURI != "" {
		return c.Request.RequestURI
	}
	return c.Request.URL.RequestURI()
}
