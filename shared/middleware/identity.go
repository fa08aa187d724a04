package middleware

import (
	"net/http"

	"kursor/shared/models"

	"github.com/gin-gonic/gin"
)

// GatewayIdentityMiddleware resolves the identity the API gateway forwards
// in the Authorization header. With an assertion secret the bearer value
// must be a gateway-signed identity assertion; without one it is taken as
// the user id itself.
func GatewayIdentityMiddleware(assertionSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok || value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		identity := models.Identity{UserID: value}
		if assertionSecret != "" {
			verified, err := VerifyIdentityAssertion(value, assertionSecret)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			identity = *verified
		}

		SetIdentity(c, identity)
		c.Next()
	}
}
