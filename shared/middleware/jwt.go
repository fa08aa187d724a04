package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"kursor/shared/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by the authentication middlewares
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextIdentity  = "identity"
)

// Identity assertion parties
const (
	AssertionIssuer   = "api-gateway"
	AssertionAudience = "snippet-service"
)

// ErrInvalidToken is returned for any token that fails validation
var ErrInvalidToken = errors.New("invalid or expired token")

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	TokenDuration time.Duration
	Issuer        string
}

// DefaultJWTConfig returns default JWT configuration
func DefaultJWTConfig(secret string) *JWTConfig {
	return &JWTConfig{
		Secret:        secret,
		TokenDuration: 7 * 24 * time.Hour,
		Issuer:        "kursor-user-service",
	}
}

// GenerateToken issues an access token for the given user
func GenerateToken(userID, email string, config *JWTConfig) (string, error) {
	now := time.Now()
	claims := &models.Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    config.Issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken validates and parses an access token
func ValidateToken(tokenString string, config *JWTConfig) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, hmacKey(config.Secret))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SignIdentityAssertion mints a short-lived assertion that the gateway has
// authenticated identity. The receiving service verifies it with the shared
// secret instead of trusting a bare user id.
func SignIdentityAssertion(identity models.Identity, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &models.AssertionClaims{
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			Issuer:    AssertionIssuer,
			Audience:  jwt.ClaimStrings{AssertionAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign identity assertion: %w", err)
	}
	return signed, nil
}

// VerifyIdentityAssertion checks an assertion minted by SignIdentityAssertion
func VerifyIdentityAssertion(tokenString, secret string) (*models.Identity, error) {
	claims := &models.AssertionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, hmacKey(secret),
		jwt.WithIssuer(AssertionIssuer),
		jwt.WithAudience(AssertionAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &models.Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

func hmacKey(secret string) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}
}

// BearerToken extracts the credential from an Authorization header value.
// ok is false when the header is empty.
func BearerToken(header string) (token string, ok bool) {
	if header == "" {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")), true
}

// JWTMiddleware authenticates requests carrying a user access token.
// A missing token is 401, an invalid one 403.
func JWTMiddleware(config *JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			return
		}

		claims, err := ValidateToken(token, config)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		SetIdentity(c, models.Identity{UserID: claims.UserID, Email: claims.Email})
		c.Next()
	}
}

// SetIdentity stores a resolved identity on the request context
func SetIdentity(c *gin.Context, identity models.Identity) {
	c.Set(ContextUserID, identity.UserID)
	c.Set(ContextUserEmail, identity.Email)
	c.Set(ContextIdentity, identity)
}

// GetIdentity returns the identity stored by SetIdentity
func GetIdentity(c *gin.Context) (models.Identity, bool) {
	v, exists := c.Get(ContextIdentity)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	identity, ok := GetIdentity(c)
	if !ok || identity.UserID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return identity.UserID, nil
}
