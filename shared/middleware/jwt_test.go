package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kursor/shared/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := DefaultJWTConfig("test-secret")

	token, err := GenerateToken("user-1", "ada@example.com", cfg)
	require.NoError(t, err)

	claims, err := ValidateToken(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)

	_, err = ValidateToken(token, DefaultJWTConfig("other-secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	cfg := &JWTConfig{Secret: "test-secret", TokenDuration: -time.Minute, Issuer: "test"}

	token, err := GenerateToken("user-1", "ada@example.com", cfg)
	require.NoError(t, err)

	_, err = ValidateToken(token, cfg)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIdentityAssertionRoundTrip(t *testing.T) {
	identity := models.Identity{UserID: "user-1", Email: "ada@example.com"}

	assertion, err := SignIdentityAssertion(identity, "internal", time.Minute)
	require.NoError(t, err)

	got, err := VerifyIdentityAssertion(assertion, "internal")
	require.NoError(t, err)
	assert.Equal(t, identity, *got)

	_, err = VerifyIdentityAssertion(assertion, "wrong")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = VerifyIdentityAssertion("user-1", "internal")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserTokenIsNotAnAssertion(t *testing.T) {
	token, err := GenerateToken("user-1", "ada@example.com", DefaultJWTConfig("shared"))
	require.NoError(t, err)

	_, err = VerifyIdentityAssertion(token, "shared")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	token, ok = BearerToken("abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = BearerToken("")
	assert.False(t, ok)
}

func TestJWTMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := DefaultJWTConfig("test-secret")

	router := gin.New()
	router.GET("/profile", JWTMiddleware(cfg), func(c *gin.Context) {
		id, err := GetUserIDFromContext(c)
		require.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{"userId": id})
	})

	valid, err := GenerateToken("user-1", "ada@example.com", cfg)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing token", header: "", status: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer nope", status: http.StatusForbidden},
		{name: "valid token", header: "Bearer " + valid, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
