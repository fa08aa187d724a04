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

func identityRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", GatewayIdentityMiddleware(secret), func(c *gin.Context) {
		identity, _ := GetIdentity(c)
		c.JSON(http.StatusOK, identity)
	})
	return r
}

func callMe(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGatewayIdentityRawUserID(t *testing.T) {
	r := identityRouter("")

	w := callMe(r, "Bearer user-7")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":"user-7","email":""}`, w.Body.String())

	w = callMe(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

	w = callMe(r, "Bearer ")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGatewayIdentitySignedAssertion(t *testing.T) {
	r := identityRouter("internal")

	assertion, err := SignIdentityAssertion(models.Identity{UserID: "user-7", Email: "a@b.c"}, "internal", time.Minute)
	require.NoError(t, err)

	w := callMe(r, "Bearer "+assertion)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":"user-7","email":"a@b.c"}`, w.Body.String())

	w = callMe(r, "Bearer user-7")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "a bare user id is not trusted in signed mode")

	expired, err := SignIdentityAssertion(models.Identity{UserID: "user-7"}, "internal", -time.Minute)
	require.NoError(t, err)
	w = callMe(r, "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
