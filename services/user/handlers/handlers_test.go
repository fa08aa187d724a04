package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kursor/services/user/models"
	"kursor/services/user/repository"
	"kursor/services/user/usecase"
	"kursor/shared/database"
	"kursor/shared/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

type testEnv struct {
	router *gin.Engine
	db     *database.DB
}

// setupTestRouter creates a router backed by a fresh in-memory database
func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(&models.User{}))

	userRepo := repository.NewUserRepository(db)
	jwtConfig := middleware.DefaultJWTConfig(testSecret)
	authUsecase := usecase.NewAuthUsecase(userRepo, jwtConfig)
	profileUsecase := usecase.NewProfileUsecase(userRepo)

	router := gin.New()
	middleware.SetupCommonMiddleware(router, middleware.Options{Service: ServiceName})
	SetupRoutes(router, Routes{
		Auth:        NewAuthHandler(authUsecase, false),
		Profile:     NewProfileHandler(profileUsecase, false),
		Users:       NewUserHandler(profileUsecase, false),
		JWT:         jwtConfig,
		Port:        "3004",
		Environment: "test",
		Database:    db.Health,
	})
	return &testEnv{router: router, db: db}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

func (e *testEnv) signup(t *testing.T, name, email, password string) (string, string) {
	t.Helper()
	w, body := e.request(t, http.MethodPost, "/auth/signup", gin.H{"name": name, "email": email, "password": password}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := body["user"].(map[string]interface{})
	return user["id"].(string), body["token"].(string)
}

func TestSignup(t *testing.T) {
	env := setupTestRouter(t)

	w, body := env.request(t, http.MethodPost, "/auth/signup", gin.H{
		"name": "ada", "email": "ada@kursor.io", "password": "secret1",
	}, "")

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "ada", user["name"])
	assert.Equal(t, "ada@kursor.io", user["email"])
	assert.Equal(t, "A", user["image"])
	assert.NotEmpty(t, user["id"])

	var stored models.User
	require.NoError(t, env.db.Where("email = ?", "ada@kursor.io").First(&stored).Error)
	assert.NotEqual(t, "secret1", stored.Password, "password is hashed")
}

func TestSignupValidation(t *testing.T) {
	env := setupTestRouter(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{name: "missing name", body: gin.H{"email": "a@b.c", "password": "secret1"}},
		{name: "missing email", body: gin.H{"name": "a", "password": "secret1"}},
		{name: "missing password", body: gin.H{"name": "a", "email": "a@b.c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := env.request(t, http.MethodPost, "/auth/signup", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "All fields are required: name, email, and password", body["error"])
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := setupTestRouter(t)
	env.signup(t, "Ada", "ada@kursor.io", "secret1")

	w, body := env.request(t, http.MethodPost, "/auth/signup", gin.H{
		"name": "Ada", "email": "ada@kursor.io", "password": "secret2",
	}, "")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "User already exists with this email", body["error"])
}

func TestSignupClaimsPasswordlessAccount(t *testing.T) {
	env := setupTestRouter(t)
	oauth := &models.User{Email: "grace@kursor.io", Name: "Grace"}
	require.NoError(t, env.db.Create(oauth).Error)

	w, body := env.request(t, http.MethodPost, "/auth/signup", gin.H{
		"name": "grace", "email": "grace@kursor.io", "password": "secret1",
	}, "")

	require.Equal(t, http.StatusCreated, w.Code)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, oauth.ID, user["id"])
	assert.Equal(t, "G", user["image"])

	var count int64
	env.db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestLogin(t *testing.T) {
	env := setupTestRouter(t)
	id, _ := env.signup(t, "Ada", "ada@kursor.io", "secret1")

	w, body := env.request(t, http.MethodPost, "/auth/login", gin.H{"email": "ada@kursor.io", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, body["user"].(map[string]interface{})["id"])

	claims, err := middleware.ValidateToken(body["token"].(string), middleware.DefaultJWTConfig(testSecret))
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "ada@kursor.io", claims.Email)

	w, body = env.request(t, http.MethodPost, "/auth/login", gin.H{"email": "ada@kursor.io", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", body["error"])

	w, _ = env.request(t, http.MethodPost, "/auth/login", gin.H{"email": "nobody@kursor.io", "password": "secret1"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = env.request(t, http.MethodPost, "/auth/login", gin.H{"email": "ada@kursor.io"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email and password are required", body["error"])
}

func TestLoginReplacesOversizedImage(t *testing.T) {
	env := setupTestRouter(t)
	id, _ := env.signup(t, "Ada Lovelace", "ada@kursor.io", "secret1")
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", id).Update("image", strings.Repeat("x", 301)).Error)

	_, body := env.request(t, http.MethodPost, "/auth/login", gin.H{"email": "ada@kursor.io", "password": "secret1"}, "")

	image := body["user"].(map[string]interface{})["image"]
	assert.Equal(t, "https://ui-avatars.com/api/?format=png&name=Ada%20Lovelace", image)
}

func TestValidate(t *testing.T) {
	env := setupTestRouter(t)
	id, token := env.signup(t, "Ada", "ada@kursor.io", "secret1")

	w, body := env.request(t, http.MethodPost, "/auth/validate", gin.H{"token": token}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, map[string]interface{}{"userId": id, "email": "ada@kursor.io"}, body["user"])

	w, body = env.request(t, http.MethodPost, "/auth/validate", gin.H{"token": "garbage"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["valid"])

	w, body = env.request(t, http.MethodPost, "/auth/validate", gin.H{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Token is required", body["error"])
}

func TestChangePassword(t *testing.T) {
	env := setupTestRouter(t)
	_, token := env.signup(t, "Ada", "ada@kursor.io", "secret1")

	w, _ := env.request(t, http.MethodPost, "/auth/change-password", gin.H{"currentPassword": "secret1", "newPassword": "abc"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := env.request(t, http.MethodPost, "/auth/change-password", gin.H{"currentPassword": "nope", "newPassword": "secret2"}, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Current password is incorrect", body["error"])

	w, body = env.request(t, http.MethodPost, "/auth/change-password", gin.H{"currentPassword": "secret1", "newPassword": "secret2"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password updated successfully", body["message"])

	w, _ = env.request(t, http.MethodPost, "/auth/login", gin.H{"email": "ada@kursor.io", "password": "secret2"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = env.request(t, http.MethodPost, "/auth/change-password", gin.H{"currentPassword": "secret2", "newPassword": "secret3"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Access token required", body["error"])
}

func TestChangePasswordUnknownUser(t *testing.T) {
	env := setupTestRouter(t)
	token, err := middleware.GenerateToken("ghost", "ghost@kursor.io", middleware.DefaultJWTConfig(testSecret))
	require.NoError(t, err)

	w, _ := env.request(t, http.MethodPost, "/auth/change-password", gin.H{"currentPassword": "a", "newPassword": "secret2"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfile(t *testing.T) {
	env := setupTestRouter(t)
	id, token := env.signup(t, "Ada", "ada@kursor.io", "secret1")

	w, body := env.request(t, http.MethodGet, "/profile", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, body["id"])
	assert.Equal(t, 0.0, body["snippetCount"])

	require.NoError(t, env.db.Exec("CREATE TABLE saved_codes (id TEXT PRIMARY KEY, user_id TEXT)").Error)
	require.NoError(t, env.db.Exec("INSERT INTO saved_codes (id, user_id) VALUES ('s1', ?), ('s2', ?), ('s3', 'other')", id, id).Error)

	_, body = env.request(t, http.MethodGet, "/profile", nil, token)
	assert.Equal(t, 2.0, body["snippetCount"])

	w, body = env.request(t, http.MethodPut, "/profile", gin.H{"bio": "Analyst", "githubUrl": "https://github.com/ada"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Analyst", body["bio"])
	assert.Equal(t, "https://github.com/ada", body["githubUrl"])
	assert.Equal(t, "Ada", body["name"], "untouched fields are kept")
}

func TestProfileRequiresToken(t *testing.T) {
	env := setupTestRouter(t)

	w, body := env.request(t, http.MethodGet, "/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Access token required", body["error"])

	w, body = env.request(t, http.MethodGet, "/profile", nil, "forged")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Invalid or expired token", body["error"])
}

func TestGetUser(t *testing.T) {
	env := setupTestRouter(t)
	id, _ := env.signup(t, "Ada", "ada@kursor.io", "secret1")

	w, body := env.request(t, http.MethodGet, "/users/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada", body["name"])
	assert.NotContains(t, body, "password")

	w, _ = env.request(t, http.MethodGet, "/users/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchUsers(t *testing.T) {
	env := setupTestRouter(t)
	_, token := env.signup(t, "Ada", "ada@kursor.io", "secret1")
	env.signup(t, "Grace", "grace@navy.mil", "secret1")
	env.signup(t, "Alan", "alan@kursor.io", "secret1")

	w, body := env.request(t, http.MethodGet, "/users?search=KURSOR&limit=1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["users"], 1)
	assert.Equal(t, map[string]interface{}{"page": 1.0, "limit": 1.0, "total": 2.0, "pages": 2.0}, body["pagination"])

	w, _ = env.request(t, http.MethodGet, "/users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthInfoAndNotFound(t *testing.T) {
	env := setupTestRouter(t)

	w, body := env.request(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "user-service", body["service"])
	assert.Equal(t, "connected", body["database"])

	_, body = env.request(t, http.MethodGet, "/info", nil, "")
	assert.Equal(t, "user-service", body["service"])
	assert.Equal(t, "7d", body["tokenExpiry"])

	w, body = env.request(t, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "/nope", body["requestedPath"])
}
