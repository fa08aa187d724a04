package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"kursor/services/user/repository"
	"kursor/services/user/usecase"
	"kursor/shared/logger"
	"kursor/shared/middleware"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// UserHandler handles HTTP requests for user lookups
type UserHandler struct {
	profileUsecase usecase.ProfileUsecase
	production     bool
}

// NewUserHandler creates a new user handler
func NewUserHandler(profileUsecase usecase.ProfileUsecase, production bool) *UserHandler {
	return &UserHandler{
		profileUsecase: profileUsecase,
		production:     production,
	}
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.profileUsecase.GetUser(c.Param("id"))
	if errors.Is(err, repository.ErrUserNotFound) {
		middleware.ErrorResponse(c, http.StatusNotFound, "User not found", nil, h.production)
		return
	}
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"request_id": requestid.Get(c),
			"user_id":    c.Param("id"),
			"error":      err.Error(),
		}).Error("Failed to fetch user")
		middleware.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch user", err, h.production)
		return
	}

	c.JSON(http.StatusOK, user)
}

// SearchUsers handles GET /users
func (h *UserHandler) SearchUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(usecase.DefaultPageSize)))

	result, err := h.profileUsecase.SearchUsers(c.Query("search"), page, limit)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"request_id": requestid.Get(c),
			"error":      err.Error(),
		}).Error("Failed to search users")
		middleware.ErrorResponse(c, http.StatusInternalServerError, "Failed to search users", err, h.production)
		return
	}

	c.JSON(http.StatusOK, result)
}
