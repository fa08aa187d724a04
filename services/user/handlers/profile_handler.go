package handlers

import (
	"errors"
	"net/http"

	"kursor/services/user/models"
	"kursor/services/user/repository"
	"kursor/services/user/usecase"
	"kursor/shared/logger"
	"kursor/shared/middleware"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// ProfileHandler handles HTTP requests for the caller's profile
type ProfileHandler struct {
	profileUsecase usecase.ProfileUsecase
	production     bool
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileUsecase usecase.ProfileUsecase, production bool) *ProfileHandler {
	return &ProfileHandler{
		profileUsecase: profileUsecase,
		production:     production,
	}
}

// GetMyProfile handles GET /profile
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	requestID := requestid.Get(c)

	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		middleware.ErrorResponse(c, http.StatusUnauthorized, "Access token required", nil, h.production)
		return
	}

	profile, err := h.profileUsecase.GetProfile(userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		middleware.ErrorResponse(c, http.StatusNotFound, "User not found", nil, h.production)
		return
	}
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to fetch profile")
		middleware.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch profile", err, h.production)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateMyProfile handles PUT /profile
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	requestID := requestid.Get(c)

	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		middleware.ErrorResponse(c, http.StatusUnauthorized, "Access token required", nil, h.production)
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err, h.production)
		return
	}

	profile, err := h.profileUsecase.UpdateProfile(userID, &req)
	if errors.Is(err, repository.ErrUserNotFound) {
		middleware.ErrorResponse(c, http.StatusNotFound, "User not found", nil, h.production)
		return
	}
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to update profile")
		middleware.ErrorResponse(c, http.StatusInternalServerError, "Failed to update profile", err, h.production)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": requestID,
		"user_id":    userID,
	}).Info("Profile updated")

	c.JSON(http.StatusOK, profile)
}
