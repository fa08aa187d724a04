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

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	production  bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUsecase usecase.AuthUsecase, production bool) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		production:  production,
	}
}

// Signup handles account registration requests
func (h *AuthHandler) Signup(c *gin.Context) {
	requestID := requestid.Get(c)

	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Invalid request body for signup")
		middleware.ErrorResponse(c, http.StatusBadRequest, "All fields are required: name, email, and password", err, h.production)
		return
	}

	resp, err := h.authUsecase.Signup(&req)
	switch {
	case errors.Is(err, usecase.ErrMissingSignupFields):
		middleware.ErrorResponse(c, http.StatusBadRequest, "All fields are required: name, email, and password", nil, h.production)
		return
	case errors.Is(err, usecase.ErrUserExists):
		middleware.ErrorResponse(c, http.StatusConflict, "User already exists with this email", nil, h.production)
		return
	case err != nil:
		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"email":      req.Email,
			"error":      err.Error(),
		}).Error("Failed to register user")
		middleware.ErrorResponse(c, http.StatusInternalServerError, "Failed to create user", err, h.production)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": requestID,
		"user_id":    resp.User.ID,
		"email":      resp.User.Email,
	}).Info("User registered")

	c.JSON(http.StatusCreated, resp)
}

// Login handles password login requests
func (h *AuthHandler) Login(c *gin.Context) {
	requestID := requestid.Get(c)

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.ErrorResponse(c, http.StatusBadRequest, "Email and password are required", err, h.production)
		return
	}

	resp, err := h.authUsecase.Login(&req)
	switch {
	case errors.Is(err, usecase.ErrMissingCredentials):
		middleware.ErrorResponse(c, http.StatusBadRequest, "Email and password are required", nil, h.production)
		return
	case errors.Is(err, usecase.ErrInvalidCredentials):
		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"email":      req.Email,
		}).Warn("Login rejected")
		middleware.ErrorResponse(c, http.StatusUnauthorized, "Invalid email or password", nil, h.production)
		return
	case err != nil:
		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to authenticate user")
		middleware.ErrorResponse(c, http.StatusInternalServerError, "Failed to authenticate user", err, h.production)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": requestID,
		"user_id":    resp.User.ID,
	}).Info("User logged in")

	c.JSON(http.StatusOK, resp)
}

// Validate answers token checks from the API gateway
func (h *AuthHandler) Validate(c *gin.Context) {
	var req models.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token is required"})
		return
	}

	identity, err := h.authUsecase.Validate(req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"valid": false,
			"error": "Invalid or expired token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  identity,
	})
}

// ChangePassword handles password change requests of the caller
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	requestID := requestid.Get(c)

	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		middleware.ErrorResponse(c, http.StatusUnauthorized, "Access token required", nil, h.production)
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.ErrorResponse(c, http.StatusBadRequest, "Current password and new password are required", err, h.production)
		return
	}

	err = h.authUsecase.ChangePassword(userID, &req)
	switch {
	case errors.Is(err, usecase.ErrMissingPasswords):
		middleware.ErrorResponse(c, http.StatusBadRequest, "Current password and new password are required", nil, h.production)
		return
	case errors.Is(err, usecase.ErrPasswordTooShort):
		middleware.ErrorResponse(c, http.StatusBadRequest, "New password must be at least 6 characters long", nil, h.production)
		return
	case errors.Is(err, repository.ErrUserNotFound):
		middleware.ErrorResponse(c, http.StatusNotFound, "User not found", nil, h.production)
		return
	case errors.Is(err, usecase.ErrWrongPassword):
		middleware.ErrorResponse(c, http.StatusUnauthorized, "Current password is incorrect", nil, h.production)
		return
	case err != nil:
		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to change password")
		middleware.ErrorResponse(c, http.StatusInternalServerError, "Failed to change password", err, h.production)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": requestID,
		"user_id":    userID,
	}).Info("Password changed")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password updated successfully",
	})
}
