package handlers

import (
	"errors"
	"net/http"

	"kursor/services/communication/models"
	"kursor/services/communication/usecase"
	"kursor/shared/logger"
	"kursor/shared/middleware"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// CommunicationHandler handles HTTP requests for contact and notifications
type CommunicationHandler struct {
	communicationUsecase usecase.CommunicationUsecase
	production           bool
}

// NewCommunicationHandler creates a new communication handler
func NewCommunicationHandler(communicationUsecase usecase.CommunicationUsecase, production bool) *CommunicationHandler {
	return &CommunicationHandler{
		communicationUsecase: communicationUsecase,
		production:           production,
	}
}

// Contact handles POST /contact
func (h *CommunicationHandler) Contact(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.ErrorResponse(c, http.StatusBadRequest, "Missing required fields: name, email, and message are required.", err, h.production)
		return
	}

	result, err := h.communicationUsecase.Contact(c.Request.Context(), &req)
	switch {
	case errors.Is(err, usecase.ErrMissingContactFields):
		middleware.ErrorResponse(c, http.StatusBadRequest, "Missing required fields: name, email, and message are required.", nil, h.production)
		return
	case errors.Is(err, usecase.ErrInvalidEmail):
		middleware.ErrorResponse(c, http.StatusBadRequest, "Invalid email format", nil, h.production)
		return
	case errors.Is(err, usecase.ErrMissingAdminEmail):
		logger.WithField("request_id", requestid.Get(c)).Error("CONTACT_ADMIN_EMAIL is not configured")
		middleware.ErrorResponse(c, http.StatusInternalServerError, "Server email configuration is missing", nil, h.production)
		return
	case err != nil:
		logger.WithFields(map[string]interface{}{
			"request_id": requestid.Get(c),
			"error":      err.Error(),
		}).Error("Failed to send contact message")
		middleware.ErrorResponse(c, http.StatusInternalServerError, "Failed to send message", err, h.production)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": requestid.Get(c),
		"message_id": result.MessageID,
	}).Info("Contact message accepted")

	c.JSON(http.StatusOK, result)
}

// Notify handles POST /notify
func (h *CommunicationHandler) Notify(c *gin.Context) {
	var req models.NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.ErrorResponse(c, http.StatusBadRequest, "Missing required fields: to, subject, and message are required.", err, h.production)
		return
	}

	result, err := h.communicationUsecase.Notify(c.Request.Context(), &req)
	if errors.Is(err, usecase.ErrMissingNotifyFields) {
		middleware.ErrorResponse(c, http.StatusBadRequest, "Missing required fields: to, subject, and message are required.", nil, h.production)
		return
	}
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"request_id": requestid.Get(c),
			"recipients": len(req.To),
			"error":      err.Error(),
		}).Error("Failed to send notification")
		middleware.ErrorResponse(c, http.StatusInternalServerError, "Failed to send notification", err, h.production)
		return
	}

	c.JSON(http.StatusOK, result)
}
