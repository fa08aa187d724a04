package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"kursor/services/execution/judge0"
	"kursor/services/execution/models"
	"kursor/services/execution/usecase"
	"kursor/shared/logger"
	"kursor/shared/middleware"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// ExecutionHandler handles HTTP requests for code execution
type ExecutionHandler struct {
	executionUsecase usecase.ExecutionUsecase
	production       bool
}

// NewExecutionHandler creates a new execution handler
func NewExecutionHandler(executionUsecase usecase.ExecutionUsecase, production bool) *ExecutionHandler {
	return &ExecutionHandler{
		executionUsecase: executionUsecase,
		production:       production,
	}
}

// Execute handles POST /execute
func (h *ExecutionHandler) Execute(c *gin.Context) {
	var req models.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.ErrorResponse(c, http.StatusBadRequest, "Missing required fields: code and language", err, h.production)
		return
	}

	submission, err := h.executionUsecase.Execute(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, "Code execution error", err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": requestid.Get(c),
		"language":   req.Language,
		"token":      submission.Token,
	}).Info("Code submitted")

	c.JSON(http.StatusOK, submission)
}

// Status handles GET /status/:token and GET /execute/:token
func (h *ExecutionHandler) Status(c *gin.Context) {
	result, err := h.executionUsecase.Status(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.fail(c, "Status check error", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Languages handles GET /languages
func (h *ExecutionHandler) Languages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"languages":   models.LanguageNames(),
		"languageMap": models.LanguageMap(),
	})
}

func (h *ExecutionHandler) fail(c *gin.Context, logMessage string, err error) {
	var unsupported *usecase.UnsupportedLanguageError
	var upstream *judge0.StatusError

	switch {
	case errors.Is(err, usecase.ErrMissingFields):
		middleware.ErrorResponse(c, http.StatusBadRequest, "Missing required fields: code and language", nil, h.production)
		return
	case errors.As(err, &unsupported):
		middleware.ErrorResponse(c, http.StatusBadRequest, unsupported.Error(), nil, h.production)
		return
	case errors.Is(err, usecase.ErrMissingAPIKey):
		middleware.ErrorResponse(c, http.StatusInternalServerError, "Server configuration error: Missing API key", nil, h.production)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": requestid.Get(c),
		"path":       c.Request.URL.Path,
		"error":      err.Error(),
	}).Error(logMessage)

	if errors.As(err, &upstream) {
		middleware.ErrorResponse(c, http.StatusInternalServerError,
			fmt.Sprintf("Code execution service error: %d", upstream.Code), errors.New(upstream.Body), h.production)
		return
	}
	middleware.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", err, h.production)
}
