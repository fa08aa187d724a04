package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"kursor/services/snippet/models"
	"kursor/services/snippet/repository"
	"kursor/services/snippet/usecase"
	"kursor/shared/logger"
	"kursor/shared/middleware"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// SnippetHandler handles HTTP requests for saved snippets
type SnippetHandler struct {
	snippetUsecase usecase.SnippetUsecase
	production     bool
}

// NewSnippetHandler creates a new snippet handler
func NewSnippetHandler(snippetUsecase usecase.SnippetUsecase, production bool) *SnippetHandler {
	return &SnippetHandler{
		snippetUsecase: snippetUsecase,
		production:     production,
	}
}

// ListSnippets handles GET /snippets
func (h *SnippetHandler) ListSnippets(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	page, limit := pageParams(c)
	result, err := h.snippetUsecase.List(userID, models.ListFilter{Search: c.Query("search")}, page, limit)
	if err != nil {
		h.internalError(c, userID, "Failed to fetch snippets", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListByLanguage handles GET /snippets/language/:language
func (h *SnippetHandler) ListByLanguage(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	page, limit := pageParams(c)
	result, err := h.snippetUsecase.List(userID, models.ListFilter{Language: c.Param("language")}, page, limit)
	if err != nil {
		h.internalError(c, userID, "Failed to fetch snippets by language", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSnippet handles GET /snippets/:id
func (h *SnippetHandler) GetSnippet(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	snippet, err := h.snippetUsecase.Get(c.Param("id"), userID)
	if errors.Is(err, repository.ErrSnippetNotFound) {
		middleware.ErrorResponse(c, http.StatusNotFound, "Snippet not found", nil, h.production)
		return
	}
	if err != nil {
		h.internalError(c, userID, "Failed to fetch snippet", err)
		return
	}

	c.JSON(http.StatusOK, snippet)
}

// CreateSnippet handles POST /snippets
func (h *SnippetHandler) CreateSnippet(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	var req models.CreateSnippetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.ErrorResponse(c, http.StatusBadRequest, "Missing required fields: title, code, and language are required", err, h.production)
		return
	}

	snippet, err := h.snippetUsecase.Create(userID, &req)
	if errors.Is(err, usecase.ErrMissingFields) {
		middleware.ErrorResponse(c, http.StatusBadRequest, "Missing required fields: title, code, and language are required", nil, h.production)
		return
	}
	if err != nil {
		h.internalError(c, userID, "Failed to create snippet", err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": requestid.Get(c),
		"user_id":    userID,
		"snippet_id": snippet.ID,
	}).Info("Snippet created")

	c.JSON(http.StatusCreated, snippet)
}

// UpdateSnippet handles PUT /snippets/:id
func (h *SnippetHandler) UpdateSnippet(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	var req models.UpdateSnippetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err, h.production)
		return
	}

	snippet, err := h.snippetUsecase.Update(c.Param("id"), userID, &req)
	if errors.Is(err, repository.ErrSnippetNotFound) {
		middleware.ErrorResponse(c, http.StatusNotFound, "Snippet not found", nil, h.production)
		return
	}
	if err != nil {
		h.internalError(c, userID, "Failed to update snippet", err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": requestid.Get(c),
		"user_id":    userID,
		"snippet_id": snippet.ID,
	}).Info("Snippet updated")

	c.JSON(http.StatusOK, snippet)
}

// DeleteSnippet handles DELETE /snippets/:id
func (h *SnippetHandler) DeleteSnippet(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	err := h.snippetUsecase.Delete(c.Param("id"), userID)
	if errors.Is(err, repository.ErrSnippetNotFound) {
		middleware.ErrorResponse(c, http.StatusNotFound, "Snippet not found", nil, h.production)
		return
	}
	if err != nil {
		h.internalError(c, userID, "Failed to delete snippet", err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": requestid.Get(c),
		"user_id":    userID,
		"snippet_id": c.Param("id"),
	}).Info("Snippet deleted")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Snippet deleted successfully",
	})
}

// GetStats handles GET /stats
func (h *SnippetHandler) GetStats(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	stats, err := h.snippetUsecase.Stats(userID)
	if err != nil {
		h.internalError(c, userID, "Failed to fetch statistics", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *SnippetHandler) caller(c *gin.Context) (string, bool) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}

func (h *SnippetHandler) internalError(c *gin.Context, userID, message string, err error) {
	logger.WithFields(map[string]interface{}{
		"request_id": requestid.Get(c),
		"user_id":    userID,
		"path":       c.Request.URL.Path,
		"error":      err.Error(),
	}).Error(message)
	middleware.ErrorResponse(c, http.StatusInternalServerError, message, err, h.production)
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(usecase.DefaultPageSize)))
	return page, limit
}
