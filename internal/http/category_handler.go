package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expense-api/internal/service"
)

type CategoryHandler struct {
	logger       *zap.Logger
	categoryServ *service.CategoryService
}

func NewCategoryHandler(logger *zap.Logger, categoryServ *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{logger: logger, categoryServ: categoryServ}
}

// List maneja GET /api/categories.
func (h *CategoryHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	categories, err := h.categoryServ.List(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, h.logger, err, "could not list categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Create maneja POST /api/categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Name  string  `json:"name"`
		Color *string `json:"color"`
	}
	if !bindJSON(c, h.logger, &req, "create category") {
		return
	}

	category, err := h.categoryServ.Create(c.Request.Context(), userID, service.CategoryInput{Name: req.Name, Color: req.Color})
	if err != nil {
		writeServiceError(c, h.logger, err, "could not create category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

// Rename maneja PUT /api/categories/:id.
func (h *CategoryHandler) Rename(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !bindJSON(c, h.logger, &req, "rename category") {
		return
	}

	if err := h.categoryServ.Rename(c.Request.Context(), userID, c.Param("id"), req.Name); err != nil {
		writeServiceError(c, h.logger, err, "could not rename category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete maneja DELETE /api/categories/:id.
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.categoryServ.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeServiceError(c, h.logger, err, "could not delete category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
