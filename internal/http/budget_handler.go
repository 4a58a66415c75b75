package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expense-api/internal/service"
)

type BudgetHandler struct {
	logger     *zap.Logger
	budgetServ *service.BudgetService
}

func NewBudgetHandler(logger *zap.Logger, budgetServ *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{logger: logger, budgetServ: budgetServ}
}

// List maneja GET /api/budgets.
func (h *BudgetHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	budgets, err := h.budgetServ.List(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, h.logger, err, "could not list budgets")
		return
	}
	c.JSON(http.StatusOK, budgets)
}

// Upsert maneja POST /api/budgets con category_id en el body.
func (h *BudgetHandler) Upsert(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		CategoryID string  `json:"category_id" binding:"required"`
		Amount     float64 `json:"amount" binding:"gte=0"`
	}
	if !bindJSON(c, h.logger, &req, "upsert budget") {
		return
	}
	h.upsert(c, userID, req.CategoryID, req.Amount)
}

// UpsertByCategory maneja PUT /api/budgets/:category_id.
func (h *BudgetHandler) UpsertByCategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Amount float64 `json:"amount" binding:"gte=0"`
	}
	if !bindJSON(c, h.logger, &req, "upsert budget") {
		return
	}
	h.upsert(c, userID, c.Param("category_id"), req.Amount)
}

func (h *BudgetHandler) upsert(c *gin.Context, userID, categoryID string, amount float64) {
	if err := h.budgetServ.Upsert(c.Request.Context(), userID, categoryID, amount); err != nil {
		writeServiceError(c, h.logger, err, "could not save budget")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete maneja DELETE /api/budgets/:category_id. Es idempotente.
func (h *BudgetHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	deleted, err := h.budgetServ.Delete(c.Request.Context(), userID, c.Param("category_id"))
	if err != nil {
		writeServiceError(c, h.logger, err, "could not delete budget")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
}
