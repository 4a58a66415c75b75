package http

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expense-api/internal/service"
)

// optionalString distingue un campo ausente, un null explicito y un valor.
type optionalString struct {
	Set   bool
	Null  bool
	Value string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

type ExpenseHandler struct {
	logger      *zap.Logger
	expenseServ *service.ExpenseService
}

func NewExpenseHandler(logger *zap.Logger, expenseServ *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{logger: logger, expenseServ: expenseServ}
}

// List maneja GET /api/expenses?from=YYYY-MM-DD&to=YYYY-MM-DD&limit=N.
func (h *ExpenseHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var query struct {
		From  string `form:"from" binding:"required,isodate"`
		To    string `form:"to" binding:"required,isodate"`
		Limit int    `form:"limit" binding:"omitempty,min=1,max=500"`
	}
	if !bindQuery(c, h.logger, &query, "list expenses") {
		return
	}

	expenses, err := h.expenseServ.List(c.Request.Context(), userID, service.ExpenseQuery{
		From:  query.From,
		To:    query.To,
		Limit: query.Limit,
	})
	if err != nil {
		writeServiceError(c, h.logger, err, "could not list expenses")
		return
	}
	c.JSON(http.StatusOK, expenses)
}

// Create maneja POST /api/expenses.
func (h *ExpenseHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Amount     float64 `json:"amount"`
		IncurredOn string  `json:"incurred_on" binding:"required,isodate"`
		CategoryID *string `json:"category_id"`
		Note       string  `json:"note"`
	}
	if !bindJSON(c, h.logger, &req, "create expense") {
		return
	}

	expense, err := h.expenseServ.Create(c.Request.Context(), userID, service.ExpenseInput{
		Amount:     req.Amount,
		IncurredOn: req.IncurredOn,
		CategoryID: req.CategoryID,
		Note:       req.Note,
	})
	if err != nil {
		writeServiceError(c, h.logger, err, "could not create expense")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": expense.ID, "ok": true})
}

// Update maneja PUT /api/expenses/:id con actualizacion parcial.
func (h *ExpenseHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Amount     *float64       `json:"amount"`
		IncurredOn *string        `json:"incurred_on" binding:"omitempty,isodate"`
		CategoryID optionalString `json:"category_id"`
		Note       *string        `json:"note"`
	}
	if !bindJSON(c, h.logger, &req, "update expense") {
		return
	}

	patch := service.ExpensePatchInput{
		Amount:     req.Amount,
		IncurredOn: req.IncurredOn,
		Note:       req.Note,
	}
	switch {
	case req.CategoryID.Null, req.CategoryID.Set && req.CategoryID.Value == "":
		patch.ClearCategory = true
	case req.CategoryID.Set:
		patch.CategoryID = &req.CategoryID.Value
	}

	if err := h.expenseServ.Update(c.Request.Context(), userID, c.Param("id"), patch); err != nil {
		writeServiceError(c, h.logger, err, "could not update expense")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete maneja DELETE /api/expenses/:id.
func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.expenseServ.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeServiceError(c, h.logger, err, "could not delete expense")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
