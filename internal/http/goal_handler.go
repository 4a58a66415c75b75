package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expense-api/internal/service"
)

type GoalHandler struct {
	logger   *zap.Logger
	goalServ *service.GoalService
}

func NewGoalHandler(logger *zap.Logger, goalServ *service.GoalService) *GoalHandler {
	return &GoalHandler{logger: logger, goalServ: goalServ}
}

type goalRequest struct {
	Name         string  `json:"name"`
	TargetAmount float64 `json:"target_amount"`
	TargetDate   *string `json:"target_date"`
}

func (r goalRequest) input() service.GoalInput {
	return service.GoalInput{Name: r.Name, TargetAmount: r.TargetAmount, TargetDate: r.TargetDate}
}

// List maneja GET /api/goals.
func (h *GoalHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	goals, err := h.goalServ.List(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, h.logger, err, "could not list goals")
		return
	}
	c.JSON(http.StatusOK, goals)
}

// Create maneja POST /api/goals.
func (h *GoalHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req goalRequest
	if !bindJSON(c, h.logger, &req, "create goal") {
		return
	}
	goal, err := h.goalServ.Create(c.Request.Context(), userID, req.input())
	if err != nil {
		writeServiceError(c, h.logger, err, "could not create goal")
		return
	}
	c.JSON(http.StatusCreated, goal)
}

// Update maneja PUT /api/goals/:id.
func (h *GoalHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req goalRequest
	if !bindJSON(c, h.logger, &req, "update goal") {
		return
	}
	goal, err := h.goalServ.Update(c.Request.Context(), userID, c.Param("id"), req.input())
	if err != nil {
		writeServiceError(c, h.logger, err, "could not update goal")
		return
	}
	c.JSON(http.StatusOK, goal)
}

// Delete maneja DELETE /api/goals/:id.
func (h *GoalHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.goalServ.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeServiceError(c, h.logger, err, "could not delete goal")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
