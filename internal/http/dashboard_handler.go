package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expense-api/internal/service"
)

type DashboardHandler struct {
	logger        *zap.Logger
	dashboardServ *service.DashboardService
}

func NewDashboardHandler(logger *zap.Logger, dashboardServ *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{logger: logger, dashboardServ: dashboardServ}
}

// Summary maneja GET /api/dashboard?month=YYYY-MM.
func (h *DashboardHandler) Summary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var query struct {
		Month string `form:"month" binding:"omitempty,yearmonth"`
	}
	if !bindQuery(c, h.logger, &query, "dashboard") {
		return
	}

	summary, err := h.dashboardServ.Summary(c.Request.Context(), userID, query.Month)
	if err != nil {
		writeServiceError(c, h.logger, err, "could not build dashboard")
		return
	}
	c.JSON(http.StatusOK, summary)
}
