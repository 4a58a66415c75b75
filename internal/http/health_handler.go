package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger verifica una dependencia externa (por ejemplo la base de datos).
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	logger *zap.Logger
	ping   Pinger
}

func NewHealthHandler(logger *zap.Logger, ping Pinger) *HealthHandler {
	return &HealthHandler{logger: logger, ping: ping}
}

// Health maneja GET /api/health.
func (h *HealthHandler) Health(c *gin.Context) {
	ts := time.Now().UTC().Format(time.RFC3339)
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			h.logger.Error("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "service": "api", "ts": ts})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "service": "api", "ts": ts})
}
