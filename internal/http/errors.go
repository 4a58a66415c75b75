package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expense-api/internal/service"
)

// writeServiceError traduce errores de servicio a respuestas HTTP.
// Los errores no reconocidos se loguean y responden 500 con fallback.
func writeServiceError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "details": verr.Fields})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
	case errors.Is(err, service.ErrEmailExists):
		c.JSON(http.StatusConflict, gin.H{"error": "email_exists"})
	case errors.Is(err, service.ErrCategoryExists):
		c.JSON(http.StatusConflict, gin.H{"error": "category_exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, service.ErrBadCurrentPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_current"})
	case errors.Is(err, service.ErrInvalidTicket):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_ticket"})
	default:
		logger.Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// bindJSON hace binding del body y responde 400 con detalle por campo si falla.
func bindJSON(c *gin.Context, logger *zap.Logger, dst any, what string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		logger.Warn("invalid "+what+" request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "details": bindingDetails(err)})
		return false
	}
	return true
}

// bindQuery es el equivalente de bindJSON para query strings.
func bindQuery(c *gin.Context, logger *zap.Logger, dst any, what string) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		logger.Warn("invalid "+what+" query", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "details": bindingDetails(err)})
		return false
	}
	return true
}

// currentUserID devuelve el id del usuario autenticado. El middleware JWT garantiza su presencia.
func currentUserID(c *gin.Context) (string, bool) {
	claims, ok := GetAuthClaims(c)
	if !ok || claims.UserID == "" {
		abortUnauthorized(c)
		return "", false
	}
	return claims.UserID, true
}
