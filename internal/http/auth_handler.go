package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expense-api/internal/domain"
	"expense-api/internal/service"
)

// AuthHandler atiende alta, login y cambio de contraseña.
type AuthHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	jwtServ  *service.JWTService
}

func NewAuthHandler(logger *zap.Logger, userServ *service.UserService, jwtServ *service.JWTService) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		userServ: userServ,
		jwtServ:  jwtServ,
	}
}

// Signup maneja POST /api/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Email         string  `json:"email"`
		Password      string  `json:"password"`
		DisplayName   string  `json:"display_name"`
		MonthlyIncome float64 `json:"monthly_income"`
		Currency      string  `json:"currency" binding:"omitempty,currency"`
		OAuthTicket   string  `json:"oauth_ticket"`
	}
	if !bindJSON(c, h.logger, &req, "signup") {
		return
	}

	user, err := h.userServ.Signup(c.Request.Context(), service.SignupInput{
		Email:         req.Email,
		Password:      req.Password,
		DisplayName:   req.DisplayName,
		MonthlyIncome: req.MonthlyIncome,
		Currency:      req.Currency,
		OAuthTicket:   req.OAuthTicket,
	})
	if err != nil {
		writeServiceError(c, h.logger, err, "could not create account")
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// Login maneja POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, h.logger, &req, "login") {
		return
	}

	user, err := h.userServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, h.logger, err, "could not login")
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

// ChangePassword maneja POST /api/auth/password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Current string `json:"current" binding:"required"`
		Next    string `json:"next" binding:"required"`
	}
	if !bindJSON(c, h.logger, &req, "change password") {
		return
	}

	if err := h.userServ.ChangePassword(c.Request.Context(), userID, req.Current, req.Next); err != nil {
		writeServiceError(c, h.logger, err, "could not change password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user domain.User) {
	token, err := h.jwtServ.Issue(user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(status, gin.H{"token": token})
}
