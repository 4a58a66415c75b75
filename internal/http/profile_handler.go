package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expense-api/internal/domain"
	"expense-api/internal/service"
)

type ProfileHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
}

func NewProfileHandler(logger *zap.Logger, userServ *service.UserService) *ProfileHandler {
	return &ProfileHandler{logger: logger, userServ: userServ}
}

type profileResponse struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	DisplayName   string  `json:"display_name"`
	MonthlyIncome float64 `json:"monthly_income"`
	Currency      string  `json:"currency"`
	AvatarURL     *string `json:"avatar_url"`
	AuthProvider  string  `json:"auth_provider,omitempty"`
	HasPassword   bool    `json:"has_password"`
}

// Get maneja GET /api/profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.userServ.GetProfile(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, h.logger, err, "could not load profile")
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(c, user))
}

// Update maneja PUT /api/profile.
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		DisplayName   string  `json:"display_name"`
		MonthlyIncome float64 `json:"monthly_income"`
		Currency      string  `json:"currency" binding:"omitempty,currency"`
	}
	if !bindJSON(c, h.logger, &req, "update profile") {
		return
	}

	user, err := h.userServ.UpdateProfile(c.Request.Context(), userID, service.ProfileInput{
		DisplayName:   req.DisplayName,
		MonthlyIncome: req.MonthlyIncome,
		Currency:      req.Currency,
	})
	if err != nil {
		writeServiceError(c, h.logger, err, "could not update profile")
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(c, user))
}

func newProfileResponse(c *gin.Context, user domain.User) profileResponse {
	return profileResponse{
		ID:            user.ID,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		MonthlyIncome: user.MonthlyIncome,
		Currency:      user.Currency,
		AvatarURL:     avatarURL(c, user.AvatarPath),
		AuthProvider:  user.AuthProvider,
		HasPassword:   user.HasPassword(),
	}
}

// avatarURL arma una URL absoluta con el host del request.
func avatarURL(c *gin.Context, path string) *string {
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return &path
	}
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	url := scheme + "://" + c.Request.Host + path
	return &url
}
