package http

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expense-api/internal/service"
)

const (
	oauthStateCookie     = "oauth_state"
	oauthStateCookiePath = "/api/auth/google"
)

var oauthResultPage = template.Must(template.New("oauth_result").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Signing you in</title>
</head>
<body>
<p>You can close this window.</p>
<script>
(function () {
  var data = {{.Result}};
  try {
    if (window.opener) {
      window.opener.postMessage(data, {{.Origin}});
    }
  } catch (e) {}
  try { window.close(); } catch (e) {}
})();
</script>
</body>
</html>
`))

// OAuthHandlerOptions configura la cookie de state y el origen destino del resultado.
type OAuthHandlerOptions struct {
	FrontendOrigin string
	CookieSecure   bool
	StateTTL       time.Duration
}

// OAuthHandler maneja el ida y vuelta con el proveedor OAuth.
type OAuthHandler struct {
	logger    *zap.Logger
	oauthServ *service.OAuthService
	opts      OAuthHandlerOptions
}

func NewOAuthHandler(logger *zap.Logger, oauthServ *service.OAuthService, opts OAuthHandlerOptions) *OAuthHandler {
	if opts.StateTTL <= 0 {
		opts.StateTTL = 10 * time.Minute
	}
	return &OAuthHandler{
		logger:    logger,
		oauthServ: oauthServ,
		opts:      opts,
	}
}

// Start maneja GET /api/auth/google/start?flow=login|signup.
func (h *OAuthHandler) Start(c *gin.Context) {
	flow, err := service.ParseFlow(c.Query("flow"))
	if err != nil {
		h.logger.Warn("invalid oauth start request", zap.Error(err))
		writeServiceError(c, h.logger, err, "could not start sign-in")
		return
	}

	authURL, state, err := h.oauthServ.Start(c.Request.Context(), flow)
	if err != nil {
		if errors.Is(err, service.ErrOAuthNotConfigured) {
			c.JSON(http.StatusNotFound, gin.H{"error": "oauth_not_configured"})
			return
		}
		h.logger.Error("oauth start failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start sign-in"})
		return
	}

	h.setStateCookie(c, state, int(h.opts.StateTTL.Seconds()))
	c.Redirect(http.StatusFound, authURL)
}

// Callback maneja GET /api/auth/google/callback. Siempre responde la pagina HTML con el resultado.
func (h *OAuthHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	cookieState, _ := c.Cookie(oauthStateCookie)
	h.setStateCookie(c, "", -1)

	if upstreamErr := c.Query("error"); upstreamErr != "" {
		h.logger.Info("oauth callback rejected", zap.String("reason", "provider_error"), zap.String("provider_error", upstreamErr))
		h.render(c, h.oauthServ.ErrorResult())
		return
	}
	if state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(cookieState)) != 1 {
		h.logger.Info("oauth callback rejected", zap.String("reason", "state_cookie_mismatch"))
		h.render(c, h.oauthServ.ErrorResult())
		return
	}

	result, err := h.oauthServ.Complete(c.Request.Context(), c.Query("code"), state)
	if err != nil {
		h.logger.Warn("oauth callback failed", zap.Error(err))
		h.render(c, h.oauthServ.ErrorResult())
		return
	}
	h.render(c, result)
}

func (h *OAuthHandler) render(c *gin.Context, result service.OAuthResult) {
	var buf bytes.Buffer
	err := oauthResultPage.Execute(&buf, struct {
		Result service.OAuthResult
		Origin string
	}{
		Result: result,
		Origin: h.opts.FrontendOrigin,
	})
	if err != nil {
		h.logger.Error("render oauth result failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "sign-in failed")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Referrer-Policy", "no-referrer")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *OAuthHandler) setStateCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, value, maxAge, oauthStateCookiePath, "", h.opts.CookieSecure, true)
}
