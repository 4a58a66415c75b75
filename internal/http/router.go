package http

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expense-api/internal/service"
)

// Handlers agrupa los handlers que expone el router.
type Handlers struct {
	Health     *HealthHandler
	Auth       *AuthHandler
	OAuth      *OAuthHandler
	Profile    *ProfileHandler
	Categories *CategoryHandler
	Expenses   *ExpenseHandler
	Budgets    *BudgetHandler
	Goals      *GoalHandler
	Dashboard  *DashboardHandler
}

// NewRouter configura el router de Gin con middlewares y rutas bajo /api.
func NewRouter(logger *zap.Logger, jwtSvc *service.JWTService, corsOrigins []string, h Handlers) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(corsOrigins))

	// El callback de OAuth responde HTML y el start redirige: quedan fuera del grupo JSON.
	google := r.Group("/api/auth/google")
	google.GET("/start", h.OAuth.Start)
	google.GET("/callback", h.OAuth.Callback)

	api := r.Group("/api", jsonContentTypeMiddleware())
	api.GET("/health", h.Health.Health)

	auth := api.Group("/auth")
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/login", h.Auth.Login)

	protected := api.Group("", JWTAuthMiddleware(logger, jwtSvc))
	protected.POST("/auth/password", h.Auth.ChangePassword)

	protected.GET("/profile", h.Profile.Get)
	protected.PUT("/profile", h.Profile.Update)

	protected.GET("/categories", h.Categories.List)
	protected.POST("/categories", h.Categories.Create)
	protected.PUT("/categories/:id", h.Categories.Rename)
	protected.DELETE("/categories/:id", h.Categories.Delete)

	protected.GET("/expenses", h.Expenses.List)
	protected.POST("/expenses", h.Expenses.Create)
	protected.PUT("/expenses/:id", h.Expenses.Update)
	protected.DELETE("/expenses/:id", h.Expenses.Delete)

	protected.GET("/budgets", h.Budgets.List)
	protected.POST("/budgets", h.Budgets.Upsert)
	protected.PUT("/budgets/:category_id", h.Budgets.UpsertByCategory)
	protected.DELETE("/budgets/:category_id", h.Budgets.Delete)

	protected.GET("/goals", h.Goals.List)
	protected.POST("/goals", h.Goals.Create)
	protected.PUT("/goals/:id", h.Goals.Update)
	protected.DELETE("/goals/:id", h.Goals.Delete)

	protected.GET("/dashboard", h.Dashboard.Summary)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// corsMiddleware habilita los origenes configurados. "*" habilita cualquiera.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch {
		case origin == "*":
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
		case strings.HasPrefix(origin, "http://"), strings.HasPrefix(origin, "https://"):
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}
	if cfg.AllowAllOrigins {
		cfg.AllowOrigins = nil
	}
	if !cfg.AllowAllOrigins && len(cfg.AllowOrigins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return cors.New(cfg)
}
