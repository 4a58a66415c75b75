package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"expense-api/internal/config"
	"expense-api/internal/db"
	"expense-api/internal/events"
	apihttp "expense-api/internal/http"
	"expense-api/internal/oauth"
	"expense-api/internal/repository"
	"expense-api/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		logger.Info("migrations applied")
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	categoryRepo := repository.NewPgCategoryRepository(pool)
	expenseRepo := repository.NewPgExpenseRepository(pool)
	budgetRepo := repository.NewPgBudgetRepository(pool)
	goalRepo := repository.NewPgGoalRepository(pool)

	oneTimeStore := service.NewMemoryOneTimeStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory oauth store", zap.Error(err))
		} else {
			oneTimeStore = service.NewRedisOneTimeStore(redisClient, "oauth:")
		}
		cancel()
	}

	publisher := events.NewDisabledPublisher()
	if cfg.RabbitMQURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsQueue, logger)
		if err != nil {
			logger.Warn("amqp publisher init failed, account events disabled", zap.Error(err))
		} else {
			publisher = amqpPublisher
		}
	}
	defer publisher.Close()

	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)
	tickets := service.NewSignupTicketStore(oneTimeStore, cfg.OAuthTicketTTL)
	states := service.NewOAuthStateStore(oneTimeStore, cfg.OAuthStateTTL)

	var provider service.IdentityProvider
	if cfg.GoogleEnabled() {
		provider = oauth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	} else {
		logger.Warn("google oauth not configured")
	}

	userSvc := service.NewUserService(logger, userRepo, categoryRepo, tickets, publisher, service.UserServiceOptions{
		BcryptCost:      cfg.BcryptCost,
		DefaultCurrency: cfg.DefaultCurrency,
	})
	oauthSvc := service.NewOAuthService(logger, provider, userRepo, states, tickets, jwtSvc, publisher)
	categorySvc := service.NewCategoryService(logger, categoryRepo)
	expenseSvc := service.NewExpenseService(logger, expenseRepo, categoryRepo)
	budgetSvc := service.NewBudgetService(logger, budgetRepo)
	goalSvc := service.NewGoalService(logger, goalRepo)
	dashboardSvc := service.NewDashboardService(logger, userRepo, expenseRepo, budgetRepo, goalRepo)

	corsOrigins := cfg.CORSOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{cfg.FrontendOrigin}
	}

	healthHandler := apihttp.NewHealthHandler(logger, func(ctx context.Context) error {
		return db.Ping(ctx, pool)
	})
	oauthHandler := apihttp.NewOAuthHandler(logger, oauthSvc, apihttp.OAuthHandlerOptions{
		FrontendOrigin: cfg.FrontendOrigin,
		CookieSecure:   cfg.OAuthCookieSecure,
		StateTTL:       cfg.OAuthStateTTL,
	})
	router := apihttp.NewRouter(logger, jwtSvc, corsOrigins, apihttp.Handlers{
		Health:     healthHandler,
		Auth:       apihttp.NewAuthHandler(logger, userSvc, jwtSvc),
		OAuth:      oauthHandler,
		Profile:    apihttp.NewProfileHandler(logger, userSvc),
		Categories: apihttp.NewCategoryHandler(logger, categorySvc),
		Expenses:   apihttp.NewExpenseHandler(logger, expenseSvc),
		Budgets:    apihttp.NewBudgetHandler(logger, budgetSvc),
		Goals:      apihttp.NewGoalHandler(logger, goalSvc),
		Dashboard:  apihttp.NewDashboardHandler(logger, dashboardSvc),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := runServer(ctx, server, logger, server.ListenAndServe); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// runServer atiende hasta que ctx se cancela y espera a que Shutdown drene
// los requests en curso antes de devolver.
func runServer(ctx context.Context, server *http.Server, logger *zap.Logger, listen func() error) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", zap.Error(err))
		}
	}()

	if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
