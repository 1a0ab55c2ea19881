package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appdev/finance/finance-backend/internal/config"
	"github.com/appdev/finance/finance-backend/internal/cooldown"
	"github.com/appdev/finance/finance-backend/internal/handler"
	"github.com/appdev/finance/finance-backend/internal/mail"
	"github.com/appdev/finance/finance-backend/internal/middleware"
	"github.com/appdev/finance/finance-backend/internal/query"
	"github.com/appdev/finance/finance-backend/internal/repository/postgres"
	"github.com/appdev/finance/finance-backend/internal/repository/storage"
	"github.com/appdev/finance/finance-backend/internal/service"
	"github.com/appdev/finance/finance-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// @title Finance API
// @version 1.0
// @description Personal finance tracking: transactions, budgets, alerts and reports.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	if err := postgres.RunMigrations(pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	tokenRepo := postgres.NewVerificationTokenRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	fileRepo := postgres.NewTransactionFileRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	activityRepo := postgres.NewActivityLogRepository(pool)

	cooldowns, pruner, redisClient := newCooldownStore(ctx, cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	receiptStore := newReceiptStore(ctx, cfg)

	var mailer mail.Sender = mail.NewLogSender(log.Logger)
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPSender(cfg.SMTP)
		log.Info().Str("host", cfg.SMTP.Host).Msg("SMTP mail enabled")
	} else {
		log.Warn().Msg("SMTP_HOST not set, outgoing mail is only logged")
	}

	lookups, err := service.NewLookupCache(service.DefaultLookupTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create lookup cache")
	}
	defer lookups.Close()

	hub := websocket.NewHub()

	dispatcher := service.NewNotificationDispatcher(notificationRepo, hub, log.Logger, cfg.NotificationQueueSize)
	dispatcher.Start(ctx)

	// Initialize services
	evaluator := service.NewBudgetThresholdEvaluator(transactionRepo, budgetRepo, dispatcher, cooldowns, log.Logger,
		service.ThresholdEvaluatorConfig{
			Cooldown:       cfg.NotificationCooldown,
			CurrencySymbol: cfg.CurrencySymbol,
		})
	filters := query.NewTransactionFilterBuilder(log.Logger)
	activityService := service.NewActivityService(activityRepo)
	authService := service.NewAuthService(
		userRepo,
		tokenRepo,
		mailer,
		service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL),
		activityService,
		service.AuthConfig{AppBaseURL: cfg.AppBaseURL},
	)
	transactionService := service.NewTransactionService(
		transactionRepo,
		service.NewReceiptService(receiptStore, fileRepo),
		evaluator,
		activityService,
		hub,
		filters,
		lookups,
	)
	budgetService := service.NewBudgetService(budgetRepo, evaluator, activityService, hub)
	notificationService := service.NewNotificationService(notificationRepo, hub)
	reportService := service.NewReportService(transactionRepo, filters, time.Now)
	dashboardService := service.NewDashboardService(transactionRepo, budgetRepo, lookups, time.Now)

	maintenance := service.NewMaintenanceWorker(authService, pruner, log.Logger, service.MaintenanceWorkerConfig{
		CooldownWindow: cfg.NotificationCooldown,
	})
	maintenance.Start(ctx)

	authMiddleware, err := middleware.NewAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit)
	defer loginLimiter.Stop()

	handlers := handler.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Budget:       handler.NewBudgetHandler(budgetService),
		Transaction:  handler.NewTransactionHandler(transactionService),
		Notification: handler.NewNotificationHandler(notificationService),
		Report:       handler.NewReportHandler(reportService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		Activity:     handler.NewActivityHandler(activityService),
		WebSocket: handler.NewWebSocketHandler(hub,
			websocket.NewTokenValidator(authMiddleware.Validator()), notificationService, cfg.CORSOrigins),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestID())

	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	e.Use(zerologMiddleware())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.Metrics())

	e.GET("/health", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", handler.NewOpenAPIHandler(cfg.Port, cfg.APIBaseURL).ServeSpec)

	handler.RegisterRoutes(e, authMiddleware, loginLimiter, handlers)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.CloseAll()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	maintenance.Stop()
	dispatcher.Stop()
	stop()

	log.Info().Msg("Server exited")
}

// newCooldownStore returns the Redis-backed store when REDIS_URL is set and
// reachable, otherwise an in-process store along with its pruner.
func newCooldownStore(ctx context.Context, cfg *config.Config) (cooldown.Store, service.CooldownPruner, *redis.Client) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid REDIS_URL")
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis unreachable, falling back to in-memory cooldowns")
			client.Close()
		} else {
			log.Info().Str("addr", opts.Addr).Msg("Using Redis cooldown store")
			return cooldown.NewRedisStore(client), nil, client
		}
	}
	store := cooldown.NewMemoryStore()
	return store, store, nil
}

// newReceiptStore builds the configured receipt backend. A nil store disables receipts.
func newReceiptStore(ctx context.Context, cfg *config.Config) storage.ReceiptStore {
	switch cfg.StorageDriver {
	case config.StorageDriverS3:
		store, err := storage.NewS3ReceiptStore(ctx, cfg.S3)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize S3 receipt storage, receipts disabled")
			return nil
		}
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("S3 receipt storage enabled")
		return store
	case config.StorageDriverMinIO:
		store, err := storage.NewMinIOReceiptStore(ctx, cfg.MinIO)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize MinIO receipt storage, receipts disabled")
			return nil
		}
		log.Info().Str("bucket", cfg.MinIO.BucketName).Msg("MinIO receipt storage enabled")
		return store
	default:
		log.Warn().Msg("Receipt storage not configured, uploads are ignored")
		return nil
	}
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
