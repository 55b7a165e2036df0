package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tresoro/tresoro-backend/internal/config"
	"github.com/tresoro/tresoro-backend/internal/handler"
	"github.com/tresoro/tresoro-backend/internal/middleware"
	"github.com/tresoro/tresoro-backend/internal/repository/postgres"
	"github.com/tresoro/tresoro-backend/internal/repository/storage"
	"github.com/tresoro/tresoro-backend/internal/service"
	"github.com/tresoro/tresoro-backend/internal/websocket"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	budgetRepo := postgres.NewBudgetRepository(pool)
	budgetCategoryRepo := postgres.NewBudgetCategoryRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	transactionCategoryRepo := postgres.NewTransactionCategoryRepository(pool)

	// Receipt storage is optional; the API degrades gracefully without it
	var receiptStorage storage.ReceiptRepository
	if cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "" {
		s3Repo, err := storage.NewS3ReceiptRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize receipt storage")
		}
		receiptStorage = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Receipt storage enabled")
	} else {
		log.Warn().Msg("Receipt storage not configured, uploads disabled")
	}

	// WebSocket hub and event publisher
	hub := websocket.NewHub()
	notifier := websocket.NewNotifier(hub)

	// Initialize services
	budgetService := service.NewBudgetService(budgetRepo, notifier)
	budgetCategoryService := service.NewBudgetCategoryService(budgetCategoryRepo, budgetRepo)
	transactionService := service.NewTransactionService(transactionRepo, budgetRepo, budgetCategoryRepo, transactionCategoryRepo, notifier)
	transactionCategoryService := service.NewTransactionCategoryService(transactionCategoryRepo, transactionRepo)
	receiptService := service.NewReceiptService(receiptStorage, transactionRepo)

	// Background renewal sweep
	renewalWorker := service.NewRenewalWorker(budgetService, budgetRepo, notifier, log.Logger, service.RenewalWorkerConfig{
		Interval:     cfg.RenewalInterval,
		ExpiryWindow: cfg.RenewalWindowDays,
	})
	renewalWorker.Start(context.Background())
	defer renewalWorker.Stop()

	// Initialize auth middleware and rate limiter
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	// WebSocket JWT validator (token arrives as a query parameter)
	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket JWT validator")
	}

	// Initialize handlers
	budgetHandler := handler.NewBudgetHandler(budgetService)
	budgetCategoryHandler := handler.NewBudgetCategoryHandler(budgetCategoryService)
	transactionHandler := handler.NewTransactionHandler(transactionService)
	transactionCategoryHandler := handler.NewTransactionCategoryHandler(transactionCategoryService)
	receiptHandler := handler.NewReceiptHandler(receiptService)
	wsHandler := handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
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

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, budgetHandler, budgetCategoryHandler, transactionHandler, transactionCategoryHandler, receiptHandler, wsHandler)

	// Start server in goroutine
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
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
