package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/growlify/growlify-api/internal/config"
	"github.com/growlify/growlify-api/internal/events"
	"github.com/growlify/growlify-api/internal/handler"
	"github.com/growlify/growlify-api/internal/mailer"
	"github.com/growlify/growlify-api/internal/middleware"
	"github.com/growlify/growlify-api/internal/repository/postgres"
	"github.com/growlify/growlify-api/internal/repository/storage"
	"github.com/growlify/growlify-api/internal/security"
	"github.com/growlify/growlify-api/internal/service"
	"github.com/growlify/growlify-api/internal/websocket"
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

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	// Connect to database
	pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	savedRepo := postgres.NewSavedCalculationRepository(pool)
	resetTokenRepo := postgres.NewResetTokenRepository(pool)

	sessions, err := security.NewSessionManager(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create session manager")
	}

	// Real-time events go to connected sockets and, when configured, the broker
	hub := websocket.NewHub()
	publisher := websocket.MultiPublisher{hub}
	var broker *events.AMQPPublisher
	if cfg.AMQP.Enabled() {
		broker, err = events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to event broker")
		}
		publisher = append(publisher, broker)
		log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("Publishing events to broker")
	}

	// Forgot password attempts are shared across instances when Redis is set
	var attempts service.AttemptLimiter = middleware.NewMemoryWindowLimiter(middleware.ForgotPasswordLimit, middleware.ForgotPasswordWindow)
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		if err := redisClient.Ping().Err(); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		attempts = middleware.NewRedisWindowLimiter(redisClient, "growlify:forgot:", middleware.ForgotPasswordLimit, middleware.ForgotPasswordWindow)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Using redis for forgot password throttling")
	}

	var mail mailer.Mailer = mailer.NoOpMailer{}
	if cfg.SMTP.Enabled() {
		mail = mailer.NewSMTPMailer(cfg.SMTP)
	} else {
		log.Warn().Msg("SMTP not configured, reset emails are not sent")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, resetTokenRepo, sessions, mail, attempts, cfg.AppURL)
	categoryService := service.NewCategoryService(categoryRepo)
	categoryService.SetEventPublisher(publisher)
	transactionService := service.NewTransactionService(transactionRepo, categoryRepo)
	transactionService.SetEventPublisher(publisher)
	reportService := service.NewReportService(transactionRepo, categoryRepo, cfg.ReportLocation())
	calculatorService := service.NewCalculatorService(savedRepo)
	calculatorService.SetEventPublisher(publisher)

	if cfg.S3.Enabled() {
		exportStore, err := storage.NewS3ExportStore(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create export store")
		}
		reportService.SetExportStore(exportStore)
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Export archiving enabled")
	}

	purgeWorker := service.NewResetTokenPurgeWorker(resetTokenRepo, log.Logger, service.DefaultResetTokenPurgeConfig())
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	purgeWorker.Start(workerCtx)

	rateLimiter := middleware.NewRateLimiter()
	routeOptions := handler.RouteOptions{
		Protected: []echo.MiddlewareFunc{middleware.RateLimitMiddleware(rateLimiter)},
	}
	if cfg.RequireSubscription {
		routeOptions.Calculator = []echo.MiddlewareFunc{middleware.RequireActiveSubscription(userRepo)}
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
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

	handler.RegisterRoutes(e, middleware.NewAuthMiddleware(sessions, cfg.CookieName), handler.Handlers{
		Health:      handler.NewHealthHandler(),
		Auth:        handler.NewAuthHandler(authService, cfg.CookieName, cfg.IsProduction()),
		Category:    handler.NewCategoryHandler(categoryService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Report:      handler.NewReportHandler(reportService),
		Calculator:  handler.NewCalculatorHandler(calculatorService),
		WebSocket:   handler.NewWebSocketHandler(hub, sessions, cfg.CORSOrigins),
	}, routeOptions)

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

	hub.CloseAll()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	purgeWorker.Stop()
	rateLimiter.Stop()
	if broker != nil {
		if err := broker.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close event broker")
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
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

			event := log.Info()
			if res.Status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
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
