package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinematickets/api/routes"
	"cinematickets/internal/notifications"
	"cinematickets/internal/purchases"
	"cinematickets/internal/seats"
	"cinematickets/internal/shared/config"
	"cinematickets/internal/shared/database"
	"cinematickets/pkg/logger"
	"cinematickets/pkg/metrics"
	"cinematickets/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Smart environment loading
	envErr := godotenv.Load()

	// Load config
	cfg := config.Load()

	// Set Gin mode (debug/release)
	gin.SetMode(cfg.GinMode)

	appLogger := logger.NewWithWriter(os.Stdout, cfg.LogLevel)
	logger.SetDefault(appLogger)

	if envErr != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	appLogger.Info("Starting cinematickets",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("commit", GitCommit),
	)

	// Initialize DB
	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Seat inventory: create the venue counter once and load the reservation script
	reservations := seats.NewReservationService(db.Redis, cfg.Venue.Name)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		created, err := reservations.InitCapacity(ctx, cfg.Venue.SeatCapacity)
		if err != nil {
			appLogger.Error("Failed to initialise venue capacity", slog.Any("error", err))
		} else if created {
			appLogger.Info("Venue capacity initialised",
				slog.String("venue", cfg.Venue.Name),
				slog.Int("seats", cfg.Venue.SeatCapacity),
			)
		}
		if err := reservations.PreloadScripts(ctx); err != nil {
			// Scripts are loaded on first use
			appLogger.Error("Failed to preload Redis Lua scripts", slog.Any("error", err))
		}
		cancel()
	}

	// Initialize Rate Limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.Redis != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), &ratelimit.Config{
			Enabled:          cfg.RateLimit.Enabled,
			WindowDuration:   cfg.RateLimit.WindowDuration,
			DefaultRequests:  cfg.RateLimit.DefaultRequests,
			PurchaseRequests: cfg.RateLimit.PurchaseRequests,
			QuoteRequests:    cfg.RateLimit.QuoteRequests,
			HealthRequests:   cfg.RateLimit.HealthRequests,
			WhitelistedIPs:   cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("purchase_requests", cfg.RateLimit.PurchaseRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Receipts: producer for the purchase flow, consumer group for the receipt log
	var receipts purchases.ReceiptPublisher
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	if cfg.Kafka.Enabled {
		producerConfig := notifications.DefaultKafkaProducerConfig()
		producerConfig.Brokers = cfg.Kafka.Brokers
		producerConfig.ReceiptTopic = cfg.Kafka.ReceiptTopic

		producer, err := notifications.NewKafkaReceiptProducer(producerConfig)
		if err != nil {
			appLogger.Error("Failed to initialize receipt producer; purchases will not publish receipts", slog.Any("error", err))
		} else {
			receipts = producer
			defer func() {
				if err := producer.Close(); err != nil {
					appLogger.Error("Error closing receipt producer", slog.Any("error", err))
				}
			}()
		}

		consumerConfig := notifications.DefaultConsumerConfig()
		consumerConfig.Brokers = cfg.Kafka.Brokers
		consumerConfig.GroupID = cfg.Kafka.ConsumerGroupID
		consumerConfig.Topics = []string{cfg.Kafka.ReceiptTopic}

		consumer, err := notifications.NewReceiptConsumer(consumerConfig, nil)
		if err != nil {
			appLogger.Error("Failed to initialize receipt consumer", slog.Any("error", err))
		} else {
			consumer.Start(consumerCtx, cfg.Kafka.ConsumerWorkers)
			defer func() {
				appLogger.Info("Stopping receipt consumer...")
				consumerCancel()
				if err := consumer.Stop(); err != nil {
					appLogger.Error("Error stopping receipt consumer", slog.Any("error", err))
				}
			}()
		}
	} else {
		appLogger.Info("Kafka disabled: receipts will not be published")
	}

	// Setup router with rate limiter
	router := setupRouter(cfg, db, receipts, rateLimiter)

	// HTTP server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("purchases", fmt.Sprintf("http://localhost:%s%s/purchases", cfg.Port, cfg.GetAPIBasePath())),
			slog.String("version", cfg.APIVersion),
			slog.Bool("rate_limiting", rateLimiter != nil),
			slog.Bool("receipts", receipts != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupRouter(cfg *config.Config, db *database.DB, receipts purchases.ReceiptPublisher, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	// Client IPs for rate limiting come from forwarding headers only behind these proxies
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		appLogger.Error("Invalid TRUSTED_PROXIES, trusting no proxies", slog.Any("error", err))
		_ = engine.SetTrustedProxies(nil)
	}

	// Logs requests + recovers from panics
	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	if cfg.MetricsEnabled {
		engine.Use(metrics.PrometheusMiddleware())
	}

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Idempotent-Replayed"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	appRouter := routes.NewRouter(cfg, db, receipts)
	appRouter.SetupRoutes(engine)

	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.LogHTTPRequest(c, time.Since(start))
	}
}
