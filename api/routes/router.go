// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	_ "cinematickets/docs"
	"cinematickets/internal/payments"
	"cinematickets/internal/purchases"
	"cinematickets/internal/seats"
	"cinematickets/internal/shared/config"
	"cinematickets/internal/shared/constants"
	"cinematickets/internal/shared/database"
	"cinematickets/internal/shared/middleware"
	"cinematickets/pkg/cache"
	"cinematickets/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	seats    *seats.ReservationService
	receipts purchases.ReceiptPublisher
}

// NewRouter creates a new router instance. receipts may be nil when Kafka is disabled.
func NewRouter(cfg *config.Config, db *database.DB, receipts purchases.ReceiptPublisher) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		seats:    seats.NewReservationService(db.Redis, cfg.Venue.Name),
		receipts: receipts,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	if r.config.MetricsEnabled {
		engine.GET("/metrics", metrics.Handler())
	}
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupPurchaseRoutes(api)
		r.setupPaymentRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "cinematickets",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "cinematickets",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		status := gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"venue":       r.config.Venue.Name,
			"receipts":    r.receipts != nil,
			"timestamp":   time.Now(),
		}
		if available, err := r.seats.Available(c.Request.Context()); err == nil {
			status["available_seats"] = available
		}
		c.JSON(http.StatusOK, status)
	})
}

// setupPurchaseRoutes wires the purchase flow to the ledger, the seat counter and the receipt topic
func (r *Router) setupPurchaseRoutes(rg *gin.RouterGroup) {
	gateway := payments.NewLedgerGateway(payments.NewRepository(r.db.GetPostgreSQL()), r.config.Purchase.Currency)

	purchaseService := purchases.NewService(gateway, r.seats, r.receipts, purchases.Options{
		PaymentTimeout:     r.config.Purchase.PaymentTimeout,
		ReservationTimeout: r.config.Purchase.ReservationTimeout,
		Currency:           r.config.Purchase.Currency,
	})

	// Idempotency keys live in Redis so that retries hitting another instance are recognised
	var idempotencyCache cache.Service
	if r.db.Redis != nil {
		idempotencyCache = cache.NewService(r.db.Redis, constants.CACHE_PREFIX)
	} else {
		idempotencyCache = cache.NewMemoryService()
	}

	purchaseController := purchases.NewController(purchaseService, idempotencyCache, r.config.Purchase.IdempotencyTTL)

	purchases.SetupPurchaseRoutes(rg, purchaseController, middleware.OptionalAuthWithConfig(r.config))
}

// setupPaymentRoutes exposes the ledger as an account statement
func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	paymentController := payments.NewController(payments.NewRepository(r.db.GetPostgreSQL()))
	payments.SetupPaymentRoutes(rg, paymentController, middleware.OptionalAuthWithConfig(r.config))
}
