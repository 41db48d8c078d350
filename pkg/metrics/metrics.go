package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "cinematickets"

// Purchase outcomes
const (
	OutcomeCompleted         = "completed"
	OutcomeRejected          = "rejected"
	OutcomePaymentFailed     = "payment_failed"
	OutcomeReservationFailed = "reservation_failed"
)

var (
	// HTTP request counter
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status", "service"},
	)

	// HTTP request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "service"},
	)

	// Purchases by outcome; rejected purchases are labelled with the rule that failed
	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_purchases_total",
			Help: "Total number of ticket purchase attempts",
		},
		[]string{"outcome", "reason", "service"},
	)

	// Tickets sold by category
	TicketsSold = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_sold_total",
			Help: "Total number of tickets sold",
		},
		[]string{"category", "service"},
	)

	RevenueTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name:        "ticket_revenue_total",
			Help:        "Total amount charged for tickets",
			ConstLabels: prometheus.Labels{"service": serviceName},
		},
	)
)

// RecordPurchase counts one purchase attempt
func RecordPurchase(outcome, reason string) {
	PurchasesTotal.WithLabelValues(outcome, reason, serviceName).Inc()
}

// RecordSale counts tickets of one category
func RecordSale(category string, quantity int) {
	TicketsSold.WithLabelValues(category, serviceName).Add(float64(quantity))
}

// RecordRevenue adds a settled charge
func RecordRevenue(amount int) {
	RevenueTotal.Add(float64(amount))
}

// PrometheusMiddleware records HTTP metrics
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestsTotal.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
			serviceName,
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
			serviceName,
		).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
