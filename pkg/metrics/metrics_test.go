package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordPurchase(t *testing.T) {
	before := testutil.ToFloat64(PurchasesTotal.WithLabelValues(OutcomeRejected, "ADULT_REQUIRED", serviceName))
	RecordPurchase(OutcomeRejected, "ADULT_REQUIRED")
	after := testutil.ToFloat64(PurchasesTotal.WithLabelValues(OutcomeRejected, "ADULT_REQUIRED", serviceName))
	assert.Equal(t, before+1, after)
}

func TestRecordSale(t *testing.T) {
	before := testutil.ToFloat64(TicketsSold.WithLabelValues("CHILD", serviceName))
	RecordSale("CHILD", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(TicketsSold.WithLabelValues("CHILD", serviceName)))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(PrometheusMiddleware())
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	engine.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{endpoint="/ping",method="GET",service="cinematickets",status="200"}`)
}
