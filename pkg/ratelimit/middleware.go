package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"cinematickets/internal/shared/utils/response"
	"cinematickets/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Middleware enforces the limit matching each route
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	log := logger.GetDefault()

	return func(c *gin.Context) {
		clientIP := getClientIP(c)
		limitType := getRateLimitType(c.Request.Method, c.FullPath())

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			log.ErrorContext(c.Request.Context(), "Rate limit check failed",
				slog.String("ip", clientIP), slog.Any("error", err))
			response.Error(c, http.StatusServiceUnavailable, "Rate limit check failed")
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		if !result.Allowed {
			log.LogRateLimitExceeded(c.Request.Context(), clientIP, c.FullPath())
			response.RespondJSON(c, response.StatusError, http.StatusTooManyRequests,
				"Rate limit exceeded", nil, map[string]interface{}{
					"limit":      result.Limit,
					"reset_time": result.ResetTime,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}

func getRateLimitType(method, path string) RateLimitType {
	switch {
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"),
		strings.HasPrefix(path, "/status"),
		strings.HasPrefix(path, "/metrics"):
		return RateLimitTypeHealth

	case strings.HasSuffix(path, "/purchases/quote"):
		return RateLimitTypeQuote

	case method == http.MethodPost && strings.HasSuffix(path, "/purchases"):
		return RateLimitTypePurchase

	default:
		return RateLimitTypeDefault
	}
}

// getClientIP honours X-Forwarded-For and X-Real-IP only when the peer is one of the
// engine's trusted proxies; otherwise it is the connection's remote address
func getClientIP(c *gin.Context) string {
	return c.ClientIP()
}
