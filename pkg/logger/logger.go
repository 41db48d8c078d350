package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with purchase-domain helpers
type Logger struct {
	*slog.Logger
}

// New creates a logger writing to stdout, configured from LOG_LEVEL
func New() *Logger {
	return NewWithWriter(os.Stdout, os.Getenv("LOG_LEVEL"))
}

// NewWithWriter creates a logger writing to w at the given level
func NewWithWriter(w io.Writer, level string) *Logger {
	lvl := getLogLevel(level)

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	// Text in development, JSON everywhere else
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithAccountID adds account ID to logger context
func (l *Logger) WithAccountID(accountID int64) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.Int64("account_id", accountID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Purchase logging methods

// LogPurchaseCompleted logs a purchase that was charged and seated
func (l *Logger) LogPurchaseCompleted(ctx context.Context, accountID int64, totalTickets, totalPrice, totalSeats int) {
	l.Logger.InfoContext(ctx,
		"Purchase Completed",
		slog.Int64("account_id", accountID),
		slog.Int("total_tickets", totalTickets),
		slog.Int("total_price", totalPrice),
		slog.Int("total_seats", totalSeats),
	)
}

// LogPurchaseRejected logs a purchase that failed validation
func (l *Logger) LogPurchaseRejected(ctx context.Context, accountID int64, code string, err error) {
	l.Logger.WarnContext(ctx,
		"Purchase Rejected",
		slog.Int64("account_id", accountID),
		slog.String("code", code),
		slog.String("error", err.Error()),
	)
}

// LogCollaboratorFailure logs a failed call to the payment gateway or the seat reservation service
func (l *Logger) LogCollaboratorFailure(ctx context.Context, collaborator string, accountID int64, err error) {
	l.Logger.ErrorContext(ctx,
		"Collaborator Failure",
		slog.String("collaborator", collaborator),
		slog.Int64("account_id", accountID),
		slog.String("error", err.Error()),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
