package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cinematickets/internal/shared/config"
	"cinematickets/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// ContextAccountID is the gin context key holding the authenticated account id (int64)
const ContextAccountID = "account_id"

var errInvalidToken = errors.New("invalid or expired token")

// IssueAccessToken signs an access token for accountID
func IssueAccessToken(secret string, accountID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"account_id": accountID,
		"type":       "access",
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// parseAccessToken validates a bearer token and returns its account id
func parseAccessToken(secret, tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errInvalidToken
	}
	if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
		return 0, errors.New("invalid token type")
	}

	// JSON numbers decode as float64
	raw, ok := claims["account_id"].(float64)
	if !ok {
		return 0, errors.New("token has no account")
	}
	return int64(raw), nil
}

// OptionalAuthWithConfig validates a bearer token if one is sent. Requests without an
// Authorization header pass through; a malformed or invalid token is rejected.
func OptionalAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Error(c, http.StatusUnauthorized, "authorization header format must be Bearer {token}")
			return
		}

		accountID, err := parseAccessToken(cfg.JWT.Secret, parts[1])
		if err != nil {
			response.Error(c, http.StatusUnauthorized, err.Error())
			return
		}

		c.Set(ContextAccountID, accountID)
		c.Next()
	}
}

// AccountIDFromContext returns the account id set by OptionalAuthWithConfig
func AccountIDFromContext(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextAccountID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// RequireAccount rejects requests that OptionalAuthWithConfig did not authenticate
func RequireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := AccountIDFromContext(c); !ok {
			response.Error(c, http.StatusUnauthorized, "authorization header required")
			return
		}
		c.Next()
	}
}
