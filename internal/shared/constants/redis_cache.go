package constants

import (
	"fmt"
	"time"
)

// Redis key layout
// Pattern: cinematickets:{module}:{scope}:{identifier}

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "cinematickets"
)

// ================== SEATS MODULE ==================

// Venue seat inventory. The counter is the source of truth for remaining seats.
const (
	CACHE_KEY_VENUE = CACHE_PREFIX + ":venue:" // + venue-name

	VENUE_SUFFIX_AVAILABLE    = ":available"    // integer counter
	VENUE_SUFFIX_RESERVATIONS = ":reservations" // hash of account-id -> seats
)

// ================== PURCHASES MODULE ==================

// Idempotency records are stored below the cache service prefix.
// One key holds the pending marker and later the stored response.
const (
	CACHE_KEY_PURCHASE_IDEMPOTENCY = "purchase:idempotency:" // + account-id:idempotency-key
)

const (
	TTL_PURCHASE_IDEMPOTENCY = 24 * time.Hour
)

// ================== RATE LIMITING ==================

const (
	CACHE_KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit:" // + ip:limit-type
)

// ================== HELPER FUNCTIONS ==================

// BuildVenueAvailableKey -> "cinematickets:venue:main-hall:available"
func BuildVenueAvailableKey(venue string) string {
	return CACHE_KEY_VENUE + venue + VENUE_SUFFIX_AVAILABLE
}

func BuildVenueReservationsKey(venue string) string {
	return CACHE_KEY_VENUE + venue + VENUE_SUFFIX_RESERVATIONS
}

func BuildPurchaseIdempotencyKey(accountID int64, idempotencyKey string) string {
	return CACHE_KEY_PURCHASE_IDEMPOTENCY + fmt.Sprintf("%d", accountID) + ":" + idempotencyKey
}

func BuildRateLimitKey(clientIP, limitType string) string {
	return CACHE_KEY_RATE_LIMIT + clientIP + ":" + limitType
}
