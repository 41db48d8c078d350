package purchases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"cinematickets/internal/shared/constants"
	"cinematickets/pkg/cache"
)

// IdempotencyHeader carries a client-chosen key that makes a purchase safe to retry
const IdempotencyHeader = "Idempotency-Key"

var (
	errIdempotencyInProgress = errors.New("a purchase with this idempotency key is in progress or needs attention")
	errIdempotencyMismatch   = errors.New("idempotency key was used for a different purchase")
)

type idempotencyState string

const (
	idempotencyPending   idempotencyState = "pending"
	idempotencyCompleted idempotencyState = "completed"
)

// idempotencyRecord is the single cache entry behind a key. It is created pending
// and overwritten with the response once the purchase completes, so a stored result
// and a held lock can never be observed apart.
type idempotencyRecord struct {
	State       idempotencyState  `json:"state"`
	Fingerprint string            `json:"fingerprint"`
	Response    *PurchaseResponse `json:"response,omitempty"`
}

type idempotencyGuard struct {
	cache cache.Service
	ttl   time.Duration
}

func newIdempotencyGuard(c cache.Service, ttl time.Duration) *idempotencyGuard {
	if c == nil {
		return nil
	}
	return &idempotencyGuard{cache: c, ttl: ttl}
}

func recordKey(accountID int64, key string) string {
	return constants.BuildPurchaseIdempotencyKey(accountID, key)
}

// requestFingerprint identifies the tickets asked for. Line items are hashed in order
// after the same normalisation LineItems applies.
func requestFingerprint(req PurchaseRequest) string {
	h := sha256.New()
	h.Write([]byte(strconv.FormatInt(req.AccountID, 10)))
	for _, item := range req.LineItems() {
		h.Write([]byte{0})
		h.Write([]byte(item.Category))
		h.Write([]byte{':'})
		h.Write([]byte(strconv.Itoa(item.Quantity)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// begin claims the key for req. It returns a stored response to replay, or nil when the
// caller now holds the key and must finish with complete or release.
func (g *idempotencyGuard) begin(ctx context.Context, req PurchaseRequest, key string) (*PurchaseResponse, error) {
	k := recordKey(req.AccountID, key)
	fingerprint := requestFingerprint(req)

	// A record released between SetNX and Get gets one more claim attempt
	for attempt := 0; attempt < 2; attempt++ {
		claimed, err := g.cache.SetNX(ctx, k, idempotencyRecord{State: idempotencyPending, Fingerprint: fingerprint}, g.ttl)
		if err != nil {
			return nil, err
		}
		if claimed {
			return nil, nil
		}

		var existing idempotencyRecord
		err = g.cache.Get(ctx, k, &existing)
		if errors.Is(err, cache.ErrCacheMiss) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if existing.Fingerprint != fingerprint {
			return nil, errIdempotencyMismatch
		}
		if existing.State == idempotencyCompleted && existing.Response != nil {
			return existing.Response, nil
		}
		return nil, errIdempotencyInProgress
	}
	return nil, errIdempotencyInProgress
}

// complete replaces the pending record with the response
func (g *idempotencyGuard) complete(ctx context.Context, req PurchaseRequest, key string, resp *PurchaseResponse) error {
	return g.cache.Set(ctx, recordKey(req.AccountID, key), idempotencyRecord{
		State:       idempotencyCompleted,
		Fingerprint: requestFingerprint(req),
		Response:    resp,
	}, g.ttl)
}

// release drops a pending record so the request can be retried
func (g *idempotencyGuard) release(ctx context.Context, accountID int64, key string) error {
	return g.cache.Delete(ctx, recordKey(accountID, key))
}
