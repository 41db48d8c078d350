package seats

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"cinematickets/internal/shared/constants"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInsufficientSeats      = errors.New("not enough seats available")
	ErrCapacityNotInitialised = errors.New("venue seat capacity has not been initialised")
	ErrInvalidSeatCount       = errors.New("seat count must not be negative")
	errRedisUnavailable       = errors.New("redis client not available")
)

// Lua script for atomic seat reservation against the venue's remaining capacity
const luaAtomicReserve = `
-- KEYS[1] = available seats counter
-- KEYS[2] = per-account reservation hash
-- ARGV[1] = account_id
-- ARGV[2] = seat_count

local available = redis.call("GET", KEYS[1])
if not available then
    return {0, "capacity_not_initialised"}
end

local wanted = tonumber(ARGV[2])
if tonumber(available) < wanted then
    return {0, "insufficient_seats"}
end

local remaining = redis.call("DECRBY", KEYS[1], wanted)
redis.call("HINCRBY", KEYS[2], ARGV[1], wanted)

return {1, remaining}
`

var reserveScript = redis.NewScript(luaAtomicReserve)

// ReservationService reserves seats for accounts out of a venue-wide counter held in Redis
type ReservationService struct {
	redis *redis.Client
	venue string
}

func NewReservationService(redisClient *redis.Client, venue string) *ReservationService {
	return &ReservationService{
		redis: redisClient,
		venue: venue,
	}
}

func (s *ReservationService) availableKey() string {
	return constants.BuildVenueAvailableKey(s.venue)
}

func (s *ReservationService) reservationsKey() string {
	return constants.BuildVenueReservationsKey(s.venue)
}

// InitCapacity sets the venue's seat counter unless it already exists.
// It reports whether the counter was created.
func (s *ReservationService) InitCapacity(ctx context.Context, capacity int) (bool, error) {
	if s.redis == nil {
		return false, errRedisUnavailable
	}
	created, err := s.redis.SetNX(ctx, s.availableKey(), capacity, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to initialise seat capacity: %w", err)
	}
	return created, nil
}

// ResetCapacity overwrites the seat counter and clears all reservations
func (s *ReservationService) ResetCapacity(ctx context.Context, capacity int) error {
	if s.redis == nil {
		return errRedisUnavailable
	}
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.availableKey(), capacity, 0)
		pipe.Del(ctx, s.reservationsKey())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to reset seat capacity: %w", err)
	}
	return nil
}

// Available returns the number of seats that can still be reserved
func (s *ReservationService) Available(ctx context.Context) (int, error) {
	if s.redis == nil {
		return 0, errRedisUnavailable
	}
	n, err := s.redis.Get(ctx, s.availableKey()).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCapacityNotInitialised
		}
		return 0, fmt.Errorf("failed to read seat capacity: %w", err)
	}
	return n, nil
}

// Reserved returns how many seats accountID holds
func (s *ReservationService) Reserved(ctx context.Context, accountID int64) (int, error) {
	if s.redis == nil {
		return 0, errRedisUnavailable
	}
	n, err := s.redis.HGet(ctx, s.reservationsKey(), strconv.FormatInt(accountID, 10)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read reservations: %w", err)
	}
	return n, nil
}

// Reserve atomically takes seatCount seats for accountID. Reserving zero seats is a no-op.
func (s *ReservationService) Reserve(ctx context.Context, accountID int64, seatCount int) error {
	if seatCount < 0 {
		return ErrInvalidSeatCount
	}
	if seatCount == 0 {
		return nil
	}
	if s.redis == nil {
		return errRedisUnavailable
	}

	keys := []string{s.availableKey(), s.reservationsKey()}
	result, err := reserveScript.Run(ctx, s.redis, keys, strconv.FormatInt(accountID, 10), seatCount).Result()
	if err != nil {
		return fmt.Errorf("failed to execute atomic seat reservation: %w", err)
	}

	_, err = parseReserveResult(result)
	return err
}

// PreloadScripts loads Lua scripts into Redis for better performance
func (s *ReservationService) PreloadScripts(ctx context.Context) error {
	if s.redis == nil {
		return errRedisUnavailable
	}
	if err := reserveScript.Load(ctx, s.redis).Err(); err != nil {
		return fmt.Errorf("failed to load seat reservation script: %w", err)
	}
	return nil
}

// parseReserveResult turns the script reply into the remaining seat count or a typed error
func parseReserveResult(result interface{}) (int, error) {
	resultArray, ok := result.([]interface{})
	if !ok || len(resultArray) != 2 {
		return 0, fmt.Errorf("unexpected result format from Lua script")
	}

	success, ok := resultArray[0].(int64)
	if !ok {
		return 0, fmt.Errorf("invalid success flag in Lua script result")
	}

	if success == 0 {
		reason, _ := resultArray[1].(string)
		switch reason {
		case "insufficient_seats":
			return 0, ErrInsufficientSeats
		case "capacity_not_initialised":
			return 0, ErrCapacityNotInitialised
		default:
			return 0, fmt.Errorf("failed to reserve seats: %s", reason)
		}
	}

	remaining, ok := resultArray[1].(int64)
	if !ok {
		return 0, fmt.Errorf("invalid remaining count in Lua script result")
	}
	return int(remaining), nil
}
