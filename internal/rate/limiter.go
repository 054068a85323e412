package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "trl:"

// Limiter enforces per-identity request budgets using shared Redis
// counters, so the window state is consistent across processes.
type Limiter struct {
	redis redis.UniversalClient
}

// NewLimiter creates a [Limiter] backed by the given Redis client.
func NewLimiter(redisClient redis.UniversalClient) *Limiter {
	return &Limiter{redis: redisClient}
}

// Allow records one request for ident against r and returns
// [ErrRateLimited] once the count within the current window exceeds the
// limit. The window is the wall-clock bucket the request falls into, not
// a per-identity window opened on first use.
func (l *Limiter) Allow(ctx context.Context, ident string, r Rate) error {
	if r.Limit <= 0 || r.Period <= 0 {
		return nil
	}

	key := l.windowKey(ident, r, time.Now())
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// First hit of the bucket sets the TTL. One full period is enough:
	// the bucket index changes before the key could be reused.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, r.Period).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	if count > int64(r.Limit) {
		return ErrRateLimited
	}

	return nil
}

// Remaining reports how many requests ident has left in the current
// window. Missing counters mean an untouched window.
func (l *Limiter) Remaining(ctx context.Context, ident string, r Rate) (int, error) {
	if r.Limit <= 0 || r.Period <= 0 {
		return 0, nil
	}

	count, err := l.redis.Get(ctx, l.windowKey(ident, r, time.Now())).Int64()
	if err != nil {
		if err == redis.Nil {
			return r.Limit, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	left := int64(r.Limit) - count
	if left < 0 {
		left = 0
	}
	return int(left), nil
}

func (l *Limiter) windowKey(ident string, r Rate, now time.Time) string {
	bucket := now.Unix() / int64(r.Period/time.Second)
	return keyPrefix + ident + ":" + strconv.FormatInt(bucket, 10)
}
