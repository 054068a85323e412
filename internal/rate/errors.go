package rate

import "errors"

var (
	// ErrRateLimited is returned by [Limiter.Allow] when the identity has
	// exhausted its request budget for the current window.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis transport failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
	// ErrInvalidRate is returned by [Parse] for malformed rate strings.
	ErrInvalidRate = errors.New("invalid throttle rate")
)
