package tokengate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tokengate/tokengate/internal/rate"
)

// Config is the immutable engine configuration. It is cloned on the way
// into [Builder.Build]; changing settings at runtime means building a new
// engine.
type Config struct {
	// DefaultTokenTTL is the token lifetime for clients the engine
	// registers itself, such as the API access client. Explicitly
	// registered clients carry their own TTL. Default one day.
	DefaultTokenTTL time.Duration
	// TokenLength is the exact character length of issued token
	// strings (lowercase hex, so TokenLength/2 random bytes). Default
	// 64. Must be even and at least 16.
	TokenLength int
	// HeaderPrefix is the bearer scheme expected in the Authorization
	// header, compared case-insensitively. Default "Token".
	HeaderPrefix string
	// ExpiryFormat is the time layout used when rendering expiry
	// timestamps in HTTP responses. Default time.RFC3339.
	ExpiryFormat string
	// RefreshOnLogin renews an existing token's expiry when its owner
	// logs in again, instead of returning it untouched.
	RefreshOnLogin bool

	Cache     CacheConfig
	Throttle  ThrottleConfig
	APIAccess APIAccessConfig
	Events    EventConfig
}

// CacheConfig controls the optional in-process auth-result cache. See
// the package documentation for the staleness trade-off it buys into.
type CacheConfig struct {
	Enabled bool
	// TTL bounds how stale a cached auth result may be. Default 60s.
	TTL time.Duration
	// MaxEntries caps the number of cached results. Default 16384.
	MaxEntries int64
}

// ThrottleConfig carries the scope-wide default rate, used whenever the
// authenticated client has no override and for anonymous callers. Empty
// means unthrottled by default.
type ThrottleConfig struct {
	DefaultRate string
}

// APIAccessConfig wires the distinguished API-access token class to a
// registered client.
type APIAccessConfig struct {
	// ClientName names the client that API-access tokens are issued
	// under. Empty disables the feature.
	ClientName string
	// ExcludeFromSessions hides API-access tokens from session
	// listings.
	ExcludeFromSessions bool
	// IncludeTokenInGet echoes the token value in GET responses, not
	// only on creation.
	IncludeTokenInGet bool
}

// EventConfig controls the async event dispatcher.
type EventConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// DefaultConfig returns the configuration [New] starts from. Mutate a
// copy and pass it to [Builder.WithConfig] to override fields.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		DefaultTokenTTL: 24 * time.Hour,
		TokenLength:     64,
		HeaderPrefix:    "Token",
		ExpiryFormat:    time.RFC3339,
		Cache: CacheConfig{
			TTL:        60 * time.Second,
			MaxEntries: 16384,
		},
		Events: EventConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

// Validate checks the configuration for values that would misbehave at
// request time.
func (c Config) Validate() error {
	if c.TokenLength < 16 || c.TokenLength%2 != 0 {
		return errors.New("TokenLength must be even and at least 16")
	}
	if c.DefaultTokenTTL < 0 {
		return errors.New("DefaultTokenTTL must not be negative")
	}
	if c.HeaderPrefix == "" || strings.ContainsAny(c.HeaderPrefix, " \t") {
		return errors.New("HeaderPrefix must be a single non-empty word")
	}
	if c.ExpiryFormat == "" {
		return errors.New("ExpiryFormat must be set")
	}
	if c.Throttle.DefaultRate != "" {
		if _, err := rate.Parse(c.Throttle.DefaultRate); err != nil {
			return fmt.Errorf("Throttle.DefaultRate: %w", err)
		}
	}
	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return errors.New("Cache.TTL must be positive when the cache is enabled")
		}
		if c.Cache.MaxEntries <= 0 {
			return errors.New("Cache.MaxEntries must be positive when the cache is enabled")
		}
	}
	return nil
}

func cloneConfig(c Config) Config {
	// All fields are values; a shallow copy is a deep copy.
	return c
}
