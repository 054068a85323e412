package tokengate

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/tokengate/tokengate/internal/event"
	"github.com/tokengate/tokengate/internal/rate"
	"github.com/tokengate/tokengate/store"
)

// Builder assembles an [Engine]. Configure it fluently, then call
// [Builder.Build] exactly once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	userProvider UserProvider
	eventSink    EventSink
	keyPrefix    string

	built bool
}

// New returns a [Builder] preloaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the token store and the
// throttle windows.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserProvider sets the caller's user database integration.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithEventSink subscribes a sink to the engine's lifecycle events.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	return b
}

// WithKeyPrefix overrides the Redis key namespace (default "tg").
func (b *Builder) WithKeyPrefix(prefix string) *Builder {
	b.keyPrefix = prefix
	return b
}

// Build validates the configuration and constructs the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.userProvider == nil {
		return nil, errors.New("user provider required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var defaultRate rate.Rate
	if cfg.Throttle.DefaultRate != "" {
		// Already validated; parse cannot fail here.
		defaultRate, _ = rate.Parse(cfg.Throttle.DefaultRate)
	}

	cache, err := newAuthCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:      cfg,
		store:       store.New(b.redis, b.keyPrefix),
		limiter:     rate.NewLimiter(b.redis),
		defaultRate: defaultRate,
		users:       b.userProvider,
		cache:       cache,
		events: event.NewDispatcher(event.Config{
			Enabled:    cfg.Events.Enabled,
			BufferSize: cfg.Events.BufferSize,
			DropIfFull: cfg.Events.DropIfFull,
		}, b.eventSink),
	}

	b.built = true

	return engine, nil
}
