package tokengate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tokengate/tokengate/internal/event"
	"github.com/tokengate/tokengate/internal/rate"
	"github.com/tokengate/tokengate/store"
)

// Engine is the authentication core. All methods are safe for concurrent
// use once [Builder.Build] has returned.
type Engine struct {
	config      Config
	store       *store.Store
	limiter     *rate.Limiter
	defaultRate rate.Rate
	users       UserProvider
	cache       *authCache
	events      *event.Dispatcher
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// Store exposes the underlying token store for administrative callers
// (client registration, cascade deletes).
func (e *Engine) Store() *store.Store {
	return e.store
}

// Close stops the event dispatcher after draining buffered events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.events != nil {
		e.events.Close()
	}
	e.cache.close()
}

// EventsDropped returns how many lifecycle events were discarded because
// the dispatch buffer was full.
func (e *Engine) EventsDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.events.Dropped()
}

func (e *Engine) emit(ctx context.Context, ev Event) {
	ev.Timestamp = time.Now().UTC()
	e.events.Emit(ctx, ev)
}

// Authenticate turns a bearer header into a validated identity in one
// pass. The error distinguishes "not attempting our scheme"
// ([ErrNoCredentials]) from actual failures; see the error taxonomy in
// errors.go.
func (e *Engine) Authenticate(ctx context.Context, header string) (*Auth, error) {
	token, err := e.extractToken(header)
	if err != nil {
		return nil, err
	}

	if auth, ok := e.cache.get(token); ok {
		return auth, nil
	}

	auth, err := e.authenticateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	e.cache.set(token, auth)
	return auth, nil
}

// extractToken parses "<prefix> <token>". A missing header or a foreign
// scheme is anonymous fallthrough, not a failure.
func (e *Engine) extractToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) == 0 || !strings.EqualFold(parts[0], e.config.HeaderPrefix) {
		return "", ErrNoCredentials
	}
	if len(parts) != 2 {
		// No token part, or the token part contained whitespace.
		return "", ErrInvalidHeader
	}
	return parts[1], nil
}

func (e *Engine) authenticateToken(ctx context.Context, token string) (*Auth, error) {
	record, err := e.store.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			// Covers unknown tokens and wrong-length strings alike;
			// lookups are exact, never prefix matches.
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if record.HasExpired() {
		// Lazy cleanup: delete, notify once, fail. A failed delete is
		// a store fault and must surface as one, not as a 401.
		if err := e.store.Delete(ctx, record.Token); err != nil {
			return nil, err
		}
		e.emit(ctx, Event{
			Type:     EventTokenExpired,
			Username: record.Username,
			Client:   record.Client,
			TokenID:  record.ID,
			Source:   "auth_token",
		})
		return nil, ErrTokenExpired
	}

	user, err := e.users.GetUser(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserInactive
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrUserInactive
	}

	return &Auth{User: user, Token: record}, nil
}

// Throttle records one request against the caller's identity and rejects
// it once the resolved rate is exhausted. Authenticated callers are keyed
// by their (user, client) pair and may carry a per-client override;
// anonymous callers fall back to remoteAddr and the default rate.
func (e *Engine) Throttle(ctx context.Context, auth *Auth, remoteAddr string) error {
	if auth == nil {
		return e.limiter.Allow(ctx, rate.AddrIdent(remoteAddr), e.defaultRate)
	}

	r := e.defaultRate
	client, err := e.store.GetClient(ctx, auth.Token.Client)
	if err != nil {
		if !errors.Is(err, store.ErrClientNotFound) {
			return err
		}
		// Client deleted mid-flight; the cascade will catch the token.
	} else if client.ThrottleRate != "" {
		// Validated at client save time; a parse failure here means
		// the store was bypassed, and the request fails loudly.
		r, err = rate.Parse(client.ThrottleRate)
		if err != nil {
			return err
		}
	}

	return e.limiter.Allow(ctx, rate.UserClientIdent(auth.User.ID, auth.Token.Client), r)
}

// FormatExpiry renders an expiry timestamp with the configured layout.
// Non-expiring tokens render as the empty string.
func (e *Engine) FormatExpiry(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(e.config.ExpiryFormat)
}
