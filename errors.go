package tokengate

import (
	"errors"

	"github.com/tokengate/tokengate/internal/rate"
)

// ErrRateLimited is returned by [Engine.Throttle] when the caller's
// request budget for the current window is exhausted.
var ErrRateLimited = rate.ErrRateLimited

var (
	// ErrNoCredentials means the request carried no bearer header for
	// our scheme. Not a failure: callers fall through to anonymous
	// handling.
	ErrNoCredentials = errors.New("no credentials provided")
	// ErrInvalidHeader means the bearer header matched the prefix but
	// was malformed (no token part, or spaces inside the token part).
	ErrInvalidHeader = errors.New("invalid token header")
	// ErrInvalidToken covers every lookup miss, deliberately
	// non-specific so responses never reveal whether the format or a
	// particular token was wrong.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned exactly once per expired token, by
	// the authentication attempt that performed the lazy cleanup.
	ErrTokenExpired = errors.New("token has expired")
	// ErrUserInactive means the token resolved but its owner is
	// inactive or deleted.
	ErrUserInactive = errors.New("user inactive or deleted")
	// ErrInvalidCredentials is returned by [UserProvider] credential
	// checks and passed through by [Engine.Login].
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned by [UserProvider.GetUser] misses.
	ErrUserNotFound = errors.New("user not found")
	// ErrClientRequired is returned by [Engine.Login] when no client
	// name was supplied.
	ErrClientRequired = errors.New("no client specified")
	// ErrUnknownClient is returned when the named client is not
	// registered.
	ErrUnknownClient = errors.New("no client with that name")
	// ErrRevokeCurrent rejects revoking the session that authenticated
	// the request; explicit logout is the path for that.
	ErrRevokeCurrent = errors.New("cannot revoke the current session, use logout")
	// ErrAPIAccessExists rejects issuing a second API-access token to
	// the same user.
	ErrAPIAccessExists = errors.New("an API token was already issued to you")
	// ErrAPIAccessNotConfigured means no API-access client name is set
	// in the engine configuration.
	ErrAPIAccessNotConfigured = errors.New("api access client not configured")
	// ErrTokenGeneration is returned when token generation keeps
	// colliding with existing token strings. With 32 random bytes this
	// indicates a broken random source, not bad luck.
	ErrTokenGeneration = errors.New("token generation failed")
)
