package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/tokengate/tokengate"
)

type authContextKey struct{}

// AuthFromContext returns the authentication result stored by
// [Authenticate], or false for anonymous requests.
func AuthFromContext(ctx context.Context) (*tokengate.Auth, bool) {
	auth, ok := ctx.Value(authContextKey{}).(*tokengate.Auth)
	return auth, ok
}

// Authenticate resolves the request's bearer token. Requests without
// credentials for our scheme continue anonymously; requests that attempt
// the scheme and fail are terminated with 401. Store faults surface as
// 503, never as an authentication failure.
func Authenticate(engine *tokengate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth, err := engine.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, tokengate.ErrNoCredentials) {
					next.ServeHTTP(w, r)
					return
				}
				status, detail := authFailure(err)
				writeDetail(w, status, detail)
				return
			}

			ctx := context.WithValue(r.Context(), authContextKey{}, auth)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that reached the handler chain without an
// authenticated identity. Place it after [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := AuthFromContext(r.Context()); !ok {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Throttle counts the request against the resolved identity and answers
// 429 once the rate is exhausted. Anonymous callers are keyed by remote
// address.
func Throttle(engine *tokengate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth, _ := AuthFromContext(r.Context())
			if err := engine.Throttle(r.Context(), auth, remoteHost(r)); err != nil {
				if errors.Is(err, tokengate.ErrRateLimited) {
					writeDetail(w, http.StatusTooManyRequests, "Request was throttled.")
					return
				}
				writeDetail(w, http.StatusServiceUnavailable, "Service temporarily unavailable.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authFailure(err error) (int, string) {
	switch {
	case errors.Is(err, tokengate.ErrInvalidHeader):
		return http.StatusUnauthorized, "Invalid token header."
	case errors.Is(err, tokengate.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid token."
	case errors.Is(err, tokengate.ErrTokenExpired):
		return http.StatusUnauthorized, "The given token has expired."
	case errors.Is(err, tokengate.ErrUserInactive):
		return http.StatusUnauthorized, "User inactive or deleted."
	default:
		return http.StatusServiceUnavailable, "Service temporarily unavailable."
	}
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
