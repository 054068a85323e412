package store

import "errors"

var (
	// ErrTokenNotFound is returned by token lookups that miss.
	ErrTokenNotFound = errors.New("token not found")
	// ErrClientNotFound is returned by client lookups that miss.
	ErrClientNotFound = errors.New("client not found")
	// ErrDuplicatePair is returned by [Store.CreateToken] when the
	// (user, client) pair already owns a token.
	ErrDuplicatePair = errors.New("token already exists for user-client pair")
	// ErrTokenCollision is returned by [Store.CreateToken] when the
	// generated token string is already taken. Callers retry generation.
	ErrTokenCollision = errors.New("token string collision")
	// ErrRedisUnavailable wraps Redis transport failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
