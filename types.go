package tokengate

import (
	"context"
	"io"
	"time"

	"github.com/tokengate/tokengate/internal/event"
	"github.com/tokengate/tokengate/store"
)

// UserRecord is the minimal account view the engine needs. The engine
// never stores users; it resolves them through [UserProvider] on every
// uncached authentication.
type UserRecord struct {
	ID       string
	Username string
	Active   bool
}

// UserProvider is the interface callers implement to integrate tokengate
// with their user database.
//
// ValidateCredentials returns [ErrInvalidCredentials] for a bad
// username/password combination; any other error is treated as a backend
// failure and propagated. GetUser returns [ErrUserNotFound] for missing
// accounts.
type UserProvider interface {
	ValidateCredentials(ctx context.Context, username, password string) (UserRecord, error)
	GetUser(ctx context.Context, userID string) (UserRecord, error)
}

// Auth is the result of a successful authentication: the resolved user
// and the exact token record that authenticated the request. Handlers
// receive it once per request through the middleware context.
type Auth struct {
	User  UserRecord
	Token *store.AuthToken
}

// LoginResult is returned by [Engine.Login].
type LoginResult struct {
	Token  string
	Expiry time.Time
	User   UserRecord
}

// SessionInfo is one row of a user's session listing. The token string
// itself never appears here; revocation goes through the record ID.
type SessionInfo struct {
	ID           string
	Client       string
	Created      time.Time
	Expiry       time.Time
	HasExpired   bool
	IsCurrent    bool
	ExpiresInStr string
}

// Event is a lifecycle notification emitted by the engine.
type Event = event.Event

// Event types carried in [Event.Type].
const (
	EventTokenExpired = event.TypeTokenExpired
	EventTokenRenewed = event.TypeTokenRenewed
	EventLogin        = event.TypeLogin
	EventLogout       = event.TypeLogout
)

// EventSink receives [Event] values from the engine's dispatcher.
type EventSink = event.Sink

// NoOpSink is an [EventSink] that silently discards all events.
type NoOpSink = event.NoOpSink

// ChannelSink is a buffered channel-based [EventSink].
type ChannelSink = event.ChannelSink

// JSONWriterSink is an [EventSink] that writes JSON-encoded events, one
// per line, to an [io.Writer].
type JSONWriterSink = event.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return event.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return event.NewJSONWriterSink(w)
}
