package store

import "time"

// Client is a registered API consumer ("web", "mobile", ...). Clients are
// created administratively and rarely mutated; deleting one cascades to
// every token it issued.
type Client struct {
	// Name uniquely identifies the client.
	Name string `json:"name"`
	// TokenTTL is the lifetime granted to tokens issued for this
	// client. Zero means tokens never expire.
	TokenTTL time.Duration `json:"token_ttl"`
	// ThrottleRate overrides the global default rate for requests
	// authenticated with this client's tokens. Format "count/period",
	// period one of s, m, h, d. Empty means use the default.
	ThrottleRate string `json:"throttle_rate,omitempty"`
}

// AuthToken is one issued bearer token, bound to exactly one
// (user, client) pair.
type AuthToken struct {
	// ID is the stable record identifier exposed by session listings;
	// the token string itself never appears there.
	ID       string    `json:"id"`
	Token    string    `json:"token"`
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Client   string    `json:"client"`
	Created  time.Time `json:"created"`
	// Expiry is mutable via renewal. The zero value means the token
	// never expires.
	Expiry time.Time `json:"expiry,omitzero"`
}

// HasExpired reports whether the token's expiry lies strictly in the
// past. Non-expiring tokens never expire.
func (t *AuthToken) HasExpired() bool {
	return !t.Expiry.IsZero() && time.Now().After(t.Expiry)
}
