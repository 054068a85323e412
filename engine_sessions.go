package tokengate

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tokengate/tokengate/store"
)

// ListSessions returns the caller's live tokens as session descriptors,
// oldest first. Token values themselves are never included. When an API
// access client is configured with ExcludeFromSessions, its token is
// hidden from the listing.
func (e *Engine) ListSessions(ctx context.Context, auth *Auth) ([]SessionInfo, error) {
	tokens, err := e.store.ListForUser(ctx, auth.User.ID)
	if err != nil {
		return nil, err
	}

	hide := ""
	if e.config.APIAccess.ClientName != "" && e.config.APIAccess.ExcludeFromSessions {
		hide = e.config.APIAccess.ClientName
	}

	sessions := make([]SessionInfo, 0, len(tokens))
	for _, t := range tokens {
		if hide != "" && t.Client == hide {
			continue
		}
		sessions = append(sessions, e.sessionInfo(t, auth))
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Created.Before(sessions[j].Created)
	})
	return sessions, nil
}

func (e *Engine) sessionInfo(t *store.AuthToken, auth *Auth) SessionInfo {
	return SessionInfo{
		ID:           t.ID,
		Client:       t.Client,
		Created:      t.Created,
		Expiry:       t.Expiry,
		HasExpired:   t.HasExpired(),
		IsCurrent:    t.ID == auth.Token.ID,
		ExpiresInStr: expiresIn(t),
	}
}

// expiresIn renders the time left as a rough human duration. Expired
// and non-expiring tokens both read "N/A"; the HasExpired flag is what
// distinguishes them.
func expiresIn(t *store.AuthToken) string {
	if t.Expiry.IsZero() || t.HasExpired() {
		return "N/A"
	}
	return strings.TrimSpace(humanize.RelTime(time.Now(), t.Expiry, "", ""))
}

// RevokeSession deletes one of the caller's sessions by token record ID.
// The session being used to make the call cannot revoke itself; that is
// what Logout is for. IDs belonging to other users are indistinguishable
// from unknown IDs.
func (e *Engine) RevokeSession(ctx context.Context, auth *Auth, id string) error {
	if id == auth.Token.ID {
		return ErrRevokeCurrent
	}
	record, err := e.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record.UserID != auth.User.ID {
		return store.ErrTokenNotFound
	}
	if err := e.store.Delete(ctx, record.Token); err != nil {
		return err
	}
	e.cache.invalidate(record.Token)
	e.emit(ctx, Event{
		Type:     EventLogout,
		Username: auth.User.Username,
		Client:   record.Client,
		TokenID:  record.ID,
		Source:   "session_revoke",
	})
	return nil
}
