package tokengate

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tokengate/tokengate/internal"
	"github.com/tokengate/tokengate/store"
)

// createRetries bounds the collision retry loop in Issue. Collisions on
// 64 hex chars of CSPRNG output are effectively impossible; the bound
// exists so a broken entropy source fails instead of spinning.
const createRetries = 3

// Login validates credentials, resolves the named client and returns a
// usable token for the pair. An existing (user, client) token is reused;
// with RefreshOnLogin its expiry is pushed out first.
func (e *Engine) Login(ctx context.Context, username, password, clientName string) (*LoginResult, error) {
	if clientName == "" {
		return nil, ErrClientRequired
	}
	client, err := e.store.GetClient(ctx, clientName)
	if err != nil {
		if errors.Is(err, store.ErrClientNotFound) {
			return nil, ErrUnknownClient
		}
		return nil, err
	}

	user, err := e.users.ValidateCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, ErrUserInactive
	}

	record, err := e.getOrCreateToken(ctx, user, client)
	if err != nil {
		return nil, err
	}

	e.emit(ctx, Event{
		Type:     EventLogin,
		Username: user.Username,
		Client:   client.Name,
		TokenID:  record.ID,
	})

	return &LoginResult{Token: record.Token, Expiry: record.Expiry, User: user}, nil
}

// getOrCreateToken enforces one live token per (user, client) pair. An
// expired leftover is cleaned up before issuing; losing the create race
// means another login won, so its token is returned instead.
func (e *Engine) getOrCreateToken(ctx context.Context, user UserRecord, client *store.Client) (*store.AuthToken, error) {
	existing, err := e.store.GetByUserClient(ctx, user.ID, client.Name)
	switch {
	case err == nil:
		if existing.HasExpired() {
			if err := e.store.Delete(ctx, existing.Token); err != nil {
				return nil, err
			}
			e.emit(ctx, Event{
				Type:     EventTokenExpired,
				Username: existing.Username,
				Client:   existing.Client,
				TokenID:  existing.ID,
				Source:   "login",
			})
			break
		}
		if e.config.RefreshOnLogin {
			return e.renewRecord(ctx, existing, client)
		}
		return existing, nil
	case errors.Is(err, store.ErrTokenNotFound):
	default:
		return nil, err
	}

	record, err := e.Issue(ctx, user, client, 0)
	if err != nil {
		if errors.Is(err, store.ErrDuplicatePair) {
			// Concurrent login beat us; hand back the winner's token.
			return e.store.GetByUserClient(ctx, user.ID, client.Name)
		}
		return nil, err
	}
	return record, nil
}

// Issue mints and persists a fresh token for the pair without touching
// credentials. ttl overrides the client's TokenTTL when positive; zero
// defers to the client, and a client TTL of zero yields a non-expiring
// token.
func (e *Engine) Issue(ctx context.Context, user UserRecord, client *store.Client, ttl time.Duration) (*store.AuthToken, error) {
	if ttl == 0 {
		ttl = client.TokenTTL
	}
	now := time.Now().UTC()
	var expiry time.Time
	if ttl > 0 {
		expiry = now.Add(ttl)
	}

	for attempt := 0; attempt < createRetries; attempt++ {
		tok, err := internal.NewTokenString(e.config.TokenLength)
		if err != nil {
			return nil, err
		}
		record := &store.AuthToken{
			ID:       uuid.NewString(),
			Token:    tok,
			UserID:   user.ID,
			Username: user.Username,
			Client:   client.Name,
			Created:  now,
			Expiry:   expiry,
		}
		err = e.store.CreateToken(ctx, record)
		if err == nil {
			return record, nil
		}
		if errors.Is(err, store.ErrTokenCollision) {
			continue
		}
		return nil, err
	}
	return nil, ErrTokenGeneration
}

// Renew pushes the token's expiry out by its client's TTL and returns
// the updated record. Renewing a token of a non-expiring client is a
// no-op on the expiry.
func (e *Engine) Renew(ctx context.Context, auth *Auth) (*store.AuthToken, error) {
	client, err := e.store.GetClient(ctx, auth.Token.Client)
	if err != nil {
		return nil, err
	}
	return e.renewRecord(ctx, auth.Token, client)
}

func (e *Engine) renewRecord(ctx context.Context, record *store.AuthToken, client *store.Client) (*store.AuthToken, error) {
	var expiry time.Time
	if client.TokenTTL > 0 {
		expiry = time.Now().UTC().Add(client.TokenTTL)
	}
	updated, err := e.store.UpdateExpiry(ctx, record.Token, expiry)
	if err != nil {
		return nil, err
	}
	e.cache.invalidate(record.Token)
	e.emit(ctx, Event{
		Type:      EventTokenRenewed,
		Username:  updated.Username,
		Client:    updated.Client,
		TokenID:   updated.ID,
		NewExpiry: updated.Expiry,
	})
	return updated, nil
}

// Logout revokes the token the caller authenticated with.
func (e *Engine) Logout(ctx context.Context, auth *Auth) error {
	if err := e.store.Delete(ctx, auth.Token.Token); err != nil {
		return err
	}
	e.cache.invalidate(auth.Token.Token)
	e.emit(ctx, Event{
		Type:     EventLogout,
		Username: auth.User.Username,
		Client:   auth.Token.Client,
		TokenID:  auth.Token.ID,
	})
	return nil
}

// LogoutAll revokes every token the caller's user holds, across all
// clients, the current one included.
func (e *Engine) LogoutAll(ctx context.Context, auth *Auth) error {
	tokens, err := e.store.ListForUser(ctx, auth.User.ID)
	if err != nil {
		return err
	}
	if err := e.store.DeleteAllForUser(ctx, auth.User.ID); err != nil {
		return err
	}
	for _, t := range tokens {
		e.cache.invalidate(t.Token)
	}
	e.emit(ctx, Event{
		Type:     EventLogout,
		Username: auth.User.Username,
		Client:   auth.Token.Client,
		TokenID:  auth.Token.ID,
		Source:   "logout_all",
	})
	return nil
}
