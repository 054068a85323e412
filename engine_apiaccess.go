package tokengate

import (
	"context"
	"errors"

	"github.com/tokengate/tokengate/store"
)

// APIAccessInfo describes a user's personal API token. Token is empty
// unless the operation (or configuration) allows revealing it.
type APIAccessInfo struct {
	Token      string `json:"token,omitempty"`
	Expiry     string `json:"expiry,omitempty"`
	HasAccess  bool   `json:"has_api_access"`
	TokenID    string `json:"token_id,omitempty"`
	CreatedStr string `json:"created,omitempty"`
}

// apiAccessClient resolves the dedicated API access client, creating it
// on first use so deployments need no separate registration step.
func (e *Engine) apiAccessClient(ctx context.Context) (*store.Client, error) {
	name := e.config.APIAccess.ClientName
	if name == "" {
		return nil, ErrAPIAccessNotConfigured
	}
	client, err := e.store.GetClient(ctx, name)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, store.ErrClientNotFound) {
		return nil, err
	}
	client = &store.Client{Name: name, TokenTTL: e.config.DefaultTokenTTL}
	if err := e.store.SaveClient(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// GetAPIAccess reports whether the caller holds an API token. The token
// value is included only when IncludeTokenInGet is set.
func (e *Engine) GetAPIAccess(ctx context.Context, auth *Auth) (*APIAccessInfo, error) {
	client, err := e.apiAccessClient(ctx)
	if err != nil {
		return nil, err
	}
	record, err := e.store.GetByUserClient(ctx, auth.User.ID, client.Name)
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return &APIAccessInfo{HasAccess: false}, nil
		}
		return nil, err
	}
	info := &APIAccessInfo{
		HasAccess:  true,
		TokenID:    record.ID,
		Expiry:     e.FormatExpiry(record.Expiry),
		CreatedStr: e.FormatExpiry(record.Created),
	}
	if e.config.APIAccess.IncludeTokenInGet {
		info.Token = record.Token
	}
	return info, nil
}

// CreateAPIAccess issues the caller's personal API token. A second call
// while one exists fails; revoke first to rotate.
func (e *Engine) CreateAPIAccess(ctx context.Context, auth *Auth) (*APIAccessInfo, error) {
	client, err := e.apiAccessClient(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := e.store.GetByUserClient(ctx, auth.User.ID, client.Name); err == nil {
		return nil, ErrAPIAccessExists
	} else if !errors.Is(err, store.ErrTokenNotFound) {
		return nil, err
	}

	record, err := e.Issue(ctx, auth.User, client, 0)
	if err != nil {
		if errors.Is(err, store.ErrDuplicatePair) {
			return nil, ErrAPIAccessExists
		}
		return nil, err
	}
	return &APIAccessInfo{
		HasAccess:  true,
		Token:      record.Token,
		TokenID:    record.ID,
		Expiry:     e.FormatExpiry(record.Expiry),
		CreatedStr: e.FormatExpiry(record.Created),
	}, nil
}

// DeleteAPIAccess revokes the caller's API token. Returns
// [store.ErrTokenNotFound] when none was ever issued.
func (e *Engine) DeleteAPIAccess(ctx context.Context, auth *Auth) error {
	client, err := e.apiAccessClient(ctx)
	if err != nil {
		return err
	}
	record, err := e.store.GetByUserClient(ctx, auth.User.ID, client.Name)
	if err != nil {
		return err
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
		Source:   "api_access_revoke",
	})
	return nil
}
