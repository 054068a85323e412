package tokengate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tokengate/tokengate/store"
)

func apiAccessEnv(t *testing.T, mutate func(*Config)) (*testEnv, *Auth) {
	t.Helper()
	env := newTestEnv(t, func(cfg *Config) {
		cfg.APIAccess.ClientName = "api-access"
		if mutate != nil {
			mutate(cfg)
		}
	})
	env.users.add("u1", "alice", "hunter2", true)
	env.mustSaveClient(t, store.Client{Name: "web", TokenTTL: time.Hour})
	tok := env.mustLogin(t, "alice", "hunter2", "web").Token
	auth, err := env.engine.Authenticate(context.Background(), authHeader(tok))
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	return env, auth
}

func TestAPIAccessLifecycle(t *testing.T) {
	env, auth := apiAccessEnv(t, nil)
	ctx := context.Background()

	info, err := env.engine.GetAPIAccess(ctx, auth)
	if err != nil {
		t.Fatalf("GetAPIAccess: %v", err)
	}
	if info.HasAccess {
		t.Fatal("no API token issued yet")
	}

	created, err := env.engine.CreateAPIAccess(ctx, auth)
	if err != nil {
		t.Fatalf("CreateAPIAccess: %v", err)
	}
	if created.Token == "" {
		t.Fatal("create must return the token value")
	}
	// The auto-created client inherits the default TTL.
	if created.Expiry == "" {
		t.Fatal("API token should carry the default expiry")
	}

	// The issued token authenticates like any other.
	if _, err := env.engine.Authenticate(ctx, authHeader(created.Token)); err != nil {
		t.Fatalf("API token Authenticate: %v", err)
	}

	if _, err := env.engine.CreateAPIAccess(ctx, auth); !errors.Is(err, ErrAPIAccessExists) {
		t.Fatalf("second create err = %v, want ErrAPIAccessExists", err)
	}

	info, err = env.engine.GetAPIAccess(ctx, auth)
	if err != nil {
		t.Fatalf("GetAPIAccess: %v", err)
	}
	if !info.HasAccess {
		t.Fatal("HasAccess should be true after create")
	}
	if info.Token != "" {
		t.Fatal("GET must not reveal the token by default")
	}

	if err := env.engine.DeleteAPIAccess(ctx, auth); err != nil {
		t.Fatalf("DeleteAPIAccess: %v", err)
	}
	if _, err := env.engine.Authenticate(ctx, authHeader(created.Token)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("revoked API token err = %v, want ErrInvalidToken", err)
	}
	// Nothing left to revoke.
	if err := env.engine.DeleteAPIAccess(ctx, auth); !errors.Is(err, store.ErrTokenNotFound) {
		t.Fatalf("second DeleteAPIAccess err = %v, want ErrTokenNotFound", err)
	}

	// Revoke-then-create rotates.
	rotated, err := env.engine.CreateAPIAccess(ctx, auth)
	if err != nil {
		t.Fatalf("re-create: %v", err)
	}
	if rotated.Token == created.Token {
		t.Fatal("rotation must mint a fresh token")
	}
}

func TestAPIAccessIncludeTokenInGet(t *testing.T) {
	env, auth := apiAccessEnv(t, func(cfg *Config) {
		cfg.APIAccess.IncludeTokenInGet = true
	})
	ctx := context.Background()

	created, err := env.engine.CreateAPIAccess(ctx, auth)
	if err != nil {
		t.Fatalf("CreateAPIAccess: %v", err)
	}
	info, err := env.engine.GetAPIAccess(ctx, auth)
	if err != nil {
		t.Fatalf("GetAPIAccess: %v", err)
	}
	if info.Token != created.Token {
		t.Fatalf("GET token = %q, want %q", info.Token, created.Token)
	}
}

func TestAPIAccessNotConfigured(t *testing.T) {
	env := newTestEnv(t, nil)
	env.users.add("u1", "alice", "hunter2", true)
	env.mustSaveClient(t, store.Client{Name: "web", TokenTTL: time.Hour})
	tok := env.mustLogin(t, "alice", "hunter2", "web").Token
	ctx := context.Background()
	auth, err := env.engine.Authenticate(ctx, authHeader(tok))
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	if _, err := env.engine.GetAPIAccess(ctx, auth); !errors.Is(err, ErrAPIAccessNotConfigured) {
		t.Fatalf("err = %v, want ErrAPIAccessNotConfigured", err)
	}
}
