package rate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newLimiterTest(t *testing.T) (*Limiter, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewLimiter(rdb), mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestAllowTwoPerMinute(t *testing.T) {
	l, _, done := newLimiterTest(t)
	defer done()
	ctx := context.Background()

	r := Rate{Limit: 2, Period: time.Minute}
	ident := UserClientIdent("u-1", "web")

	if err := l.Allow(ctx, ident, r); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if err := l.Allow(ctx, ident, r); err != nil {
		t.Fatalf("second request: %v", err)
	}
	if err := l.Allow(ctx, ident, r); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("third request: expected ErrRateLimited, got %v", err)
	}
}

func TestAllowIsolatesIdentities(t *testing.T) {
	l, _, done := newLimiterTest(t)
	defer done()
	ctx := context.Background()

	r := Rate{Limit: 1, Period: time.Minute}

	if err := l.Allow(ctx, UserClientIdent("u-1", "web"), r); err != nil {
		t.Fatalf("first identity: %v", err)
	}
	if err := l.Allow(ctx, UserClientIdent("u-1", "mobile"), r); err != nil {
		t.Fatalf("same user, different client must have its own window: %v", err)
	}
	if err := l.Allow(ctx, AddrIdent("10.0.0.9"), r); err != nil {
		t.Fatalf("anonymous identity: %v", err)
	}
}

func TestAllowZeroRateIsUnlimited(t *testing.T) {
	l, _, done := newLimiterTest(t)
	defer done()
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if err := l.Allow(ctx, "user-u.client-c", Rate{}); err != nil {
			t.Fatalf("request %d with zero rate: %v", i, err)
		}
	}
}

func TestWindowKeyAlignedToWallClock(t *testing.T) {
	l := &Limiter{}
	r := Rate{Limit: 2, Period: time.Minute}

	// Two instants inside the same wall-clock minute share a bucket,
	// regardless of when the identity first appeared.
	base := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)
	if l.windowKey("a", r, base) != l.windowKey("a", r, base.Add(59*time.Second)) {
		t.Fatal("instants within one minute must map to the same bucket")
	}
	if l.windowKey("a", r, base) == l.windowKey("a", r, base.Add(time.Minute)) {
		t.Fatal("crossing the minute boundary must open a new bucket")
	}

	// Identities only differ in the ident segment, so all identities
	// sharing a period roll over at the same instant.
	ka := l.windowKey("a", r, base)
	kb := l.windowKey("b", r, base)
	if strings.TrimPrefix(ka, keyPrefix+"a") != strings.TrimPrefix(kb, keyPrefix+"b") {
		t.Fatalf("bucket suffix mismatch: %q vs %q", ka, kb)
	}
}

func TestWindowCounterExpires(t *testing.T) {
	l, mr, done := newLimiterTest(t)
	defer done()
	ctx := context.Background()

	r := Rate{Limit: 1, Period: time.Minute}
	if err := l.Allow(ctx, "addr-x", r); err != nil {
		t.Fatalf("first request: %v", err)
	}

	left, err := l.Remaining(ctx, "addr-x", r)
	if err != nil || left != 0 {
		t.Fatalf("remaining = %d, %v; want 0, nil", left, err)
	}

	// Once the TTL elapses the counter key is gone and the budget is fresh.
	mr.FastForward(61 * time.Second)
	left, err = l.Remaining(ctx, "addr-x", r)
	if err != nil || left != r.Limit {
		t.Fatalf("remaining after window = %d, %v; want %d, nil", left, err, r.Limit)
	}
}
