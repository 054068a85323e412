package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newStoreTest(t *testing.T) (*Store, *redis.Client, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(rdb, "tg"), rdb, func() {
		rdb.Close()
		mr.Close()
	}
}

func testToken(token, id, userID, client string) *AuthToken {
	now := time.Now().UTC().Truncate(time.Second)
	return &AuthToken{
		ID:       id,
		Token:    token,
		UserID:   userID,
		Username: "user-" + userID,
		Client:   client,
		Created:  now,
		Expiry:   now.Add(24 * time.Hour),
	}
}

func TestCreateAndLookups(t *testing.T) {
	s, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	record := testToken("aaaa", "id-1", "u-1", "web")
	if err := s.CreateToken(ctx, record); err != nil {
		t.Fatalf("create: %v", err)
	}

	byToken, err := s.GetByToken(ctx, "aaaa")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if byToken.UserID != "u-1" || byToken.Client != "web" || byToken.ID != "id-1" {
		t.Fatalf("unexpected record %+v", byToken)
	}

	byPair, err := s.GetByUserClient(ctx, "u-1", "web")
	if err != nil || byPair.Token != "aaaa" {
		t.Fatalf("get by pair: %+v, %v", byPair, err)
	}

	byID, err := s.GetByID(ctx, "id-1")
	if err != nil || byID.Token != "aaaa" {
		t.Fatalf("get by id: %+v, %v", byID, err)
	}
}

func TestCreateEnforcesPairUniqueness(t *testing.T) {
	s, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := s.CreateToken(ctx, testToken("aaaa", "id-1", "u-1", "web")); err != nil {
		t.Fatalf("first create: %v", err)
	}

	err := s.CreateToken(ctx, testToken("bbbb", "id-2", "u-1", "web"))
	if !errors.Is(err, ErrDuplicatePair) {
		t.Fatalf("expected ErrDuplicatePair, got %v", err)
	}

	// The loser must not have left partial state behind.
	if _, err := s.GetByToken(ctx, "bbbb"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("loser token persisted: %v", err)
	}

	// Same user, different client is fine.
	if err := s.CreateToken(ctx, testToken("cccc", "id-3", "u-1", "mobile")); err != nil {
		t.Fatalf("different client: %v", err)
	}
}

func TestCreateDetectsTokenCollision(t *testing.T) {
	s, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := s.CreateToken(ctx, testToken("aaaa", "id-1", "u-1", "web")); err != nil {
		t.Fatalf("first create: %v", err)
	}

	err := s.CreateToken(ctx, testToken("aaaa", "id-2", "u-2", "web"))
	if !errors.Is(err, ErrTokenCollision) {
		t.Fatalf("expected ErrTokenCollision, got %v", err)
	}
}

func TestDeleteRemovesAllIndexes(t *testing.T) {
	s, rdb, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	record := testToken("aaaa", "id-1", "u-1", "web")
	if err := s.CreateToken(ctx, record); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Delete(ctx, "aaaa"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Idempotent.
	if err := s.Delete(ctx, "aaaa"); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	if _, err := s.GetByUserClient(ctx, "u-1", "web"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("pair index survived delete: %v", err)
	}
	if _, err := s.GetByID(ctx, "id-1"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("id index survived delete: %v", err)
	}
	members, err := rdb.SMembers(ctx, s.userKey("u-1")).Result()
	if err != nil {
		t.Fatalf("smembers: %v", err)
	}
	if len(members) != 0 {
		t.Fatalf("user index survived delete: %v", members)
	}

	// The pair is free again.
	if err := s.CreateToken(ctx, testToken("bbbb", "id-2", "u-1", "web")); err != nil {
		t.Fatalf("recreate after delete: %v", err)
	}
}

func TestDeleteAllForUserLeavesOtherUsersAlone(t *testing.T) {
	s, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	for i, client := range []string{"web", "mobile", "cli"} {
		if err := s.CreateToken(ctx, testToken("a"+client, "ida-"+client, "u-a", client)); err != nil {
			t.Fatalf("create a%d: %v", i, err)
		}
		if err := s.CreateToken(ctx, testToken("b"+client, "idb-"+client, "u-b", client)); err != nil {
			t.Fatalf("create b%d: %v", i, err)
		}
	}

	if err := s.DeleteAllForUser(ctx, "u-a"); err != nil {
		t.Fatalf("delete all: %v", err)
	}

	remainingA, err := s.ListForUser(ctx, "u-a")
	if err != nil || len(remainingA) != 0 {
		t.Fatalf("user a has %d tokens (%v), want 0", len(remainingA), err)
	}
	remainingB, err := s.ListForUser(ctx, "u-b")
	if err != nil || len(remainingB) != 3 {
		t.Fatalf("user b has %d tokens (%v), want 3", len(remainingB), err)
	}
}

func TestUpdateExpiry(t *testing.T) {
	s, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	record := testToken("aaaa", "id-1", "u-1", "web")
	if err := s.CreateToken(ctx, record); err != nil {
		t.Fatalf("create: %v", err)
	}

	newExpiry := record.Expiry.Add(48 * time.Hour)
	updated, err := s.UpdateExpiry(ctx, "aaaa", newExpiry)
	if err != nil {
		t.Fatalf("update expiry: %v", err)
	}
	if !updated.Expiry.Equal(newExpiry) {
		t.Fatalf("expiry = %v, want %v", updated.Expiry, newExpiry)
	}
	if !updated.Created.Equal(record.Created) {
		t.Fatal("created timestamp must be immutable across renewal")
	}

	if _, err := s.UpdateExpiry(ctx, "missing", newExpiry); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestHasExpired(t *testing.T) {
	tok := &AuthToken{Expiry: time.Now().Add(-time.Minute)}
	if !tok.HasExpired() {
		t.Fatal("past expiry must report expired")
	}
	tok.Expiry = time.Now().Add(time.Minute)
	if tok.HasExpired() {
		t.Fatal("future expiry must not report expired")
	}
	tok.Expiry = time.Time{}
	if tok.HasExpired() {
		t.Fatal("zero expiry means the token never expires")
	}
}
