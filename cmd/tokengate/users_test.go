package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tokengate/tokengate"
	"github.com/tokengate/tokengate/password"
)

func writeUsersFile(t *testing.T, entries []userFileEntry) string {
	t.Helper()
	raw, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func testHash(t *testing.T, pw string) string {
	t.Helper()
	hash, err := password.Hash(pw, password.Params{
		MemoryKB:    8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	return hash
}

func TestLoadUsersAndValidate(t *testing.T) {
	path := writeUsersFile(t, []userFileEntry{
		{ID: "u1", Username: "alice", PasswordHash: testHash(t, "hunter2"), Active: true},
		{ID: "u2", Username: "bob", PasswordHash: testHash(t, "secret"), Active: false},
	})
	users, err := loadUsers(path)
	if err != nil {
		t.Fatalf("loadUsers: %v", err)
	}

	ctx := context.Background()
	u, err := users.ValidateCredentials(ctx, "alice", "hunter2")
	if err != nil {
		t.Fatalf("ValidateCredentials: %v", err)
	}
	if u.ID != "u1" || !u.Active {
		t.Fatalf("user = %+v", u)
	}

	if _, err := users.ValidateCredentials(ctx, "alice", "wrong"); !errors.Is(err, tokengate.ErrInvalidCredentials) {
		t.Fatalf("bad password err = %v", err)
	}
	if _, err := users.ValidateCredentials(ctx, "nobody", "hunter2"); !errors.Is(err, tokengate.ErrInvalidCredentials) {
		t.Fatalf("unknown user err = %v", err)
	}

	// Inactive users still validate; the engine enforces activity.
	if u, err = users.ValidateCredentials(ctx, "bob", "secret"); err != nil || u.Active {
		t.Fatalf("bob = %+v, err = %v", u, err)
	}

	if u, err = users.GetUser(ctx, "u2"); err != nil || u.Username != "bob" {
		t.Fatalf("GetUser(u2) = %+v, err = %v", u, err)
	}
	if _, err := users.GetUser(ctx, "ghost"); !errors.Is(err, tokengate.ErrUserNotFound) {
		t.Fatalf("GetUser(ghost) err = %v", err)
	}
}

func TestLoadUsersRejectsBadFiles(t *testing.T) {
	if _, err := loadUsers(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for a missing file")
	}

	dup := writeUsersFile(t, []userFileEntry{
		{ID: "u1", Username: "alice", Active: true},
		{ID: "u2", Username: "alice", Active: true},
	})
	if _, err := loadUsers(dup); err == nil {
		t.Fatal("expected error for duplicate usernames")
	}

	incomplete := writeUsersFile(t, []userFileEntry{{Username: "alice"}})
	if _, err := loadUsers(incomplete); err == nil {
		t.Fatal("expected error for a missing id")
	}
}
