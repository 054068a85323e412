package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tokengate/tokengate"
	"github.com/tokengate/tokengate/password"
)

// userFile is the on-disk user database: a JSON array of entries with
// argon2id password hashes. Suitable for small deployments; anything
// larger should implement tokengate.UserProvider against a real user
// store.
type userFileEntry struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Active       bool   `json:"active"`
}

type fileUsers struct {
	byUsername map[string]userFileEntry
	byID       map[string]userFileEntry
}

func loadUsers(path string) (*fileUsers, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading users file: %w", err)
	}
	var entries []userFileEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing users file: %w", err)
	}

	f := &fileUsers{
		byUsername: make(map[string]userFileEntry, len(entries)),
		byID:       make(map[string]userFileEntry, len(entries)),
	}
	for _, e := range entries {
		if e.ID == "" || e.Username == "" {
			return nil, fmt.Errorf("users file: entry %q missing id or username", e.Username)
		}
		if _, dup := f.byUsername[e.Username]; dup {
			return nil, fmt.Errorf("users file: duplicate username %q", e.Username)
		}
		f.byUsername[e.Username] = e
		f.byID[e.ID] = e
	}
	return f, nil
}

func (f *fileUsers) ValidateCredentials(_ context.Context, username, pw string) (tokengate.UserRecord, error) {
	entry, ok := f.byUsername[username]
	if !ok {
		// Burn comparable time anyway so username probing reveals
		// nothing through latency.
		_, _ = password.Verify(pw, dummyHash)
		return tokengate.UserRecord{}, tokengate.ErrInvalidCredentials
	}
	match, err := password.Verify(pw, entry.PasswordHash)
	if err != nil || !match {
		return tokengate.UserRecord{}, tokengate.ErrInvalidCredentials
	}
	return entry.record(), nil
}

func (f *fileUsers) GetUser(_ context.Context, userID string) (tokengate.UserRecord, error) {
	entry, ok := f.byID[userID]
	if !ok {
		return tokengate.UserRecord{}, tokengate.ErrUserNotFound
	}
	return entry.record(), nil
}

func (e userFileEntry) record() tokengate.UserRecord {
	return tokengate.UserRecord{ID: e.ID, Username: e.Username, Active: e.Active}
}

// dummyHash is a throwaway argon2id hash of a random string, used to
// equalize verification timing for unknown usernames.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=2$9Yw1lFTW2RdNyL3dEnVm1g$S3f1kq0yTf0zR0cVb4rW8m7CqkXhIY0cPMeeOBvJzWE"
