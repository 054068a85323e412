package internal

import (
	"regexp"
	"testing"
)

func TestNewTokenStringLengthAndAlphabet(t *testing.T) {
	hexRe := regexp.MustCompile(`^[0-9a-f]+$`)

	for _, length := range []int{16, 32, 64, 128} {
		token, err := NewTokenString(length)
		if err != nil {
			t.Fatalf("NewTokenString(%d): %v", length, err)
		}
		if len(token) != length {
			t.Fatalf("length %d: got %d chars", length, len(token))
		}
		if !hexRe.MatchString(token) {
			t.Fatalf("token %q is not lowercase hex", token)
		}
	}
}

func TestNewTokenStringRejectsBadLengths(t *testing.T) {
	for _, length := range []int{0, -2, 1, 63} {
		if _, err := NewTokenString(length); err == nil {
			t.Fatalf("NewTokenString(%d): expected error", length)
		}
	}
}

func TestNewTokenStringUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		token, err := NewTokenString(64)
		if err != nil {
			t.Fatalf("NewTokenString: %v", err)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token generated: %q", token)
		}
		seen[token] = struct{}{}
	}
}
