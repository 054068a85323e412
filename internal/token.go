package internal

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// NewTokenString returns a lowercase-hex token of exactly length
// characters, backed by length/2 bytes from crypto/rand. There is no
// math/rand fallback; entropy failures surface as errors.
func NewTokenString(length int) (string, error) {
	if length < 2 || length%2 != 0 {
		return "", errors.New("token length must be a positive even number")
	}

	raw := make([]byte, length/2)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	return hex.EncodeToString(raw), nil
}
