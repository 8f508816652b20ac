package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Key purposes derived from the server secret
const (
	PurposeStreamTicket = "zenbox stream ticket v1"
	PurposeSessionSeal  = "zenbox session seal v1"
)

// DeriveKey expands the server secret into a size-byte key for one purpose,
// so a single configured secret never signs and encrypts with the same bytes.
func DeriveKey(secret []byte, purpose string, size int) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("empty secret")
	}
	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(purpose)), key); err != nil {
		return nil, fmt.Errorf("derive %q key: %w", purpose, err)
	}
	return key, nil
}

// RandomSecret returns n random bytes, used when no secret is configured
func RandomSecret(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
