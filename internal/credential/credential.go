// Package credential hashes and verifies account secrets.
package credential

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptySecret is returned when hashing an empty secret.
var ErrEmptySecret = errors.New("secret must not be empty")

// Hash returns the bcrypt hash of secret.
func Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hashed), nil
}

// Matches reports whether secret matches the stored hash. An empty secret
// never matches.
func Matches(hash, secret string) bool {
	if secret == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
