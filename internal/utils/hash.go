package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes the given plaintext password with bcrypt.
//
// A cost of 0 (or any value below bcrypt.MinCost) falls back to
// bcrypt.DefaultCost, so callers can pass the configured cost directly
// without checking whether it was set.
//
// Parameters:
//
//	password - plaintext password to hash
//	cost     - bcrypt cost factor, 0 means bcrypt.DefaultCost
//
// Returns:
//
//	string - the bcrypt hash, safe to store
//	error  - non-nil if hashing fails (e.g. password longer than 72 bytes)
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("error occurred during hashing password: %w", err)
	}

	return string(hashed), nil
}

// VerifyPassword compares a stored bcrypt hash with a candidate plaintext
// password. Returns true only when the password matches the hash.
func VerifyPassword(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
