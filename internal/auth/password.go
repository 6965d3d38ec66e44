package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is the bcrypt work factor. 12 roughly doubles the 2025 default
// and keeps a single hash under ~250ms on commodity hardware.
const hashCost = 12

// HashPassword hashes a plaintext password with bcrypt.
//
// The returned string embeds the salt and cost, so it is self-describing
// and can be verified without additional parameters. Hashing failures
// (over-long input, broken entropy source) wrap ErrHashFailure so callers
// can distinguish a system fault from a bad credential.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHashFailure, err)
	}
	return string(hash), nil
}

// VerifyPassword checks a plaintext password against a stored bcrypt hash.
// It returns false for a mismatch and for malformed or non-bcrypt hashes,
// never an error a caller could leak to a client.
func VerifyPassword(password, encodedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
}
