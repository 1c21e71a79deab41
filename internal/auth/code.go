package auth

import (
	"crypto/rand"  // secure random number generation
	"encoding/hex" // hex encoding for code strings

	"golang.org/x/crypto/bcrypt"
)

// NewConfirmationCode returns a cryptographically random code string.
// The code is delivered to the user out-of-band; only its bcrypt hash
// is persisted.
func NewConfirmationCode() (string, error) {
	buf := make([]byte, 16) // 16 bytes -> 32 hex chars
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashCode returns the bcrypt hash of a confirmation code using the
// given cost. Hashing at rest means a leaked confirmation_codes table
// cannot be exchanged for tokens.
func HashCode(code string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(code), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyCode safely compares a stored hash with a submitted code.
func VerifyCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
