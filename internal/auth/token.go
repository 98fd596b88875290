package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// TokenBytes is the amount of entropy in an issued token.
// Hex encoded it yields a 40 character value.
const TokenBytes = 20

// GenerateToken returns a new opaque bearer token value.
func GenerateToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// TokenDigest returns the SHA-256 hex digest under which a token is stored.
// Tokens carry 160 bits of entropy, so a fast hash is sufficient here.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
