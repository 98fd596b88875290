// Package auth provides password hashing, token generation and request identity helpers.
package auth

import "fmt"

// Supported hasher names.
const (
	HasherArgon2id = "argon2id"
	HasherBcrypt   = "bcrypt"
)

// Hasher hashes and verifies passwords.
// Verify must compare in constant time.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// NewHasher returns the hasher registered under name.
// bcryptCost is ignored for argon2id.
func NewHasher(name string, bcryptCost int) (Hasher, error) {
	switch name {
	case "", HasherArgon2id:
		return NewArgon2Hasher(nil), nil
	case HasherBcrypt:
		return NewBcryptHasher(bcryptCost), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}
