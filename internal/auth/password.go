package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost balances login latency against brute-force cost
const DefaultBcryptCost = 12

// MaxPasswordBytes is the longest input bcrypt accepts
const MaxPasswordBytes = 72

// Hasher hashes and verifies passwords with bcrypt
type Hasher struct {
	cost int

	// dummy is compared against when no user matched so unknown emails cost the same as wrong passwords
	dummy []byte
}

// NewHasher creates a hasher; cost is clamped to bcrypt's valid range
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("barrens-dummy-password"), cost)
	return &Hasher{cost: cost, dummy: dummy}
}

// Hash creates a salted bcrypt hash of password
func (h *Hasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash
func (h *Hasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// burn performs a comparison whose result is discarded
func (h *Hasher) burn(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}
