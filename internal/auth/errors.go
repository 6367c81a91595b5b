package auth

import (
	"errors"
	"fmt"
)

// Error taxonomy for the credential verifier and session guard. Callers match with errors.Is.
var (
	ErrDuplicateIdentity  = errors.New("duplicate identity")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// Refinements. Each still matches its parent kind.
var (
	ErrEmailTaken    = fmt.Errorf("%w: email already in use", ErrDuplicateIdentity)
	ErrUsernameTaken = fmt.Errorf("%w: username already taken", ErrDuplicateIdentity)

	ErrTokenInvalid = fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrTokenRevoked = fmt.Errorf("%w: token revoked", ErrUnauthenticated)
	ErrUserMissing  = fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
	ErrNoSession    = fmt.Errorf("%w: no session", ErrUnauthenticated)

	// ErrPasswordTooLong rejects passwords bcrypt would refuse to hash
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

	// ErrUserNotFound is returned by user stores for lookups that match nothing
	ErrUserNotFound = errors.New("user not found")
)

// StoreError wraps a persistence failure so it matches ErrStoreUnavailable while keeping the cause
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
