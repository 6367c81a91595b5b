package auth

import (
	"context"
	"errors"

	"github.com/barrens-blog/barrens/internal/models"
)

// Guard resolves session tokens to identities and enforces role requirements
type Guard struct {
	codec    *TokenCodec
	users    UserStore
	denylist Denylist
}

// NewGuard creates a session guard. denylist may be nil.
func NewGuard(codec *TokenCodec, users UserStore, denylist Denylist) *Guard {
	return &Guard{codec: codec, users: users, denylist: denylist}
}

// Resolve turns a raw token into session data.
//
// An empty token yields (nil, nil): no identity, not an error. Otherwise the signature,
// expiry, revocation status and subject are checked in that order; any failure matches
// ErrUnauthenticated, except store failures which match ErrStoreUnavailable.
func (g *Guard) Resolve(ctx context.Context, token string) (*SessionData, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := g.codec.Verify(token)
	if err != nil {
		return nil, err
	}

	if g.denylist != nil {
		revoked, err := g.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	user, err := g.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrUserMissing
	}
	if err != nil {
		return nil, err
	}

	return &SessionData{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Authorize checks that session exists and carries at least the required role
func (g *Guard) Authorize(session *SessionData, required models.Role) error {
	if session == nil {
		return ErrNoSession
	}
	if !session.Role.Allows(required) {
		return ErrForbidden
	}
	return nil
}
