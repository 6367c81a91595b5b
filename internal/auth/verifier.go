package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/barrens-blog/barrens/internal/logger"
	"github.com/barrens-blog/barrens/internal/models"
)

// UserStore is the persistence capability the verifier and guard need. Lookups that match
// nothing return ErrUserNotFound; infrastructure failures match ErrStoreUnavailable.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// Denylist records revoked token ids until the token would have expired anyway
type Denylist interface {
	Revoke(ctx context.Context, tokenID, userID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RegisterInput is a registration candidate
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Avatar   string
	Role     models.Role // Empty means member; only provisioning sets anything else
}

// LoginInput is a login attempt
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the issued token and the public user record
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Verifier registers users and exchanges credentials for session tokens
type Verifier struct {
	users    UserStore
	hasher   *Hasher
	codec    *TokenCodec
	denylist Denylist
	logger   zerolog.Logger
}

// NewVerifier creates a credential verifier. denylist may be nil, in which case logout
// only relies on the client discarding its cookie.
func NewVerifier(users UserStore, hasher *Hasher, codec *TokenCodec, denylist Denylist, zlog zerolog.Logger) *Verifier {
	return &Verifier{
		users:    users,
		hasher:   hasher,
		codec:    codec,
		denylist: denylist,
		logger:   logger.Component(zlog, "credential_verifier"),
	}
}

// Register stores a new user with a hashed password. It never issues a session.
func (v *Verifier) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if len(in.Password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	if err := v.checkAvailable(ctx, in.Username, in.Email); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return nil, errors.New("unknown role " + string(role))
	}

	hash, err := v.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Avatar:       strings.TrimSpace(in.Avatar),
		Role:         role,
	}

	if err := v.users.Create(ctx, user); err != nil {
		// A concurrent registration may have claimed the name between the check and the insert
		if dupErr := v.checkAvailable(ctx, in.Username, in.Email); dupErr != nil {
			return nil, dupErr
		}
		return nil, err
	}

	v.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	return user, nil
}

func (v *Verifier) checkAvailable(ctx context.Context, username, email string) error {
	existing, err := v.users.FindByUsernameOrEmail(ctx, username, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.Email == email {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

// Login verifies credentials and issues a session token. Unknown email and wrong password
// are indistinguishable to the caller.
func (v *Verifier) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	user, err := v.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		v.hasher.burn(in.Password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := v.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		v.logger.Error().Err(err).Str("user_id", user.ID).Msg("Stored password hash is unreadable")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := v.codec.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	v.logger.Info().Str("user_id", user.ID).Msg("User logged in")
	return &LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	}, nil
}

// Logout revokes token when it is still valid. It always succeeds; a missing, malformed or
// already revoked token is not an error.
func (v *Verifier) Logout(ctx context.Context, token string) {
	if token == "" || v.denylist == nil {
		return
	}

	claims, err := v.codec.Verify(token)
	if err != nil {
		return
	}

	if err := v.denylist.Revoke(ctx, claims.ID, claims.Subject, claims.ExpiresAt.Time); err != nil {
		v.logger.Warn().Err(err).Str("user_id", claims.Subject).Msg("Failed to revoke session token")
		return
	}
	v.logger.Info().Str("user_id", claims.Subject).Msg("User logged out")
}

// CurrentUser returns the user behind session
func (v *Verifier) CurrentUser(ctx context.Context, session *SessionData) (*models.User, error) {
	if session == nil || session.UserID == "" {
		return nil, ErrNoSession
	}

	user, err := v.users.FindByID(ctx, session.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrUserMissing
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
