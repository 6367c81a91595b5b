package users

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/barrens-blog/barrens/internal/auth"
	"github.com/barrens-blog/barrens/internal/models"
)

// Store is the gorm-backed user store used by the credential verifier and session guard
type Store struct {
	db *gorm.DB
}

// NewStore creates a user store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ auth.UserStore = (*Store)(nil)

// FindByEmail looks up a user by email
func (s *Store) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.first(ctx, "find user by email", "email = ?", email)
}

// FindByUsernameOrEmail returns any user holding either identity
func (s *Store) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	return s.first(ctx, "find user by username or email", "username = ? OR email = ?", username, email)
}

// FindByID looks up a user by ID
func (s *Store) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.first(ctx, "find user by id", "id = ?", id)
}

// Create inserts a new user
func (s *Store) Create(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return auth.StoreError("create user", err)
	}
	return nil
}

func (s *Store) first(ctx context.Context, op string, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, auth.StoreError(op, err)
	}
	return &user, nil
}
