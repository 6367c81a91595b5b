package revocations

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/barrens-blog/barrens/internal/auth"
	"github.com/barrens-blog/barrens/internal/models"
)

// Store is a token-id denylist. Entries live exactly as long as the token they revoke.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore creates a denylist backed by the revoked_tokens table
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

var _ auth.Denylist = (*Store)(nil)

// Revoke records tokenID as revoked. Revoking twice is a no-op.
func (s *Store) Revoke(ctx context.Context, tokenID, userID string, expiresAt time.Time) error {
	entry := models.RevokedToken{
		ID:        tokenID,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry).Error
	if err != nil {
		return auth.StoreError("revoke token", err)
	}
	return nil
}

// IsRevoked reports whether tokenID is on the denylist
func (s *Store) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.RevokedToken{}).
		Where("id = ?", tokenID).
		Count(&count).Error
	if err != nil {
		return false, auth.StoreError("check revocation", err)
	}
	return count > 0, nil
}

// PurgeExpired deletes entries whose tokens have expired on their own and returns how many went
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now()).
		Delete(&models.RevokedToken{})
	if result.Error != nil {
		return 0, auth.StoreError("purge revocations", result.Error)
	}
	return result.RowsAffected, nil
}
