package auth

import (
	"time"

	"github.com/barrens-blog/barrens/internal/models"
)

// SessionData represents the authenticated session context for a request
type SessionData struct {
	UserID    string      `json:"userId"`
	Username  string      `json:"username"`
	Role      models.Role `json:"role"`
	TokenID   string      `json:"-"`
	ExpiresAt time.Time   `json:"-"`
}

// IsAdmin reports whether the session carries the admin role
func (s *SessionData) IsAdmin() bool {
	return s != nil && s.Role.IsAdmin()
}

// CanModify reports whether the session may change a resource owned by ownerID
func (s *SessionData) CanModify(ownerID string) bool {
	if s == nil {
		return false
	}
	return s.UserID == ownerID || s.IsAdmin()
}
