package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/barrens-blog/barrens/internal/models"
)

// memoryUserStore is a simple in-memory user store for testing
type memoryUserStore struct {
	mu      sync.Mutex
	users   map[string]*models.User
	failErr error
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[string]*models.User)}
}

func (m *memoryUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memoryUserStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	for _, u := range m.users {
		if u.Email == email || u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memoryUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memoryUserStore) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	if user.ID == "" {
		user.ID = ulid.Make().String()
	}
	if user.Role == "" {
		user.Role = models.RoleMember
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memoryUserStore) delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

func (m *memoryUserStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// memoryDenylist is a simple in-memory denylist for testing
type memoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	failErr error
}

func newMemoryDenylist() *memoryDenylist {
	return &memoryDenylist{entries: make(map[string]time.Time)}
}

func (m *memoryDenylist) Revoke(ctx context.Context, tokenID, userID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.entries[tokenID] = expiresAt
	return nil
}

func (m *memoryDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return false, m.failErr
	}
	_, ok := m.entries[tokenID]
	return ok, nil
}

var errStoreDown = StoreError("find user", errors.New("database is locked"))
