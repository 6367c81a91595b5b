package users

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/barrens-blog/barrens/internal/auth"
	"github.com/barrens-blog/barrens/internal/logger"
	"github.com/barrens-blog/barrens/internal/models"
)

const recentActivityLimit = 5

var (
	ErrAvatarRequired = errors.New("avatar URL is required")
	ErrDeleteSelf     = errors.New("cannot delete yourself")
)

// Activity is one entry of a user's recent activity feed
type Activity struct {
	Type        string    `json:"type"` // post, comment
	Description string    `json:"description"`
	PostID      string    `json:"postId"`
	Date        time.Time `json:"date"`
}

// Stats summarizes a user's contributions
type Stats struct {
	PostCount      int64      `json:"postCount"`
	CommentCount   int64      `json:"commentCount"`
	LikesReceived  int64      `json:"likesReceived"`
	RecentActivity []Activity `json:"recentActivity"`
}

// Service handles profile and account administration
type Service struct {
	db     *gorm.DB
	store  *Store
	logger zerolog.Logger
}

// NewService creates a new users service
func NewService(db *gorm.DB, zlog zerolog.Logger) *Service {
	return &Service{
		db:     db,
		store:  NewStore(db),
		logger: logger.Component(zlog, "users_service"),
	}
}

// Store returns the underlying user store
func (s *Service) Store() *Store {
	return s.store
}

// Get returns a user by ID
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.FindByID(ctx, id)
}

// Stats gathers post/comment counts and the most recent activity for userID
func (s *Service) Stats(ctx context.Context, userID string) (*models.User, *Stats, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	db := s.db.WithContext(ctx)
	stats := &Stats{}

	if err := db.Model(&models.Post{}).Where("author_id = ?", userID).Count(&stats.PostCount).Error; err != nil {
		return nil, nil, auth.StoreError("count posts", err)
	}
	if err := db.Model(&models.Comment{}).Where("author_id = ?", userID).Count(&stats.CommentCount).Error; err != nil {
		return nil, nil, auth.StoreError("count comments", err)
	}
	if err := db.Model(&models.Comment{}).
		Where("author_id = ?", userID).
		Select("COALESCE(SUM(likes), 0)").
		Scan(&stats.LikesReceived).Error; err != nil {
		return nil, nil, auth.StoreError("sum likes", err)
	}

	var posts []models.Post
	if err := db.Select("id", "title", "created_at").
		Where("author_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(recentActivityLimit).
		Find(&posts).Error; err != nil {
		return nil, nil, auth.StoreError("recent posts", err)
	}

	var comments []models.Comment
	if err := db.Select("id", "post_id", "created_at").
		Where("author_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(recentActivityLimit).
		Find(&comments).Error; err != nil {
		return nil, nil, auth.StoreError("recent comments", err)
	}

	titles, err := s.postTitles(ctx, comments)
	if err != nil {
		return nil, nil, err
	}

	activity := make([]Activity, 0, len(posts)+len(comments))
	for _, p := range posts {
		activity = append(activity, Activity{
			Type:        "post",
			Description: fmt.Sprintf("You created post %q", p.Title),
			PostID:      p.ID,
			Date:        p.CreatedAt,
		})
	}
	for _, c := range comments {
		activity = append(activity, Activity{
			Type:        "comment",
			Description: fmt.Sprintf("You commented on %q", titles[c.PostID]),
			PostID:      c.PostID,
			Date:        c.CreatedAt,
		})
	}

	sort.SliceStable(activity, func(i, j int) bool {
		return activity[i].Date.After(activity[j].Date)
	})
	if len(activity) > recentActivityLimit {
		activity = activity[:recentActivityLimit]
	}
	stats.RecentActivity = activity

	return user, stats, nil
}

func (s *Service) postTitles(ctx context.Context, comments []models.Comment) (map[string]string, error) {
	titles := make(map[string]string, len(comments))
	if len(comments) == 0 {
		return titles, nil
	}

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.PostID)
	}

	var posts []models.Post
	if err := s.db.WithContext(ctx).Select("id", "title").Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, auth.StoreError("comment post titles", err)
	}
	for _, p := range posts {
		titles[p.ID] = p.Title
	}
	return titles, nil
}

// ChangeAvatar updates the avatar URL of userID
func (s *Service) ChangeAvatar(ctx context.Context, userID, avatar string) (*models.User, error) {
	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		return nil, ErrAvatarRequired
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("avatar", avatar)
	if result.Error != nil {
		return nil, auth.StoreError("update avatar", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, auth.ErrUserNotFound
	}

	s.logger.Info().Str("user_id", userID).Msg("Avatar updated")
	return s.store.FindByID(ctx, userID)
}

// List returns all users, newest first
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, auth.StoreError("list users", err)
	}
	return users, nil
}

// Delete removes userID; their posts, comments and likes on those comments cascade.
// Outstanding session tokens for the user stop resolving because the guard requires a live user.
func (s *Service) Delete(ctx context.Context, userID, actorID string) error {
	if userID == actorID {
		return ErrDeleteSelf
	}

	result := s.db.WithContext(ctx).Where("id = ?", userID).Delete(&models.User{})
	if result.Error != nil {
		return auth.StoreError("delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return auth.ErrUserNotFound
	}

	s.logger.Info().Str("user_id", userID).Str("deleted_by", actorID).Msg("User deleted")
	return nil
}
