package posts

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/barrens-blog/barrens/internal/auth"
	"github.com/barrens-blog/barrens/internal/logger"
	"github.com/barrens-blog/barrens/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 6
	MaxLimit     = 100
	AllCategory  = "All"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrCommentRequired = errors.New("comment content is required")
	ErrAlreadyLiked    = errors.New("you have already liked this comment")
	ErrNotAuthor       = errors.New("not authorized to modify this post")
	ErrFieldRequired   = errors.New("title, excerpt and content cannot be blank")
)

// ListParams selects a page of posts
type ListParams struct {
	Page     int
	Limit    int
	Category string
	All      bool
}

// Page is one page of posts with paging metadata
type Page struct {
	Posts       []models.Post
	Total       int64
	TotalPages  int
	CurrentPage int
}

// CreateParams are the fields of a new post
type CreateParams struct {
	Title    string
	Excerpt  string
	Content  string
	Category string
	Image    string
	ReadTime string
}

// UpdateParams carries the fields to change; nil means unchanged
type UpdateParams struct {
	Title    *string
	Excerpt  *string
	Content  *string
	Category *string
	Image    *string
	ReadTime *string
}

// Service handles posts, comments and comment likes
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates a new posts service
func NewService(db *gorm.DB, zlog zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.Component(zlog, "posts_service"),
	}
}

// List returns posts newest first with their authors
func (s *Service) List(ctx context.Context, params ListParams) (*Page, error) {
	if params.Page < 1 {
		params.Page = DefaultPage
	}
	if params.Limit < 1 {
		params.Limit = DefaultLimit
	}
	if params.Limit > MaxLimit {
		params.Limit = MaxLimit
	}
	// Keeps the offset within int32 for any driver
	if maxPage := math.MaxInt32/params.Limit + 1; params.Page > maxPage {
		params.Page = maxPage
	}

	filtered := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&models.Post{})
		if params.Category != "" && params.Category != AllCategory {
			query = query.Where("category = ?", params.Category)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, auth.StoreError("count posts", err)
	}

	find := filtered().Preload("Author").Order("created_at DESC, id DESC")
	if !params.All {
		find = find.Offset((params.Page - 1) * params.Limit).Limit(params.Limit)
	}

	var posts []models.Post
	if err := find.Find(&posts).Error; err != nil {
		return nil, auth.StoreError("list posts", err)
	}

	page := &Page{
		Posts:       posts,
		Total:       total,
		CurrentPage: params.Page,
		TotalPages:  int(math.Ceil(float64(total) / float64(params.Limit))),
	}
	if params.All {
		page.CurrentPage = 1
		page.TotalPages = 1
	}
	return page, nil
}

// Get returns a post with its author and comments (newest first)
func (s *Service) Get(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at DESC, comments.id DESC")
		}).
		Preload("Comments.Author").
		Where("id = ?", id).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, auth.StoreError("get post", err)
	}
	return &post, nil
}

// Create stores a new post by authorID
func (s *Service) Create(ctx context.Context, authorID string, params CreateParams) (*models.Post, error) {
	post := &models.Post{
		Title:    strings.TrimSpace(params.Title),
		Excerpt:  strings.TrimSpace(params.Excerpt),
		Content:  params.Content,
		AuthorID: authorID,
		Category: params.Category,
		Image:    strings.TrimSpace(params.Image),
		ReadTime: strings.TrimSpace(params.ReadTime),
	}
	if post.Title == "" || post.Excerpt == "" || strings.TrimSpace(post.Content) == "" {
		return nil, ErrFieldRequired
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return nil, auth.StoreError("create post", err)
	}

	s.logger.Info().Str("post_id", post.ID).Str("author_id", authorID).Msg("Post created")
	return post, nil
}

// Update changes a post. Only its author or an admin may do so.
func (s *Service) Update(ctx context.Context, session *auth.SessionData, id string, params UpdateParams) (*models.Post, error) {
	for _, required := range []*string{params.Title, params.Excerpt, params.Content} {
		if required != nil && strings.TrimSpace(*required) == "" {
			return nil, ErrFieldRequired
		}
	}

	post, err := s.findOwned(ctx, session, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	setIf := func(column string, value *string, trim bool) {
		if value == nil {
			return
		}
		v := *value
		if trim {
			v = strings.TrimSpace(v)
		}
		updates[column] = v
	}
	setIf("title", params.Title, true)
	setIf("excerpt", params.Excerpt, true)
	setIf("content", params.Content, false)
	setIf("category", params.Category, false)
	setIf("image", params.Image, true)
	setIf("read_time", params.ReadTime, true)

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(post).Omit(clause.Associations).Updates(updates).Error; err != nil {
			return nil, auth.StoreError("update post", err)
		}
	}

	s.logger.Info().Str("post_id", id).Str("user_id", session.UserID).Msg("Post updated")
	return s.Get(ctx, id)
}

// Delete removes a post and its comments. Only its author or an admin may do so.
func (s *Service) Delete(ctx context.Context, session *auth.SessionData, id string) error {
	post, err := s.findOwned(ctx, session, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(post).Error; err != nil {
		return auth.StoreError("delete post", err)
	}

	s.logger.Info().Str("post_id", id).Str("user_id", session.UserID).Msg("Post deleted")
	return nil
}

func (s *Service) findOwned(ctx context.Context, session *auth.SessionData, id string) (*models.Post, error) {
	if session == nil {
		return nil, auth.ErrNoSession
	}

	var post models.Post
	err := models.FindByID(s.db.WithContext(ctx), id, &post)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, auth.StoreError("find post", err)
	}

	if !session.CanModify(post.AuthorID) {
		return nil, errors.Join(auth.ErrForbidden, ErrNotAuthor)
	}
	return &post, nil
}

// AddComment prepends a comment by authorID to postID
func (s *Service) AddComment(ctx context.Context, postID, authorID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrCommentRequired
	}

	db := s.db.WithContext(ctx)
	if err := s.ensurePost(db, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, auth.StoreError("create comment", err)
	}

	if err := db.Preload("Author").Where("id = ?", comment.ID).First(comment).Error; err != nil {
		return nil, auth.StoreError("load comment", err)
	}

	s.logger.Info().Str("post_id", postID).Str("comment_id", comment.ID).Msg("Comment added")
	return comment, nil
}

// LikeComment records userID's like on a comment and returns the new like count. A repeat like
// fails with ErrAlreadyLiked and returns the unchanged count. The membership check, the liker
// insert and the counter bump commit together or not at all.
func (s *Service) LikeComment(ctx context.Context, postID, commentID, userID string) (int, error) {
	likes := 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comment, err := s.findComment(tx, postID, commentID)
		if err != nil {
			return err
		}
		likes = comment.Likes

		liked, err := hasLiked(tx, commentID, userID)
		if err != nil {
			return err
		}
		if liked {
			return ErrAlreadyLiked
		}

		if err := tx.Create(&models.CommentLike{CommentID: commentID, UserID: userID}).Error; err != nil {
			// Lost a race against an identical request
			if liked, checkErr := hasLiked(tx, commentID, userID); checkErr == nil && liked {
				return ErrAlreadyLiked
			}
			return auth.StoreError("record like", err)
		}

		if err := tx.Model(&models.Comment{}).
			Where("id = ?", commentID).
			UpdateColumn("likes", gorm.Expr("likes + ?", 1)).Error; err != nil {
			return auth.StoreError("increment likes", err)
		}

		likes = comment.Likes + 1
		return nil
	})
	if err != nil {
		return likes, err
	}

	s.logger.Debug().Str("comment_id", commentID).Str("user_id", userID).Int("likes", likes).Msg("Comment liked")
	return likes, nil
}

// HasLiked reports whether userID has liked the comment
func (s *Service) HasLiked(ctx context.Context, postID, commentID, userID string) (bool, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.findComment(db, postID, commentID); err != nil {
		return false, err
	}
	return hasLiked(db, commentID, userID)
}

// LikedComments returns the IDs of comments on postID that userID has liked
func (s *Service) LikedComments(ctx context.Context, postID, userID string) (map[string]bool, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.CommentLike{}).
		Joins("JOIN comments ON comments.id = comment_likes.comment_id").
		Where("comments.post_id = ? AND comment_likes.user_id = ?", postID, userID).
		Pluck("comment_likes.comment_id", &ids).Error
	if err != nil {
		return nil, auth.StoreError("liked comments", err)
	}

	liked := make(map[string]bool, len(ids))
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

func (s *Service) ensurePost(db *gorm.DB, postID string) error {
	var count int64
	if err := db.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return auth.StoreError("find post", err)
	}
	if count == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *Service) findComment(db *gorm.DB, postID, commentID string) (*models.Comment, error) {
	if err := s.ensurePost(db, postID); err != nil {
		return nil, err
	}

	var comment models.Comment
	err := db.Where("id = ? AND post_id = ?", commentID, postID).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, auth.StoreError("find comment", err)
	}
	return &comment, nil
}

func hasLiked(db *gorm.DB, commentID, userID string) (bool, error) {
	var count int64
	err := db.Model(&models.CommentLike{}).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Count(&count).Error
	if err != nil {
		return false, auth.StoreError("check like", err)
	}
	return count > 0, nil
}
