package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/barrens-blog/barrens/internal/auth"
	"github.com/barrens-blog/barrens/internal/models"
	"github.com/barrens-blog/barrens/internal/posts"
)

const (
	dateLayout       = "January 2, 2006"
	defaultAuthorBio = "Author at Barrens Blog"
)

type CreatePostRequest struct {
	Title    string `json:"title" binding:"required" validate:"required,max=100"`
	Excerpt  string `json:"excerpt" binding:"required" validate:"required,max=200"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category" binding:"required" validate:"required,category"`
	Image    string `json:"image" validate:"omitempty,url"`
	ReadTime string `json:"readTime" validate:"omitempty,max=20"`
}

type UpdatePostRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=100"`
	Excerpt  *string `json:"excerpt" validate:"omitempty,min=1,max=200"`
	Content  *string `json:"content" validate:"omitempty,min=1"`
	Category *string `json:"category" validate:"omitempty,category"`
	Image    *string `json:"image" validate:"omitempty,url"`
	ReadTime *string `json:"readTime" validate:"omitempty,max=20"`
}

type AddCommentRequest struct {
	Content string `json:"content"`
}

// PostSummary is a post as shown in listings
type PostSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Excerpt      string `json:"excerpt"`
	Author       string `json:"author"`
	AuthorAvatar string `json:"authorAvatar"`
	Date         string `json:"date"`
	Category     string `json:"category"`
	Image        string `json:"image"`
	ReadTime     string `json:"readTime"`
}

// PostDetail is a full post with its comments
type PostDetail struct {
	PostSummary
	AuthorID  string        `json:"authorId"`
	Content   string        `json:"content"`
	AuthorBio string        `json:"authorBio"`
	Comments  []CommentView `json:"comments"`
}

// CommentView is a comment as shown under a post. HasLiked is only set for signed-in readers.
type CommentView struct {
	ID           string `json:"id"`
	Author       string `json:"author"`
	AuthorAvatar string `json:"authorAvatar"`
	Date         string `json:"date"`
	Content      string `json:"content"`
	Likes        int    `json:"likes"`
	HasLiked     *bool  `json:"hasLiked,omitempty"`
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func toPostSummary(p *models.Post) PostSummary {
	return PostSummary{
		ID:           p.ID,
		Title:        p.Title,
		Excerpt:      p.Excerpt,
		Author:       p.Author.Username,
		AuthorAvatar: p.Author.Avatar,
		Date:         formatDate(p.CreatedAt),
		Category:     p.Category,
		Image:        p.Image,
		ReadTime:     p.ReadTime,
	}
}

func toCommentView(c *models.Comment) CommentView {
	return CommentView{
		ID:           c.ID,
		Author:       c.Author.Username,
		AuthorAvatar: c.Author.Avatar,
		Date:         formatDate(c.CreatedAt),
		Content:      c.Content,
		Likes:        c.Likes,
	}
}

// postRef is the short form returned after a write
func postRef(p *models.Post) gin.H {
	return gin.H{
		"id":       p.ID,
		"title":    p.Title,
		"excerpt":  p.Excerpt,
		"category": p.Category,
		"image":    p.Image,
	}
}

// @Router /api/posts [get]
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 6)"
// @Param category query string false "Category filter, All for every category"
// @Param all query bool false "Return every matching post"
// @Success 200 {object} map[string]interface{}
func (s *Server) listPosts(c *gin.Context) {
	params := posts.ListParams{
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
		Category: c.Query("category"),
	}
	params.All, _ = strconv.ParseBool(c.Query("all"))

	page, err := s.postsService.List(c.Request.Context(), params)
	if err != nil {
		s.respondWithError(c, err, "Server error while fetching posts")
		return
	}

	summaries := make([]PostSummary, len(page.Posts))
	for i := range page.Posts {
		summaries[i] = toPostSummary(&page.Posts[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"count":       len(summaries),
		"total":       page.Total,
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
		"posts":       summaries,
	})
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

// @Router /api/posts/{id} [get]
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
func (s *Server) getPost(c *gin.Context) {
	post, err := s.postsService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondWithError(c, err, "Server error while fetching post")
		return
	}

	detail := PostDetail{
		PostSummary: toPostSummary(post),
		AuthorID:    post.AuthorID,
		Content:     post.Content,
		AuthorBio:   defaultAuthorBio,
		Comments:    make([]CommentView, len(post.Comments)),
	}
	for i := range post.Comments {
		detail.Comments[i] = toCommentView(&post.Comments[i])
	}

	// Signed-in readers also learn which comments they already liked
	if session, ok := GetSessionData(c); ok {
		liked, err := s.postsService.LikedComments(c.Request.Context(), post.ID, session.UserID)
		if err != nil {
			s.logger.Warn().Err(err).Str("post_id", post.ID).Msg("Failed to load liked comments")
		} else {
			for i := range detail.Comments {
				hasLiked := liked[detail.Comments[i].ID]
				detail.Comments[i].HasLiked = &hasLiked
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"post":    detail,
	})
}

// @Router /api/posts [post]
// @Param body body CreatePostRequest true "Post"
// @Success 201 {object} map[string]interface{}
func (s *Server) createPost(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, "Title, excerpt, content and category are required", err)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		s.logger.Warn().Err(err).Msg("Post validation failed")
		s.respondBadRequest(c, "Validation failed", err)
		return
	}

	post, err := s.postsService.Create(c.Request.Context(), sessionData.UserID, posts.CreateParams{
		Title:    req.Title,
		Excerpt:  req.Excerpt,
		Content:  req.Content,
		Category: req.Category,
		Image:    req.Image,
		ReadTime: req.ReadTime,
	})
	if err != nil {
		s.respondWithError(c, err, "Server error while creating post")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"post":    postRef(post),
	})
}

// @Router /api/posts/{id} [put]
// @Param id path string true "Post ID"
// @Param body body UpdatePostRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
func (s *Server) updatePost(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, "Invalid request body", err)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		s.logger.Warn().Err(err).Msg("Post validation failed")
		s.respondBadRequest(c, "Validation failed", err)
		return
	}

	post, err := s.postsService.Update(c.Request.Context(), sessionData, c.Param("id"), posts.UpdateParams{
		Title:    req.Title,
		Excerpt:  req.Excerpt,
		Content:  req.Content,
		Category: req.Category,
		Image:    req.Image,
		ReadTime: req.ReadTime,
	})
	if errors.Is(err, auth.ErrForbidden) {
		abortWithError(c, http.StatusForbidden, "Not authorized to update this post", err)
		return
	}
	if err != nil {
		s.respondWithError(c, err, "Server error while updating post")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"post":    postRef(post),
	})
}

// @Router /api/posts/{id} [delete]
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
func (s *Server) deletePost(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	err := s.postsService.Delete(c.Request.Context(), sessionData, c.Param("id"))
	if errors.Is(err, auth.ErrForbidden) {
		abortWithError(c, http.StatusForbidden, "Not authorized to delete this post", err)
		return
	}
	if err != nil {
		s.respondWithError(c, err, "Server error while deleting post")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Post deleted successfully",
	})
}

// @Router /api/posts/{id}/comments [post]
// @Param id path string true "Post ID"
// @Param body body AddCommentRequest true "Comment"
// @Success 201 {object} map[string]interface{}
func (s *Server) addComment(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, "Comment content is required", err)
		return
	}

	comment, err := s.postsService.AddComment(c.Request.Context(), c.Param("id"), sessionData.UserID, req.Content)
	if err != nil {
		s.respondWithError(c, err, "Server error while adding comment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"comment": toCommentView(comment),
	})
}

// @Router /api/posts/{id}/comments/{commentId}/like [post]
// @Param id path string true "Post ID"
// @Param commentId path string true "Comment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
func (s *Server) likeComment(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	likes, err := s.postsService.LikeComment(c.Request.Context(), c.Param("id"), c.Param("commentId"), sessionData.UserID)
	if errors.Is(err, posts.ErrAlreadyLiked) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "You have already liked this comment",
			"likes":   likes,
		})
		return
	}
	if err != nil {
		s.respondWithError(c, err, "Server error while liking comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"likes":    likes,
		"hasLiked": true,
	})
}

// @Router /api/posts/{id}/comments/{commentId}/liked [get]
// @Param id path string true "Post ID"
// @Param commentId path string true "Comment ID"
// @Success 200 {object} map[string]interface{}
func (s *Server) checkLiked(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	hasLiked, err := s.postsService.HasLiked(c.Request.Context(), c.Param("id"), c.Param("commentId"), sessionData.UserID)
	if err != nil {
		s.respondWithError(c, err, "Server error while checking like status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"hasLiked": hasLiked,
	})
}
