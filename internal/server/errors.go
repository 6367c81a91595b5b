package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/barrens-blog/barrens/internal/auth"
	"github.com/barrens-blog/barrens/internal/posts"
	"github.com/barrens-blog/barrens/internal/users"
)

// errorStatus maps domain errors to an HTTP status and a client-safe message.
// An empty message means the caller's fallback applies.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusBadRequest, "Email already in use"
	case errors.Is(err, auth.ErrUsernameTaken):
		return http.StatusBadRequest, "Username already taken"
	case errors.Is(err, auth.ErrDuplicateIdentity):
		return http.StatusBadRequest, "Account already exists"
	case errors.Is(err, auth.ErrPasswordTooLong):
		return http.StatusBadRequest, "Password must be at most 72 bytes"
	case errors.Is(err, posts.ErrFieldRequired):
		return http.StatusBadRequest, "Title, excerpt and content cannot be blank"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, "Not authorized, please log in"
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "Access denied"
	case errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, posts.ErrPostNotFound):
		return http.StatusNotFound, "Post not found"
	case errors.Is(err, posts.ErrCommentNotFound):
		return http.StatusNotFound, "Comment not found"
	case errors.Is(err, posts.ErrCommentRequired):
		return http.StatusBadRequest, "Comment content is required"
	case errors.Is(err, posts.ErrAlreadyLiked):
		return http.StatusBadRequest, "You have already liked this comment"
	case errors.Is(err, users.ErrAvatarRequired):
		return http.StatusBadRequest, "Avatar URL is required"
	case errors.Is(err, users.ErrDeleteSelf):
		return http.StatusBadRequest, "Cannot delete yourself"
	default:
		return http.StatusInternalServerError, ""
	}
}

// respondWithError writes {success:false, message} for err. fallback names the failed
// operation and is used for forbidden and server errors. Error detail is only exposed in development.
func (s *Server) respondWithError(c *gin.Context, err error, fallback string) {
	status, message := errorStatus(err)
	if message == "" {
		message = fallback
	}

	body := gin.H{"success": false, "message": message}
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg(fallback)
		if s.config.IsDevelopment() {
			body["error"] = err.Error()
		}
	} else {
		s.logger.Debug().Err(err).Int("status", status).Msg(message)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// respondBadRequest reports a malformed or invalid request body
func (s *Server) respondBadRequest(c *gin.Context, message string, err error) {
	body := gin.H{"success": false, "message": message}
	if err != nil && s.config.IsDevelopment() {
		body["error"] = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

func abortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
