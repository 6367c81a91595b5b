package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/barrens-blog/barrens/internal/models"
)

type ChangeAvatarRequest struct {
	Avatar string `json:"avatar" validate:"omitempty,url"`
}

// ActivityView is one recent activity entry with a display date
type ActivityView struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	PostID      string `json:"postId"`
	Date        string `json:"date"`
}

// profile is the public account record; email is only included for the owner and admins
func profile(u *models.User, withEmail bool) gin.H {
	view := gin.H{
		"id":        u.ID,
		"username":  u.Username,
		"avatar":    u.Avatar,
		"role":      u.Role,
		"createdAt": u.CreatedAt,
	}
	if withEmail {
		view["email"] = u.Email
	}
	return view
}

// @Router /api/users/stats/{userId} [get]
// @Param userId path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
func (s *Server) getUserStats(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	user, stats, err := s.usersService.Stats(c.Request.Context(), c.Param("userId"))
	if err != nil {
		s.respondWithError(c, err, "Failed to fetch user statistics")
		return
	}

	activity := make([]ActivityView, len(stats.RecentActivity))
	for i, a := range stats.RecentActivity {
		activity[i] = ActivityView{
			Type:        a.Type,
			Description: a.Description,
			PostID:      a.PostID,
			Date:        formatDate(a.Date),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"postCount":      stats.PostCount,
			"commentCount":   stats.CommentCount,
			"likesReceived":  stats.LikesReceived,
			"recentActivity": activity,
		},
		"user": profile(user, sessionData.CanModify(user.ID)),
	})
}

// @Router /api/users/update/avatar [put]
// @Param body body ChangeAvatarRequest true "New avatar URL"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
func (s *Server) changeAvatar(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req ChangeAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, "Avatar URL is required", err)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		s.respondBadRequest(c, "Avatar must be a valid URL", err)
		return
	}

	user, err := s.usersService.ChangeAvatar(c.Request.Context(), sessionData.UserID, req.Avatar)
	if err != nil {
		s.respondWithError(c, err, "Failed to update avatar")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Avatar updated successfully",
		"user":    profile(user, true),
	})
}

// @Summary List users
// @Description List all users (admin only)
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/users [get]
func (s *Server) listUsers(c *gin.Context) {
	users, err := s.usersService.List(c.Request.Context())
	if err != nil {
		s.respondWithError(c, err, "Failed to list users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(users),
		"users":   users,
	})
}

// @Summary Delete user
// @Description Delete a user with their posts and comments (admin only, cannot delete self)
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/users/{id} [delete]
func (s *Server) deleteUser(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	if err := s.usersService.Delete(c.Request.Context(), c.Param("id"), sessionData.UserID); err != nil {
		s.respondWithError(c, err, "Failed to delete user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted successfully",
	})
}
