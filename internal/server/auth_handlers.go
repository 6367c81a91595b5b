package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/barrens-blog/barrens/internal/auth"
)

const logoutCookieTTL = 10 * time.Second

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Avatar   string `json:"avatar" binding:"omitempty,url"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// setSessionCookie writes the session cookie. It is always HttpOnly, SameSite=Lax and scoped to /.
func (s *Server) setSessionCookie(c *gin.Context, value string, expires time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

// @Summary Register
// @Description Creates a member account. Does not log the user in.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Register request"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/auth/register [post]
func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, "Please provide a username, a valid email and a password", err)
		return
	}

	user, err := s.verifier.Register(c.Request.Context(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		s.respondWithError(c, err, "Server error during registration")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Registration successful. Please log in.",
		"user":    user,
	})
}

// @Summary Login
// @Description Authenticate with email and password; sets the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/login [post]
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, "Please provide email and password", err)
		return
	}

	result, err := s.verifier.Login(c.Request.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.respondWithError(c, err, "Server error during login")
		return
	}

	s.setSessionCookie(c, result.Token, time.Now().Add(s.config.CookieTTL()))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    result.User,
	})
}

// @Summary Logout
// @Description Revokes the current session token and overwrites the cookie. Always succeeds.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/auth/logout [get]
func (s *Server) logout(c *gin.Context) {
	s.verifier.Logout(c.Request.Context(), extractToken(c))
	s.setSessionCookie(c, "logout", time.Now().Add(logoutCookieTTL))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User logged out successfully",
	})
}

// @Summary Get current user
// @Description Get information about the currently authenticated user
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/me [get]
func (s *Server) getCurrentUser(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	user, err := s.verifier.CurrentUser(c.Request.Context(), sessionData)
	if err != nil {
		s.respondWithError(c, err, "Server error while fetching user data")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}
