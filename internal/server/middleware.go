package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/barrens-blog/barrens/internal/auth"
	"github.com/barrens-blog/barrens/internal/models"
)

const (
	sessionCookie = "token"
	sessionKey    = "session"
	bearerPrefix  = "Bearer "
)

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set(sessionKey, sessionData)
}

// GetSessionData returns the identity resolved for this request, if any
func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	session, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}

	sessionData, ok := session.(*auth.SessionData)
	return sessionData, ok && sessionData != nil
}

// extractToken reads the session cookie, falling back to a bearer header for non-browser clients
func extractToken(c *gin.Context) string {
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	}
	return ""
}

// PublicMiddleware attaches an identity when the request carries a valid session and never rejects.
// A bad token means anonymous; a store failure is logged and also treated as anonymous.
func PublicMiddleware(guard *auth.Guard, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := guard.Resolve(c.Request.Context(), extractToken(c))
		switch {
		case err == nil:
			if session != nil {
				setSession(c, session)
			}
		case errors.Is(err, auth.ErrStoreUnavailable):
			log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("Session lookup failed - continuing anonymously")
		default:
			log.Debug().Err(err).Msg("Ignoring invalid session token on public route")
		}
		c.Next()
	}
}

// AuthenticatedMiddleware requires a valid session resolving to a live user
func AuthenticatedMiddleware(guard *auth.Guard, log zerolog.Logger) gin.HandlerFunc {
	return requireRole(guard, log, models.RoleMember)
}

// AdminOnlyMiddleware requires an authenticated admin
func AdminOnlyMiddleware(guard *auth.Guard, log zerolog.Logger) gin.HandlerFunc {
	return requireRole(guard, log, models.RoleAdmin)
}

func requireRole(guard *auth.Guard, log zerolog.Logger, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := guard.Resolve(c.Request.Context(), extractToken(c))
		if err != nil {
			if errors.Is(err, auth.ErrStoreUnavailable) {
				log.Error().Err(err).Msg("Session lookup failed")
				abortWithError(c, http.StatusInternalServerError, "Server error while checking session", err)
				return
			}
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Rejected session token")
			abortWithError(c, http.StatusUnauthorized, "Not authorized, please log in", err)
			return
		}

		if err := guard.Authorize(session, role); err != nil {
			if errors.Is(err, auth.ErrForbidden) {
				log.Warn().Str("user_id", session.UserID).Str("path", c.Request.URL.Path).Msg("Admin access denied")
				abortWithError(c, http.StatusForbidden, "Admin access required", err)
				return
			}
			abortWithError(c, http.StatusUnauthorized, "Not authorized, please log in", err)
			return
		}

		setSession(c, session)
		c.Next()
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		event := s.logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = s.logger.Error()
		}
		if session, ok := GetSessionData(c); ok {
			event = event.Str("user_id", session.UserID)
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// recoveryMiddleware turns panics into the generic error body
func (s *Server) recoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		body := gin.H{"success": false, "message": "Something went wrong"}
		if s.config.IsDevelopment() {
			body["error"] = recoveredMessage(recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}

func recoveredMessage(recovered any) string {
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	if msg, ok := recovered.(string); ok {
		return msg
	}
	return "panic"
}
