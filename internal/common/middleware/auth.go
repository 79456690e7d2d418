package middleware

import (
	"strconv"
	"strings"

	"github.com/architect/elective-advisor/internal/common/errors"
	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key holding the authenticated user id (uint).
const UserIDKey = "user_id"

// AuthRequired middleware resolves the caller from the session cookie or the
// Authorization header. Credentials are trusted as-is; only the user id is
// extracted.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := resolveUser(c)
		if !ok {
			appErr := errors.Unauthorized("missing or invalid authentication")
			c.AbortWithStatusJSON(appErr.Status, appErr)
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// OptionalAuth sets the user id when credentials are present but never rejects.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := resolveUser(c); ok {
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}

// UserID returns the authenticated user id set by AuthRequired.
func UserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id > 0
}

func resolveUser(c *gin.Context) (uint, bool) {
	// Check for session cookie first
	if session, err := c.Cookie("session_id"); err == nil && session != "" {
		return parseUserID(session)
	}

	token := strings.TrimSpace(c.GetHeader("Authorization"))
	if token == "" {
		return 0, false
	}
	if rest, found := strings.CutPrefix(token, "Bearer "); found {
		token = strings.TrimSpace(rest)
	}
	return parseUserID(token)
}

func parseUserID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
