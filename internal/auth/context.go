package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/lesson-booking-backend/internal/session"
)

const (
	sessionIDKey = "sessionID"
	sessionKey   = "session"
)

// GetSessionID returns the current session's ID or empty string.
func GetSessionID(c *gin.Context) string {
	if v, ok := c.Get(sessionIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetSession returns the current session, or nil outside SessionRequired.
func GetSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}
