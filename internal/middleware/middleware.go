package middleware

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys written at login and read by the middlewares below.
const (
	SessionUserID  = "userID"
	SessionEmail   = "email"
	SessionIsAdmin = "isAdmin"
)

// ContextUserID is the gin context key carrying the authenticated user's ID.
const ContextUserID = "userID"

func sessionUserID(c *gin.Context) (int64, bool) {
	session := sessions.Default(c)
	raw := session.Get(SessionUserID)
	if raw == nil {
		return 0, false
	}
	userID, ok := raw.(int64)
	if !ok {
		// Corrupt session data: clear it so the client starts over.
		log.Printf("invalid session userID type (%T) from IP %s, clearing session", raw, c.ClientIP())
		session.Clear()
		session.Options(sessions.Options{MaxAge: -1})
		if err := session.Save(); err != nil {
			log.Printf("save session while clearing corrupt data: %v", err)
		}
		return 0, false
	}
	return userID, true
}

// AuthRequired guards API routes: requests without a valid session get a
// 401 JSON response. On success the user's ID is stored in the gin context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required."})
			return
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// AdminRequired guards admin API routes. Must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		isAdmin, _ := session.Get(SessionIsAdmin).(bool)
		if !isAdmin {
			log.Printf("admin access denied to %s from IP %s", c.Request.URL.Path, c.ClientIP())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}

// PageAuthRequired guards server-rendered pages, redirecting anonymous
// visitors to the index page instead of answering with JSON.
func PageAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUserID(c)
		if !ok {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// UserID returns the authenticated user's ID placed in the context by
// AuthRequired / PageAuthRequired.
func UserID(c *gin.Context) (int64, bool) {
	raw, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	userID, ok := raw.(int64)
	return userID, ok
}
