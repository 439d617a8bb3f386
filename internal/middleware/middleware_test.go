package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	return router
}

// login sets session values the way the login handler does and returns the
// resulting cookies.
func login(t *testing.T, router *gin.Engine, userID int64, isAdmin bool) []*http.Cookie {
	t.Helper()
	router.POST("/test-login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(SessionUserID, userID)
		session.Set(SessionEmail, "reader@example.com")
		session.Set(SessionIsAdmin, isAdmin)
		require.NoError(t, session.Save())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/test-login", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Result().Cookies()
}

func TestAuthRequiredRejectsAnonymous(t *testing.T) {
	router := newTestRouter()
	router.GET("/protected", AuthRequired(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authentication required.")
}

func TestAuthRequiredExposesUserID(t *testing.T) {
	router := newTestRouter()
	cookies := login(t, router, 42, false)

	router.GET("/protected", AuthRequired(), func(c *gin.Context) {
		userID, ok := UserID(c)
		require.True(t, ok)
		assert.Equal(t, int64(42), userID)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRequired(t *testing.T) {
	router := newTestRouter()
	cookies := login(t, router, 42, false)

	router.GET("/admin-only", AuthRequired(), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin-only", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Access denied")
}

func TestAdminRequiredAllowsAdmin(t *testing.T) {
	router := newTestRouter()
	cookies := login(t, router, 1, true)

	router.GET("/admin-only", AuthRequired(), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin-only", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPageAuthRequiredRedirects(t *testing.T) {
	router := newTestRouter()
	router.GET("/user/", PageAuthRequired(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/user/", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}
