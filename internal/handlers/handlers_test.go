package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/NaghamProgrammer/Ubrary/internal/database"
	"github.com/NaghamProgrammer/Ubrary/internal/middleware"
	"github.com/NaghamProgrammer/Ubrary/internal/services"
)

// testPassword satisfies the signup password policy.
const testPassword = "Secret#123"

// setupRouter builds a router with the production route table against a
// throwaway database. The reset handler runs in debug mode so tests can read
// issued tokens from responses.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, database.InitDB(filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(func() { database.Close() })

	reset := &ResetHandler{
		Tokens: services.NewResetTokenStore(time.Hour),
		Debug:  true,
	}

	router := gin.New()
	router.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))

	api := router.Group("/api")
	{
		api.POST("/signup/", HandleSignup)
		api.POST("/login/", HandleLogin)
		api.GET("/search/", HandleSearch)
		api.POST("/email-exists/", HandleEmailExists)
		api.POST("/password-reset-request/", reset.HandleResetRequest)
		api.POST("/password-reset-confirm/", reset.HandleResetConfirm)
	}

	authed := router.Group("/api")
	authed.Use(middleware.AuthRequired())
	{
		authed.POST("/logout/", HandleLogout)
		authed.GET("/user/me/", HandleCurrentUser)
		authed.GET("/books/", HandleListBooks)
		authed.GET("/books/available/", HandleAvailableBooks)
		authed.GET("/books/:id/", HandleGetBook)
		authed.GET("/borrowed-books/", HandleListBorrowedBooks)
		authed.POST("/borrowed-books/", HandleBorrowBook)
		authed.PATCH("/borrowed-books/", HandleReturnBook)
		authed.GET("/favorite-books/", HandleListFavorites)
		authed.POST("/favorite-books/", HandleAddFavorite)
		authed.DELETE("/favorite-books/:book_id/", HandleRemoveFavorite)
	}

	admin := router.Group("/api")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("/categories/", HandleListCategories)
		admin.POST("/categories/", HandleCreateCategory)
		admin.GET("/categories/:id/", HandleGetCategory)
		admin.PUT("/categories/:id/", HandleUpdateCategory)
		admin.DELETE("/categories/:id/", HandleDeleteCategory)

		admin.GET("/users/", HandleListUsers)
		admin.POST("/users/", HandleAdminCreateUser)
		admin.GET("/users/:id/", HandleGetUser)
		admin.PUT("/users/:id/", HandleAdminUpdateUser)
		admin.DELETE("/users/:id/", HandleAdminDeleteUser)

		admin.POST("/admin/books/", HandleAdminCreateBook)
		admin.PUT("/admin/books/:id/", HandleAdminUpdateBook)
		admin.DELETE("/admin/books/:id/", HandleAdminDeleteBook)
	}

	return router
}

// doJSON performs a request with an optional JSON body and session cookies.
func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// signupAndLogin registers an account and returns its session cookies.
func signupAndLogin(t *testing.T, router *gin.Engine, email string, isAdmin bool) []*http.Cookie {
	t.Helper()

	w := doJSON(t, router, "POST", "/api/signup/", gin.H{
		"email":    email,
		"password": testPassword,
		"is_admin": isAdmin,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, "POST", "/api/login/", gin.H{
		"email":    email,
		"password": testPassword,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return w.Result().Cookies()
}

// createBook inserts a catalog entry through the admin API and returns its id.
func createBook(t *testing.T, router *gin.Engine, adminCookies []*http.Cookie, title string, copies int) int64 {
	t.Helper()

	w := doJSON(t, router, "POST", "/api/admin/books/", gin.H{
		"title":            title,
		"author":           "Test Author",
		"number_of_copies": copies,
	}, adminCookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return int64(jsonBody(t, w)["id"].(float64))
}

func jsonBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func jsonList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	return list
}
