package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/NaghamProgrammer/Ubrary/internal/middleware"
)

func sessionEmail(c *gin.Context) string {
	email, _ := sessions.Default(c).Get(middleware.SessionEmail).(string)
	return email
}

// ShowIndexPage renders the landing page with the login/register forms.
func ShowIndexPage(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title": "Ubrary",
	})
}

// ShowUserPage renders the member home page.
func ShowUserPage(c *gin.Context) {
	c.HTML(http.StatusOK, "user_page.html", gin.H{
		"title": "My Library",
		"email": sessionEmail(c),
	})
}

// ShowAdminPage renders the admin dashboard. Non-admin callers are rejected
// the way the API rejects them.
func ShowAdminPage(c *gin.Context) {
	session := sessions.Default(c)
	isAdmin, _ := session.Get(middleware.SessionIsAdmin).(bool)
	if !isAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	c.HTML(http.StatusOK, "admin_page.html", gin.H{
		"title": "Admin Dashboard",
		"email": sessionEmail(c),
	})
}

// ShowBorrowedBooksPage renders the borrowed-books page.
func ShowBorrowedBooksPage(c *gin.Context) {
	c.HTML(http.StatusOK, "borrowed_books.html", gin.H{
		"title": "Borrowed Books",
		"email": sessionEmail(c),
	})
}

// ShowFavoriteBooksPage renders the favorites page.
func ShowFavoriteBooksPage(c *gin.Context) {
	c.HTML(http.StatusOK, "favorite_books.html", gin.H{
		"title": "Favorite Books",
		"email": sessionEmail(c),
	})
}

// ShowSearchResultsPage renders the search-results page; the page itself
// queries /api/search/.
func ShowSearchResultsPage(c *gin.Context) {
	c.HTML(http.StatusOK, "search_results.html", gin.H{
		"title": "Search Results",
		"query": c.Query("q"),
	})
}
