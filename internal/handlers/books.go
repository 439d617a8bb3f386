package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/NaghamProgrammer/Ubrary/internal/database"

	"github.com/gin-gonic/gin"
)

// HandleListBooks returns the whole catalog.
func HandleListBooks(c *gin.Context) {
	books, err := database.ListBooks()
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, booksJSON(books))
}

// HandleGetBook returns one catalog entry.
func HandleGetBook(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID."})
		return
	}
	book, err := database.GetBook(id)
	if err != nil {
		serverError(c, err)
		return
	}
	if book == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found."})
		return
	}
	c.JSON(http.StatusOK, bookJSON(book))
}

// HandleAvailableBooks returns catalog entries with at least one shelf copy.
func HandleAvailableBooks(c *gin.Context) {
	books, err := database.ListAvailableBooks()
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, booksJSON(books))
}

// HandleSearch matches the query against titles, authors and category names.
// Open to unauthenticated visitors.
func HandleSearch(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required"})
		return
	}
	books, err := database.SearchBooks(q)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, booksJSON(books))
}
