package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/NaghamProgrammer/Ubrary/internal/database"

	"github.com/gin-gonic/gin"
)

// HandleListFavorites returns the caller's favorites flattened with book
// fields.
func HandleListFavorites(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	infos, err := database.ListFavoritesByUser(userID)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, infos)
}

type favoriteInput struct {
	BookID int64 `json:"book"`
}

// HandleAddFavorite marks a book as the caller's favorite.
func HandleAddFavorite(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var in favoriteInput
	if err := c.ShouldBindJSON(&in); err != nil || in.BookID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Book ID is required."})
		return
	}

	info, err := database.AddFavorite(userID, in.BookID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You have already favorited this book."})
		case errors.Is(err, database.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found."})
		default:
			serverError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, info)
}

// HandleRemoveFavorite removes the favorite marker identified by the book id
// in the URL.
func HandleRemoveFavorite(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	bookID, err := strconv.ParseInt(c.Param("book_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID."})
		return
	}

	if err := database.RemoveFavorite(userID, bookID); err != nil {
		notFoundOr500(c, err, "Favorite book not found")
		return
	}

	c.JSON(http.StatusNoContent, gin.H{"message": "Removed from favorites"})
}
