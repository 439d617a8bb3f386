package handlers

import (
	"errors"
	"net/http"

	"github.com/NaghamProgrammer/Ubrary/internal/database"

	"github.com/gin-gonic/gin"
)

// HandleListBorrowedBooks returns the caller's borrow ledger, active and
// history, flattened with book fields.
func HandleListBorrowedBooks(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	infos, err := database.ListBorrowsByUser(userID)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, infos)
}

type borrowInput struct {
	BookID int64 `json:"book"`
}

// HandleBorrowBook borrows a book for the caller.
func HandleBorrowBook(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var in borrowInput
	if err := c.ShouldBindJSON(&in); err != nil || in.BookID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Book ID is required."})
		return
	}

	info, err := database.BorrowBook(userID, in.BookID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found."})
		case errors.Is(err, database.ErrBorrowLimit):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Borrow limit reached. Return some books first."})
		case errors.Is(err, database.ErrNoCopies):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No copies available for this book."})
		case errors.Is(err, database.ErrAlreadyBorrowed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You already borrowed this book."})
		default:
			serverError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, info)
}

type returnInput struct {
	BookID int64 `json:"book_id"`
}

// HandleReturnBook returns a borrowed book for the caller.
func HandleReturnBook(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var in returnInput
	if err := c.ShouldBindJSON(&in); err != nil || in.BookID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "book_id is required."})
		return
	}

	info, err := database.ReturnBook(userID, in.BookID)
	if err != nil {
		notFoundOr500(c, err, "No borrowed book found to return.")
		return
	}

	c.JSON(http.StatusOK, info)
}
