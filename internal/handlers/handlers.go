// Package handlers wires HTTP requests to the stores and services. Handlers
// are thin: they bind input, call one store operation and translate sentinel
// errors to stable JSON error bodies.
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/NaghamProgrammer/Ubrary/internal/database"
	"github.com/NaghamProgrammer/Ubrary/internal/middleware"
	"github.com/NaghamProgrammer/Ubrary/internal/models"

	"github.com/gin-gonic/gin"
)

// mustUserID pulls the authenticated user's ID out of the context. The auth
// middleware guarantees it is present on protected routes; a miss means the
// route was wired without the middleware.
func mustUserID(c *gin.Context) (int64, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		log.Printf("BUG: no userID in context for %s", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required."})
		return 0, false
	}
	return userID, true
}

// serverError logs err and answers with a generic 500 body.
func serverError(c *gin.Context, err error) {
	log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
}

// notFoundOr500 maps ErrNotFound to a 404 with msg, everything else to 500.
func notFoundOr500(c *gin.Context, err error, msg string) {
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": msg})
		return
	}
	serverError(c, err)
}

// bookJSON is the API shape of a catalog entry. number_of_copies reports the
// full inventory while available_copies reports what is on the shelf, so
// available == total - active borrows always holds in responses.
func bookJSON(b *models.Book) gin.H {
	var addedBy any
	if b.AddedBy.Valid {
		addedBy = b.AddedBy.Int64
	}
	return gin.H{
		"id":               b.ID,
		"title":            b.Title,
		"author":           b.Author,
		"description":      b.Description,
		"published_date":   b.PublishedDate,
		"categories":       b.CategoryIDs,
		"cover_url":        b.CoverDataURL(),
		"number_of_copies": b.TotalCopies(),
		"available_copies": b.AvailableCopies(),
		"added_by":         addedBy,
		"created_at":       b.CreatedAt,
		"updated_at":       b.UpdatedAt,
	}
}

func booksJSON(books []*models.Book) []gin.H {
	out := make([]gin.H, 0, len(books))
	for _, b := range books {
		out = append(out, bookJSON(b))
	}
	return out
}
