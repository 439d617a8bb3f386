package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/NaghamProgrammer/Ubrary/internal/database"
	"github.com/NaghamProgrammer/Ubrary/internal/models"
	"github.com/NaghamProgrammer/Ubrary/internal/services"

	"github.com/gin-gonic/gin"
)

// adminBookInput carries the admin book payload. Pointer fields distinguish
// "absent" from zero values so updates only touch what the client sent.
type adminBookInput struct {
	ID            *int64  `json:"id"`
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	Description   *string `json:"description"`
	PublishedDate *string `json:"published_date"`
	Cover         *string `json:"cover"`
	Copies        *int    `json:"number_of_copies"`
	Categories    []int64 `json:"categories"`
	hasCategories bool
}

// bindAdminBookInput accepts either a JSON body (cover as base64) or a
// multipart form (cover as an uploaded image validated by the cover
// pipeline).
func bindAdminBookInput(c *gin.Context) (*adminBookInput, error) {
	contentType := c.ContentType()
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		in := &adminBookInput{}
		if err := c.ShouldBindJSON(in); err != nil {
			return nil, fmt.Errorf("invalid request body")
		}
		in.hasCategories = in.Categories != nil
		return in, nil
	}

	in := &adminBookInput{}
	strField := func(name string) *string {
		if vals, ok := c.GetPostFormArray(name); ok && len(vals) > 0 {
			return &vals[0]
		}
		return nil
	}
	in.Title = strField("title")
	in.Author = strField("author")
	in.Description = strField("description")
	in.PublishedDate = strField("published_date")

	if raw := strField("id"); raw != nil {
		id, err := strconv.ParseInt(*raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id")
		}
		in.ID = &id
	}
	if raw := strField("number_of_copies"); raw != nil {
		n, err := strconv.Atoi(*raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("number_of_copies must be a non-negative integer")
		}
		in.Copies = &n
	}
	if vals, ok := c.GetPostFormArray("categories"); ok {
		in.hasCategories = true
		in.Categories = []int64{}
		for _, raw := range vals {
			for _, part := range strings.Split(raw, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				id, err := strconv.ParseInt(part, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("invalid category id %q", part)
				}
				in.Categories = append(in.Categories, id)
			}
		}
	}

	if fileHeader, err := c.FormFile("cover"); err == nil {
		cover, err := services.ProcessCoverUpload(fileHeader)
		if err != nil {
			return nil, err
		}
		in.Cover = &cover
	}
	return in, nil
}

// HandleAdminCreateBook adds a catalog entry, attributing it to the calling
// staff account.
func HandleAdminCreateBook(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	in, err := bindAdminBookInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" || in.Author == nil || strings.TrimSpace(*in.Author) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and author are required."})
		return
	}

	book := &models.Book{
		Title:   strings.TrimSpace(*in.Title),
		Author:  strings.TrimSpace(*in.Author),
		Copies:  1,
		AddedBy: sql.NullInt64{Int64: userID, Valid: true},
	}
	if in.Description != nil {
		book.Description = *in.Description
	}
	if in.PublishedDate != nil {
		book.PublishedDate = *in.PublishedDate
	}
	if in.Cover != nil {
		book.Cover = *in.Cover
	}
	if in.Copies != nil {
		if *in.Copies < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "number_of_copies must be a non-negative integer"})
			return
		}
		book.Copies = *in.Copies
	}
	book.CategoryIDs = in.Categories

	id, err := database.CreateBook(book)
	if err != nil {
		notFoundOr500(c, err, "Category not found.")
		return
	}

	created, err := database.GetBook(id)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bookJSON(created))
}

// HandleAdminUpdateBook updates a catalog entry. The book id itself cannot
// be changed; number_of_copies is interpreted as the new total inventory.
func HandleAdminUpdateBook(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID."})
		return
	}

	in, err := bindAdminBookInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.ID != nil && *in.ID != id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Book ID cannot be changed"})
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

	if in.Title != nil {
		book.Title = strings.TrimSpace(*in.Title)
	}
	if in.Author != nil {
		book.Author = strings.TrimSpace(*in.Author)
	}
	if in.Description != nil {
		book.Description = *in.Description
	}
	if in.PublishedDate != nil {
		book.PublishedDate = *in.PublishedDate
	}
	if in.Cover != nil {
		book.Cover = *in.Cover
	}
	if in.hasCategories {
		book.CategoryIDs = in.Categories
	}

	totalCopies := book.TotalCopies()
	if in.Copies != nil {
		if *in.Copies < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "number_of_copies must be a non-negative integer"})
			return
		}
		totalCopies = *in.Copies
	}

	if err := database.UpdateBook(book, totalCopies); err != nil {
		notFoundOr500(c, err, "Book not found.")
		return
	}

	updated, err := database.GetBook(id)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookJSON(updated))
}

// HandleAdminDeleteBook removes a catalog entry.
func HandleAdminDeleteBook(c *gin.Context) {
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

	if err := database.DeleteBook(id); err != nil {
		notFoundOr500(c, err, "Book not found.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Book '%s' (ID: %d) deleted successfully", book.Title, book.ID),
	})
}
