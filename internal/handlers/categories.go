package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/NaghamProgrammer/Ubrary/internal/database"

	"github.com/gin-gonic/gin"
)

type categoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleListCategories returns all categories.
func HandleListCategories(c *gin.Context) {
	cats, err := database.ListCategories()
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

// HandleCreateCategory creates a category. Admin only.
func HandleCreateCategory(c *gin.Context) {
	var in categoryInput
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required."})
		return
	}

	id, err := database.CreateCategory(strings.TrimSpace(in.Name), in.Description)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A category with this name already exists."})
			return
		}
		serverError(c, err)
		return
	}

	cat, err := database.GetCategory(id)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

// HandleGetCategory returns one category.
func HandleGetCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID."})
		return
	}
	cat, err := database.GetCategory(id)
	if err != nil {
		serverError(c, err)
		return
	}
	if cat == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found."})
		return
	}
	c.JSON(http.StatusOK, cat)
}

// HandleUpdateCategory replaces a category's name and description. Admin only.
func HandleUpdateCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID."})
		return
	}

	var in categoryInput
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required."})
		return
	}

	if err := database.UpdateCategory(id, strings.TrimSpace(in.Name), in.Description); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A category with this name already exists."})
			return
		}
		notFoundOr500(c, err, "Category not found.")
		return
	}

	cat, err := database.GetCategory(id)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// HandleDeleteCategory removes a category. Admin only.
func HandleDeleteCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID."})
		return
	}
	if err := database.DeleteCategory(id); err != nil {
		notFoundOr500(c, err, "Category not found.")
		return
	}
	c.JSON(http.StatusNoContent, gin.H{"message": "Category deleted"})
}
