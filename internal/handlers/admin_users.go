package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/NaghamProgrammer/Ubrary/internal/auth"
	"github.com/NaghamProgrammer/Ubrary/internal/database"

	"github.com/gin-gonic/gin"
)

// HandleListUsers returns all accounts. Admin only.
func HandleListUsers(c *gin.Context) {
	users, err := database.ListUsers()
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

type adminUserInput struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"is_admin"`
	IsActive *bool   `json:"is_active"`
}

// HandleAdminCreateUser creates an account on behalf of an admin; unlike
// signup it may set the admin flag directly.
func HandleAdminCreateUser(c *gin.Context) {
	var in adminUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}
	if in.Email == nil || strings.TrimSpace(*in.Email) == "" || in.Password == nil || *in.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}
	email := strings.TrimSpace(*in.Email)
	if err := auth.ValidateEmail(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := auth.ValidatePassword(*in.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(*in.Password)
	if err != nil {
		serverError(c, err)
		return
	}

	isAdmin := in.IsAdmin != nil && *in.IsAdmin
	id, err := database.CreateUser(email, hash, isAdmin)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
			return
		}
		serverError(c, err)
		return
	}

	user, err := database.GetUserByID(id)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// HandleGetUser returns one account. Admin only.
func HandleGetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID."})
		return
	}
	user, err := database.GetUserByID(id)
	if err != nil {
		serverError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// HandleAdminUpdateUser updates an account's email, role and active flags,
// and optionally its password. Admin only.
func HandleAdminUpdateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID."})
		return
	}

	user, err := database.GetUserByID(id)
	if err != nil {
		serverError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var in adminUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	email := user.Email
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		email = strings.TrimSpace(*in.Email)
		if err := auth.ValidateEmail(email); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	isAdmin := user.IsAdmin
	if in.IsAdmin != nil {
		isAdmin = *in.IsAdmin
	}
	isActive := user.IsActive
	if in.IsActive != nil {
		isActive = *in.IsActive
	}

	passwordHash := ""
	if in.Password != nil && *in.Password != "" {
		if err := auth.ValidatePassword(*in.Password); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		passwordHash, err = auth.HashPassword(*in.Password)
		if err != nil {
			serverError(c, err)
			return
		}
	}

	if err := database.UpdateUser(id, email, isAdmin, isActive, passwordHash); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
			return
		}
		notFoundOr500(c, err, "User not found")
		return
	}

	updated, err := database.GetUserByID(id)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// HandleAdminDeleteUser removes an account. Admin only.
func HandleAdminDeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID."})
		return
	}
	if err := database.DeleteUser(id); err != nil {
		notFoundOr500(c, err, "User not found")
		return
	}
	c.JSON(http.StatusNoContent, gin.H{"message": "User deleted"})
}
