package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/NaghamProgrammer/Ubrary/internal/auth"
	"github.com/NaghamProgrammer/Ubrary/internal/database"
	"github.com/NaghamProgrammer/Ubrary/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type signupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

// HandleSignup registers a new account.
func HandleSignup(c *gin.Context) {
	var in signupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}
	in.Email = strings.TrimSpace(in.Email)

	if in.Email == "" || in.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}
	if err := auth.ValidateEmail(in.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		serverError(c, err)
		return
	}

	if _, err := database.CreateUser(in.Email, hash, in.IsAdmin); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
			return
		}
		serverError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created", "email": in.Email})
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates the account and starts a session.
func HandleLogin(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required."})
		return
	}
	if in.Email == "" || in.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required."})
		return
	}

	user, err := database.GetUserByEmail(in.Email)
	if err != nil {
		serverError(c, err)
		return
	}
	if user == nil || !user.IsActive || !auth.CheckPasswordHash(in.Password, user.PasswordHash) {
		log.Printf("failed login attempt for %q from IP %s", in.Email, c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserID, user.ID)
	session.Set(middleware.SessionEmail, user.Email)
	session.Set(middleware.SessionIsAdmin, user.IsAdmin)
	if err := session.Save(); err != nil {
		serverError(c, err)
		return
	}

	log.Printf("user %s (ID: %d) logged in", user.Email, user.ID)
	c.JSON(http.StatusOK, gin.H{
		"message":  "Login successful.",
		"is_admin": user.IsAdmin,
		"email":    user.Email,
	})
}

// HandleLogout clears the session.
func HandleLogout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{MaxAge: -1})
	if err := session.Save(); err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful."})
}

// HandleCurrentUser returns the caller's account.
func HandleCurrentUser(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	user, err := database.GetUserByID(userID)
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

type emailExistsInput struct {
	Email string `json:"email"`
}

// HandleEmailExists reports whether an email is registered. Used by the
// forgot-password page before requesting a token.
func HandleEmailExists(c *gin.Context) {
	var in emailExistsInput
	if err := c.ShouldBindJSON(&in); err != nil || in.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}
	exists, err := database.EmailExists(in.Email)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}
