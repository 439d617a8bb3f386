package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/NaghamProgrammer/Ubrary/internal/auth"
	"github.com/NaghamProgrammer/Ubrary/internal/database"
	"github.com/NaghamProgrammer/Ubrary/internal/services"

	"github.com/gin-gonic/gin"
)

// ResetHandler serves the password-reset flow. The token store is injected
// at construction so its lifetime and locking are explicit; Mailer may be
// nil when SMTP is not configured. Debug mode echoes the token in the
// response body, which is only acceptable in development.
type ResetHandler struct {
	Tokens *services.ResetTokenStore
	Mailer *services.Mailer
	Debug  bool
}

type resetRequestInput struct {
	Email string `json:"email"`
}

const genericResetMessage = "If your email is registered, you will receive reset instructions"

// HandleResetRequest issues a reset token. The response does not reveal
// whether the account exists.
func (h *ResetHandler) HandleResetRequest(c *gin.Context) {
	var in resetRequestInput
	if err := c.ShouldBindJSON(&in); err != nil || in.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	user, err := database.GetUserByEmail(in.Email)
	if err != nil {
		serverError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"message": genericResetMessage})
		return
	}

	token := h.Tokens.Issue(user.ID)

	if h.Mailer != nil {
		if err := h.Mailer.SendResetToken(user.Email, token, user.ID); err != nil {
			// The token stays valid; the user can retry the request.
			log.Printf("send reset mail to %s: %v", user.Email, err)
		}
	}

	if h.Debug {
		c.JSON(http.StatusOK, gin.H{
			"message": "Password reset instructions sent",
			"token":   token,
			"uid":     user.ID,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": genericResetMessage})
}

type resetConfirmInput struct {
	Token       string `json:"token"`
	UID         int64  `json:"uid"`
	NewPassword string `json:"new_password"`
}

// HandleResetConfirm redeems a token and replaces the account password.
func (h *ResetHandler) HandleResetConfirm(c *gin.Context) {
	var in resetConfirmInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token, user ID, and new password are required"})
		return
	}
	if in.Token == "" || in.UID == 0 || in.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token, user ID, and new password are required"})
		return
	}
	if err := auth.ValidatePassword(in.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Tokens.Redeem(in.Token, in.UID); err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Token has expired"})
		case errors.Is(err, services.ErrTokenMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		}
		return
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		serverError(c, err)
		return
	}
	if err := database.SetUserPassword(in.UID, hash); err != nil {
		notFoundOr500(c, err, "User not found")
		return
	}

	log.Printf("password reset completed for user %d", in.UID)
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully"})
}
