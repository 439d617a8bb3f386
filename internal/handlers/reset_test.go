package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestResetToken(t *testing.T, router *gin.Engine, email string) (string, int64) {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/password-reset-request/", gin.H{"email": email}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := jsonBody(t, w)
	token, _ := body["token"].(string)
	uid, _ := body["uid"].(float64)
	return token, int64(uid)
}

func TestPasswordResetFlow(t *testing.T) {
	router := setupRouter(t)
	signupAndLogin(t, router, "reader@example.com", false)

	token, uid := requestResetToken(t, router, "reader@example.com")
	require.NotEmpty(t, token)

	w := doJSON(t, router, "POST", "/api/password-reset-confirm/", gin.H{
		"token":        token,
		"uid":          uid,
		"new_password": "Fresh#456",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Old password no longer works, the new one does.
	w = doJSON(t, router, "POST", "/api/login/", gin.H{
		"email":    "reader@example.com",
		"password": testPassword,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, "POST", "/api/login/", gin.H{
		"email":    "reader@example.com",
		"password": "Fresh#456",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResetTokenIsSingleUse(t *testing.T) {
	router := setupRouter(t)
	signupAndLogin(t, router, "reader@example.com", false)

	token, uid := requestResetToken(t, router, "reader@example.com")

	w := doJSON(t, router, "POST", "/api/password-reset-confirm/", gin.H{
		"token":        token,
		"uid":          uid,
		"new_password": "Fresh#456",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", "/api/password-reset-confirm/", gin.H{
		"token":        token,
		"uid":          uid,
		"new_password": "Again#789",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid or expired token", jsonBody(t, w)["error"])
}

func TestResetRequestUnknownEmailLooksTheSame(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "POST", "/api/password-reset-request/", gin.H{"email": "nobody@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := jsonBody(t, w)
	assert.NotContains(t, body, "token")
	assert.NotContains(t, body, "uid")
}

func TestResetConfirmWrongUser(t *testing.T) {
	router := setupRouter(t)
	signupAndLogin(t, router, "reader@example.com", false)

	token, uid := requestResetToken(t, router, "reader@example.com")

	w := doJSON(t, router, "POST", "/api/password-reset-confirm/", gin.H{
		"token":        token,
		"uid":          uid + 1,
		"new_password": "Fresh#456",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid user ID", jsonBody(t, w)["error"])
}

func TestResetConfirmEnforcesPasswordPolicy(t *testing.T) {
	router := setupRouter(t)
	signupAndLogin(t, router, "reader@example.com", false)

	token, uid := requestResetToken(t, router, "reader@example.com")

	w := doJSON(t, router, "POST", "/api/password-reset-confirm/", gin.H{
		"token":        token,
		"uid":          uid,
		"new_password": "weak",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetConfirmMissingFields(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "POST", "/api/password-reset-confirm/", gin.H{"token": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Token, user ID, and new password are required", jsonBody(t, w)["error"])
}
