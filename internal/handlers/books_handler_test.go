package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAndGetBooks(t *testing.T) {
	router := setupRouter(t)
	admin := signupAndLogin(t, router, "admin@example.com", true)
	reader := signupAndLogin(t, router, "reader@example.com", false)

	inStock := createBook(t, router, admin, "In Stock", 2)
	createBook(t, router, admin, "Out of Stock", 0)

	w := doJSON(t, router, "GET", "/api/books/", nil, reader)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, jsonList(t, w), 2)

	w = doJSON(t, router, "GET", "/api/books/available/", nil, reader)
	require.Equal(t, http.StatusOK, w.Code)
	available := jsonList(t, w)
	require.Len(t, available, 1)
	assert.Equal(t, "In Stock", available[0]["title"])

	w = doJSON(t, router, "GET", "/api/books/"+itoa(inStock)+"/", nil, reader)
	require.Equal(t, http.StatusOK, w.Code)
	body := jsonBody(t, w)
	assert.Equal(t, "In Stock", body["title"])
	assert.Equal(t, float64(2), body["available_copies"])

	w = doJSON(t, router, "GET", "/api/books/404/", nil, reader)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchIsOpenToAnonymous(t *testing.T) {
	router := setupRouter(t)
	admin := signupAndLogin(t, router, "admin@example.com", true)
	createBook(t, router, admin, "Dune", 1)

	w := doJSON(t, router, "GET", "/api/search/?q=dune", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	results := jsonList(t, w)
	require.Len(t, results, 1)
	assert.Equal(t, "Dune", results[0]["title"])
}

func TestSearchRequiresQuery(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "GET", "/api/search/", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Search query is required", jsonBody(t, w)["error"])

	w = doJSON(t, router, "GET", "/api/search/?q=%20%20", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminCreateBookValidation(t *testing.T) {
	router := setupRouter(t)
	admin := signupAndLogin(t, router, "admin@example.com", true)

	w := doJSON(t, router, "POST", "/api/admin/books/", gin.H{"title": "No Author"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title and author are required.", jsonBody(t, w)["error"])
}

func TestAdminCreateBookDefaultsToOneCopy(t *testing.T) {
	router := setupRouter(t)
	admin := signupAndLogin(t, router, "admin@example.com", true)

	w := doJSON(t, router, "POST", "/api/admin/books/", gin.H{
		"title":  "Dune",
		"author": "Frank Herbert",
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := jsonBody(t, w)
	assert.Equal(t, float64(1), body["number_of_copies"])
	assert.NotNil(t, body["added_by"])
}

func TestAdminUpdateBook(t *testing.T) {
	router := setupRouter(t)
	admin := signupAndLogin(t, router, "admin@example.com", true)
	bookID := createBook(t, router, admin, "Dune", 2)

	w := doJSON(t, router, "PUT", "/api/admin/books/"+itoa(bookID)+"/", gin.H{
		"title":            "Dune (Revised)",
		"number_of_copies": 5,
	}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := jsonBody(t, w)
	assert.Equal(t, "Dune (Revised)", body["title"])
	assert.Equal(t, float64(5), body["number_of_copies"])
	assert.Equal(t, float64(5), body["available_copies"])
}

func TestAdminUpdateBookRejectsIDChange(t *testing.T) {
	router := setupRouter(t)
	admin := signupAndLogin(t, router, "admin@example.com", true)
	bookID := createBook(t, router, admin, "Dune", 1)

	w := doJSON(t, router, "PUT", "/api/admin/books/"+itoa(bookID)+"/", gin.H{
		"id":    bookID + 1,
		"title": "Renamed",
	}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Book ID cannot be changed", jsonBody(t, w)["error"])
}

func TestAdminUpdateBookPreservesBorrows(t *testing.T) {
	router := setupRouter(t)
	admin := signupAndLogin(t, router, "admin@example.com", true)
	reader := signupAndLogin(t, router, "reader@example.com", false)
	bookID := createBook(t, router, admin, "Dune", 3)

	w := doJSON(t, router, "POST", "/api/borrowed-books/", gin.H{"book": bookID}, reader)
	require.Equal(t, http.StatusOK, w.Code)

	// Shrinking the inventory to 2 while one copy is out leaves one shelved.
	w = doJSON(t, router, "PUT", "/api/admin/books/"+itoa(bookID)+"/", gin.H{
		"number_of_copies": 2,
	}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := jsonBody(t, w)
	assert.Equal(t, float64(2), body["number_of_copies"])
	assert.Equal(t, float64(1), body["available_copies"])
}

func TestAdminDeleteBook(t *testing.T) {
	router := setupRouter(t)
	admin := signupAndLogin(t, router, "admin@example.com", true)
	bookID := createBook(t, router, admin, "Dune", 1)

	w := doJSON(t, router, "DELETE", "/api/admin/books/"+itoa(bookID)+"/", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, jsonBody(t, w)["message"], "deleted successfully")

	w = doJSON(t, router, "DELETE", "/api/admin/books/"+itoa(bookID)+"/", nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminBookRoutesRejectNonAdmin(t *testing.T) {
	router := setupRouter(t)
	reader := signupAndLogin(t, router, "reader@example.com", false)

	w := doJSON(t, router, "POST", "/api/admin/books/", gin.H{
		"title":  "Dune",
		"author": "Frank Herbert",
	}, reader)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
