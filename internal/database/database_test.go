package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NaghamProgrammer/Ubrary/internal/models"
)

// setupTestDB points the package at a throwaway SQLite file for one test.
func setupTestDB(t *testing.T) {
	t.Helper()
	require.NoError(t, InitDB(filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(func() { Close() })
}

func mustCreateUser(t *testing.T, email string) int64 {
	t.Helper()
	id, err := CreateUser(email, "$2a$10$fakehashfortestingonlyfakehashfortestingonly", false)
	require.NoError(t, err)
	return id
}

func mustCreateBook(t *testing.T, title string, copies int) int64 {
	t.Helper()
	id, err := CreateBook(&models.Book{
		Title:  title,
		Author: "Test Author",
		Copies: copies,
	})
	require.NoError(t, err)
	return id
}
