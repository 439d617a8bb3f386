package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/NaghamProgrammer/Ubrary/internal/models"
)

// ListFavoritesByUser returns the caller's favorites flattened with the
// book's display fields.
func ListFavoritesByUser(userID int64) ([]models.FavoriteBookInfo, error) {
	rows, err := DB.Query(`
		SELECT fb.book_id, b.title, b.author, COALESCE(b.cover, '')
		FROM favorite_books fb
		JOIN books b ON b.id = fb.book_id
		WHERE fb.user_id = ?
		ORDER BY fb.added_at DESC, fb.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query ListFavoritesByUser: %w", err)
	}
	defer rows.Close()

	infos := []models.FavoriteBookInfo{}
	for rows.Next() {
		var (
			info  models.FavoriteBookInfo
			cover string
		)
		if err := rows.Scan(&info.BookID, &info.Title, &info.Author, &cover); err != nil {
			return nil, fmt.Errorf("scan ListFavoritesByUser: %w", err)
		}
		info.CoverURL = models.CoverDataURL(cover)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// AddFavorite marks a book as the user's favorite. ErrNotFound when the book
// does not exist, ErrDuplicate when the pair is already favorited.
func AddFavorite(userID, bookID int64) (*models.FavoriteBookInfo, error) {
	var (
		title, author string
		cover         string
	)
	err := DB.QueryRow("SELECT title, author, COALESCE(cover, '') FROM books WHERE id = ?", bookID).
		Scan(&title, &author, &cover)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("book %d: %w", bookID, ErrNotFound)
		}
		return nil, fmt.Errorf("select book AddFavorite: %w", err)
	}

	_, err = DB.Exec("INSERT INTO favorite_books (user_id, book_id) VALUES (?, ?)", userID, bookID)
	if err != nil {
		// The UNIQUE(user_id, book_id) constraint is the duplicate check, so
		// a concurrent second attempt cannot slip through.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("favorite of book %d: %w", bookID, ErrDuplicate)
		}
		return nil, fmt.Errorf("insert AddFavorite: %w", err)
	}

	return &models.FavoriteBookInfo{
		BookID:   bookID,
		Title:    title,
		Author:   author,
		CoverURL: models.CoverDataURL(cover),
	}, nil
}

// RemoveFavorite deletes the favorite marker for (user, book). ErrNotFound
// when no such marker exists.
func RemoveFavorite(userID, bookID int64) error {
	res, err := DB.Exec("DELETE FROM favorite_books WHERE user_id = ? AND book_id = ?", userID, bookID)
	if err != nil {
		return fmt.Errorf("exec RemoveFavorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected RemoveFavorite: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("favorite of book %d: %w", bookID, ErrNotFound)
	}
	return nil
}
