package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/NaghamProgrammer/Ubrary/internal/models"
)

// bookColumns selects everything needed to populate a models.Book, with the
// active-borrow count computed in SQL so callers always see a consistent pair.
const bookColumns = `
	b.id, b.title, b.author, b.description, b.published_date,
	COALESCE(b.cover, ''), b.number_of_copies, b.added_by, b.created_at, b.updated_at,
	(SELECT COUNT(*) FROM borrowed_books bb WHERE bb.book_id = b.id AND bb.returned = 0)`

func scanBook(scanner interface {
	Scan(dest ...any) error
}) (*models.Book, error) {
	b := &models.Book{}
	err := scanner.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.PublishedDate,
		&b.Cover, &b.Copies, &b.AddedBy, &b.CreatedAt, &b.UpdatedAt, &b.ActiveBorrows)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// loadCategoryIDs fills CategoryIDs for every book in the slice with one
// query over the join table.
func loadCategoryIDs(books []*models.Book) error {
	byID := make(map[int64]*models.Book, len(books))
	for _, b := range books {
		b.CategoryIDs = []int64{}
		byID[b.ID] = b
	}
	if len(books) == 0 {
		return nil
	}

	rows, err := DB.Query("SELECT book_id, category_id FROM book_categories ORDER BY category_id")
	if err != nil {
		return fmt.Errorf("query book categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookID, catID int64
		if err := rows.Scan(&bookID, &catID); err != nil {
			return fmt.Errorf("scan book categories: %w", err)
		}
		if b, ok := byID[bookID]; ok {
			b.CategoryIDs = append(b.CategoryIDs, catID)
		}
	}
	return rows.Err()
}

func replaceBookCategories(tx *sql.Tx, bookID int64, categoryIDs []int64) error {
	if _, err := tx.Exec("DELETE FROM book_categories WHERE book_id = ?", bookID); err != nil {
		return fmt.Errorf("clear book categories: %w", err)
	}
	for _, catID := range categoryIDs {
		if _, err := tx.Exec("INSERT INTO book_categories (book_id, category_id) VALUES (?, ?)", bookID, catID); err != nil {
			if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
				return fmt.Errorf("category %d: %w", catID, ErrNotFound)
			}
			return fmt.Errorf("insert book category: %w", err)
		}
	}
	return nil
}

// CreateBook inserts a catalog entry together with its category set and
// returns the new ID. b.Copies is the initial inventory.
func CreateBook(b *models.Book) (int64, error) {
	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin CreateBook: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO books (title, author, description, published_date, cover, number_of_copies, added_by)
		VALUES (?, ?, ?, ?, NULLIF(?, ''), ?, ?)`,
		b.Title, b.Author, b.Description, b.PublishedDate, b.Cover, b.Copies, b.AddedBy)
	if err != nil {
		return 0, fmt.Errorf("exec CreateBook: %w", err)
	}

	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id CreateBook: %w", err)
	}

	if err := replaceBookCategories(tx, lastID, b.CategoryIDs); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit CreateBook: %w", err)
	}

	log.Printf("created book %q (ID: %d)", b.Title, lastID)
	return lastID, nil
}

// GetBook returns a catalog entry by ID, or (nil, nil) when absent.
func GetBook(id int64) (*models.Book, error) {
	row := DB.QueryRow("SELECT "+bookColumns+" FROM books b WHERE b.id = ?", id)
	b, err := scanBook(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan GetBook: %w", err)
	}
	if err := loadCategoryIDs([]*models.Book{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBooks returns the whole catalog ordered by ID.
func ListBooks() ([]*models.Book, error) {
	return queryBooks("SELECT " + bookColumns + " FROM books b ORDER BY b.id")
}

// ListAvailableBooks returns catalog entries with at least one shelf copy.
func ListAvailableBooks() ([]*models.Book, error) {
	return queryBooks("SELECT " + bookColumns + " FROM books b WHERE b.number_of_copies > 0 ORDER BY b.id")
}

// SearchBooks matches q against title, author and category names,
// case-insensitively, without duplicates.
func SearchBooks(q string) ([]*models.Book, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	return queryBooks(`
		SELECT DISTINCT `+bookColumns+`
		FROM books b
		LEFT JOIN book_categories bc ON bc.book_id = b.id
		LEFT JOIN categories c ON c.id = bc.category_id
		WHERE LOWER(b.title) LIKE ? OR LOWER(b.author) LIKE ? OR LOWER(c.name) LIKE ?
		ORDER BY b.id`, pattern, pattern, pattern)
}

func queryBooks(query string, args ...any) ([]*models.Book, error) {
	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := []*models.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan books: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := loadCategoryIDs(books); err != nil {
		return nil, err
	}
	return books, nil
}

// UpdateBook replaces a book's fields and category set. totalCopies is the
// desired full inventory; the stored shelf count becomes totalCopies minus
// the book's active borrows, floored at zero so the counter never goes
// negative under outstanding loans.
func UpdateBook(b *models.Book, totalCopies int) error {
	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("begin UpdateBook: %w", err)
	}
	defer tx.Rollback()

	var active int
	err = tx.QueryRow("SELECT COUNT(*) FROM borrowed_books WHERE book_id = ? AND returned = 0", b.ID).Scan(&active)
	if err != nil {
		return fmt.Errorf("count active borrows UpdateBook: %w", err)
	}
	shelf := totalCopies - active
	if shelf < 0 {
		shelf = 0
	}

	res, err := tx.Exec(`
		UPDATE books
		SET title = ?, author = ?, description = ?, published_date = ?,
		    cover = NULLIF(?, ''), number_of_copies = ?, updated_at = ?
		WHERE id = ?`,
		b.Title, b.Author, b.Description, b.PublishedDate, b.Cover, shelf, time.Now(), b.ID)
	if err != nil {
		return fmt.Errorf("exec UpdateBook: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected UpdateBook: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("book %d: %w", b.ID, ErrNotFound)
	}

	if err := replaceBookCategories(tx, b.ID, b.CategoryIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit UpdateBook: %w", err)
	}
	return nil
}

// DeleteBook removes a catalog entry. Ledger, favorite and join rows cascade.
func DeleteBook(id int64) error {
	res, err := DB.Exec("DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("exec DeleteBook: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected DeleteBook: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	log.Printf("deleted book ID %d", id)
	return nil
}
