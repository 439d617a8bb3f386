package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/NaghamProgrammer/Ubrary/internal/models"
)

// MaxActiveBorrows is the per-user cap on concurrently held books.
const MaxActiveBorrows = 6

// ListBorrowsByUser returns the caller's full ledger, active and returned,
// flattened with the book's display fields.
func ListBorrowsByUser(userID int64) ([]models.BorrowedBookInfo, error) {
	rows, err := DB.Query(`
		SELECT bb.book_id, b.title, b.author, COALESCE(b.cover, ''),
		       bb.borrow_date, bb.return_date, bb.returned
		FROM borrowed_books bb
		JOIN books b ON b.id = bb.book_id
		WHERE bb.user_id = ?
		ORDER BY bb.borrow_date DESC, bb.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query ListBorrowsByUser: %w", err)
	}
	defer rows.Close()

	infos := []models.BorrowedBookInfo{}
	for rows.Next() {
		var (
			info       models.BorrowedBookInfo
			cover      string
			returnDate sql.NullTime
		)
		err := rows.Scan(&info.BookID, &info.Title, &info.Author, &cover,
			&info.BorrowDate, &returnDate, &info.Returned)
		if err != nil {
			return nil, fmt.Errorf("scan ListBorrowsByUser: %w", err)
		}
		info.CoverURL = models.CoverDataURL(cover)
		if returnDate.Valid {
			t := returnDate.Time
			info.ReturnDate = &t
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// CountActiveBorrowsByUser returns how many books the user currently holds.
func CountActiveBorrowsByUser(userID int64) (int, error) {
	var n int
	err := DB.QueryRow("SELECT COUNT(*) FROM borrowed_books WHERE user_id = ? AND returned = 0", userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("query CountActiveBorrowsByUser: %w", err)
	}
	return n, nil
}

// CountActiveBorrowsByBook returns how many copies of the book are out.
func CountActiveBorrowsByBook(bookID int64) (int, error) {
	var n int
	err := DB.QueryRow("SELECT COUNT(*) FROM borrowed_books WHERE book_id = ? AND returned = 0", bookID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("query CountActiveBorrowsByBook: %w", err)
	}
	return n, nil
}

// BorrowBook checks the business rules and records a borrow in a single
// transaction: the ledger write and the shelf-counter decrement are atomic,
// so two concurrent requests cannot both take the last copy.
//
// Failure modes: ErrNotFound (no such book), ErrBorrowLimit (user holds
// MaxActiveBorrows books), ErrAlreadyBorrowed (active row for the pair),
// ErrNoCopies (counter exhausted). A previously returned row for the same
// (user, book) pair is reset in place rather than duplicated.
func BorrowBook(userID, bookID int64) (*models.BorrowedBookInfo, error) {
	tx, err := DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin BorrowBook: %w", err)
	}
	defer tx.Rollback()

	var (
		title, author string
		cover         string
	)
	err = tx.QueryRow("SELECT title, author, COALESCE(cover, '') FROM books WHERE id = ?", bookID).
		Scan(&title, &author, &cover)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("book %d: %w", bookID, ErrNotFound)
		}
		return nil, fmt.Errorf("select book BorrowBook: %w", err)
	}

	var held int
	err = tx.QueryRow("SELECT COUNT(*) FROM borrowed_books WHERE user_id = ? AND returned = 0", userID).Scan(&held)
	if err != nil {
		return nil, fmt.Errorf("count holds BorrowBook: %w", err)
	}
	if held >= MaxActiveBorrows {
		return nil, ErrBorrowLimit
	}

	var (
		recordID int64
		returned bool
		haveRow  = true
	)
	err = tx.QueryRow("SELECT id, returned FROM borrowed_books WHERE user_id = ? AND book_id = ?", userID, bookID).
		Scan(&recordID, &returned)
	if err != nil {
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("select record BorrowBook: %w", err)
		}
		haveRow = false
	}
	if haveRow && !returned {
		return nil, ErrAlreadyBorrowed
	}

	// Guarded decrement: the WHERE clause is the availability check, so the
	// counter can never be driven below zero even under concurrent borrows.
	res, err := tx.Exec(`
		UPDATE books SET number_of_copies = number_of_copies - 1, updated_at = ?
		WHERE id = ? AND number_of_copies > 0`, time.Now(), bookID)
	if err != nil {
		return nil, fmt.Errorf("decrement copies BorrowBook: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected BorrowBook: %w", err)
	}
	if affected == 0 {
		return nil, ErrNoCopies
	}

	now := time.Now()
	if haveRow {
		// Re-borrow of a returned book reuses the row, keeping the
		// (user, book) pair unique.
		_, err = tx.Exec(`
			UPDATE borrowed_books SET returned = 0, return_date = NULL, borrow_date = ?
			WHERE id = ?`, now, recordID)
		if err != nil {
			return nil, fmt.Errorf("reset record BorrowBook: %w", err)
		}
	} else {
		_, err = tx.Exec(`
			INSERT INTO borrowed_books (user_id, book_id, borrow_date, returned)
			VALUES (?, ?, ?, 0)`, userID, bookID, now)
		if err != nil {
			return nil, fmt.Errorf("insert record BorrowBook: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit BorrowBook: %w", err)
	}

	log.Printf("user %d borrowed book %d (%q)", userID, bookID, title)
	return &models.BorrowedBookInfo{
		BookID:     bookID,
		Title:      title,
		Author:     author,
		CoverURL:   models.CoverDataURL(cover),
		BorrowDate: now,
		Returned:   false,
	}, nil
}

// ReturnBook flags the active ledger row for (user, book) as returned and
// puts the copy back on the shelf, atomically. ErrNotFound when the user
// holds no active borrow of the book.
func ReturnBook(userID, bookID int64) (*models.BorrowedBookInfo, error) {
	tx, err := DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin ReturnBook: %w", err)
	}
	defer tx.Rollback()

	var (
		recordID      int64
		borrowDate    time.Time
		title, author string
		cover         string
	)
	err = tx.QueryRow(`
		SELECT bb.id, bb.borrow_date, b.title, b.author, COALESCE(b.cover, '')
		FROM borrowed_books bb
		JOIN books b ON b.id = bb.book_id
		WHERE bb.user_id = ? AND bb.book_id = ? AND bb.returned = 0`, userID, bookID).
		Scan(&recordID, &borrowDate, &title, &author, &cover)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("active borrow of book %d: %w", bookID, ErrNotFound)
		}
		return nil, fmt.Errorf("select record ReturnBook: %w", err)
	}

	now := time.Now()
	_, err = tx.Exec("UPDATE borrowed_books SET returned = 1, return_date = ? WHERE id = ?", now, recordID)
	if err != nil {
		return nil, fmt.Errorf("update record ReturnBook: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE books SET number_of_copies = number_of_copies + 1, updated_at = ?
		WHERE id = ?`, now, bookID)
	if err != nil {
		return nil, fmt.Errorf("increment copies ReturnBook: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit ReturnBook: %w", err)
	}

	log.Printf("user %d returned book %d (%q)", userID, bookID, title)
	return &models.BorrowedBookInfo{
		BookID:     bookID,
		Title:      title,
		Author:     author,
		CoverURL:   models.CoverDataURL(cover),
		BorrowDate: borrowDate,
		ReturnDate: &now,
		Returned:   true,
	}, nil
}
