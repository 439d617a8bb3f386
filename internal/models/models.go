package models

import (
	"database/sql"
	"time"
)

// User is a library account. Password hashes never leave the server.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Category groups books; names are unique.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Book is a catalog entry. Copies holds the on-shelf count and is mutated
// only by the borrow/return transactions in the database package. Cover is
// a base64-encoded image, empty when no cover was uploaded.
type Book struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	Author        string        `json:"author"`
	Description   string        `json:"description"`
	PublishedDate string        `json:"published_date"`
	Cover         string        `json:"-"`
	Copies        int           `json:"-"`
	ActiveBorrows int           `json:"-"`
	CategoryIDs   []int64       `json:"categories"`
	AddedBy       sql.NullInt64 `json:"-"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// AvailableCopies reports how many copies are on the shelf right now.
func (b *Book) AvailableCopies() int { return b.Copies }

// TotalCopies reports the full inventory, shelved plus checked out.
func (b *Book) TotalCopies() int { return b.Copies + b.ActiveBorrows }

// IsAvailable reports whether at least one copy can be borrowed.
func (b *Book) IsAvailable() bool { return b.Copies > 0 }

// BorrowedBook is one row of the borrow ledger. A (user, book) pair holds at
// most one row; re-borrowing a returned book resets the same row instead of
// inserting a second one.
type BorrowedBook struct {
	ID         int64        `json:"id"`
	UserID     int64        `json:"user_id"`
	BookID     int64        `json:"book_id"`
	BorrowDate time.Time    `json:"borrow_date"`
	ReturnDate sql.NullTime `json:"-"`
	Returned   bool         `json:"returned"`
}

// FavoriteBook marks a book as a user's favorite. Existence is the only state.
type FavoriteBook struct {
	ID      int64     `json:"id"`
	UserID  int64     `json:"user_id"`
	BookID  int64     `json:"book_id"`
	AddedAt time.Time `json:"added_at"`
}

// BorrowedBookInfo is the flattened API shape for a ledger row: the book's
// display fields are inlined so clients do not need a second lookup.
type BorrowedBookInfo struct {
	BookID     int64      `json:"book_id"`
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	CoverURL   string     `json:"cover_url"`
	BorrowDate time.Time  `json:"borrow_date"`
	ReturnDate *time.Time `json:"return_date"`
	Returned   bool       `json:"returned"`
}

// FavoriteBookInfo is the flattened API shape for a favorite.
type FavoriteBookInfo struct {
	BookID   int64  `json:"book_id"`
	Title    string `json:"book_title"`
	Author   string `json:"book_author"`
	CoverURL string `json:"book_cover_url"`
}

// CoverDataURL renders a stored base64 cover as an HTML-embeddable data URL.
// Empty covers yield an empty string.
func CoverDataURL(cover string) string {
	if cover == "" {
		return ""
	}
	return "data:image/jpeg;base64," + cover
}

// CoverDataURL renders the book's cover for embedding in img src attributes.
func (b *Book) CoverDataURL() string { return CoverDataURL(b.Cover) }
