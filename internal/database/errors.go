package database

import "errors"

// Sentinel errors returned by the stores. Handlers map these to HTTP codes
// with errors.Is.
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicate       = errors.New("record already exists")
	ErrBorrowLimit     = errors.New("borrow limit reached")
	ErrNoCopies        = errors.New("no copies available")
	ErrAlreadyBorrowed = errors.New("book already borrowed")
)
