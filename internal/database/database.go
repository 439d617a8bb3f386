package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB is the process-wide connection pool. InitDB must be called before any
// store function.
var DB *sql.DB

// InitDB opens the SQLite database at dataSourceName, configures the pool
// and creates the schema if it does not exist yet.
func InitDB(dataSourceName string) error {
	var err error

	// WAL for concurrent readers, busy_timeout so concurrent writers wait
	// instead of failing, foreign keys enforced. The driver only applies
	// pragmas passed in _pragma form.
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)", dataSourceName)

	DB, err = sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open %s: %w", dataSourceName, err)
	}

	// SQLite allows a single writer; one pooled connection keeps every
	// read-check-write sequence serialized.
	DB.SetMaxOpenConns(1)
	DB.SetMaxIdleConns(1)
	DB.SetConnMaxLifetime(time.Hour)

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("ping %s: %w", dataSourceName, err)
	}

	log.Println("connected to database:", dataSourceName)

	if err = createTables(); err != nil {
		DB.Close()
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// GetDB returns the process-wide *sql.DB.
func GetDB() *sql.DB {
	return DB
}

// Close closes the connection pool. Safe to call when InitDB never ran.
func Close() error {
	if DB == nil {
		return nil
	}
	return DB.Close()
}

func createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			is_admin INTEGER NOT NULL DEFAULT 0,
			is_staff INTEGER NOT NULL DEFAULT 0,
			is_superuser INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS books (
			id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			published_date TEXT NOT NULL DEFAULT '',
			cover TEXT,
			-- On-shelf copies. Mutated only by the borrow/return transactions.
			number_of_copies INTEGER NOT NULL DEFAULT 1 CHECK (number_of_copies >= 0),
			added_by INTEGER,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(added_by) REFERENCES users(id) ON DELETE SET NULL
		);`,

		`CREATE TABLE IF NOT EXISTS book_categories (
			book_id INTEGER NOT NULL,
			category_id INTEGER NOT NULL,
			PRIMARY KEY (book_id, category_id),
			FOREIGN KEY(book_id) REFERENCES books(id) ON DELETE CASCADE,
			FOREIGN KEY(category_id) REFERENCES categories(id) ON DELETE CASCADE
		);`,

		`CREATE TABLE IF NOT EXISTS borrowed_books (
			id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			book_id INTEGER NOT NULL,
			borrow_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			return_date DATETIME NULL,
			returned INTEGER NOT NULL DEFAULT 0,
			UNIQUE(user_id, book_id),
			FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY(book_id) REFERENCES books(id) ON DELETE CASCADE
		);`,

		`CREATE TABLE IF NOT EXISTS favorite_books (
			id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			book_id INTEGER NOT NULL,
			added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, book_id),
			FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY(book_id) REFERENCES books(id) ON DELETE CASCADE
		);`,

		`CREATE INDEX IF NOT EXISTS idx_borrowed_user_returned ON borrowed_books (user_id, returned);`,
		`CREATE INDEX IF NOT EXISTS idx_borrowed_book_returned ON borrowed_books (book_id, returned);`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_user ON favorite_books (user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_books_added_by ON books (added_by);`,
	}

	for _, stmt := range stmts {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}
