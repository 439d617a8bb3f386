package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/NaghamProgrammer/Ubrary/internal/models"
)

const userColumns = "id, email, password_hash, is_admin, is_staff, is_superuser, is_active, created_at"

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsAdmin,
		&user.IsStaff, &user.IsSuperuser, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

// CreateUser inserts a new account and returns its ID. A duplicate email
// yields ErrDuplicate.
func CreateUser(email, passwordHash string, isAdmin bool) (int64, error) {
	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin CreateUser: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO users (email, password_hash, is_admin, is_staff, is_superuser, is_active)
		VALUES (?, ?, ?, 0, 0, 1)`, email, passwordHash, isAdmin)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, fmt.Errorf("user %q: %w", email, ErrDuplicate)
		}
		return 0, fmt.Errorf("exec CreateUser: %w", err)
	}

	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id CreateUser: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit CreateUser: %w", err)
	}

	log.Printf("created user %s (ID: %d)", email, lastID)
	return lastID, nil
}

// GetUserByEmail looks an account up by email. Returns (nil, nil) when no
// such account exists.
func GetUserByEmail(email string) (*models.User, error) {
	row := DB.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// GetUserByID looks an account up by ID. Returns (nil, nil) when absent.
func GetUserByID(id int64) (*models.User, error) {
	row := DB.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// EmailExists reports whether an account with this email is registered.
func EmailExists(email string) (bool, error) {
	var n int
	if err := DB.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&n); err != nil {
		return false, fmt.Errorf("query EmailExists: %w", err)
	}
	return n > 0, nil
}

// ListUsers returns all accounts ordered by ID.
func ListUsers() ([]*models.User, error) {
	rows, err := DB.Query("SELECT " + userColumns + " FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query ListUsers: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsAdmin,
			&user.IsStaff, &user.IsSuperuser, &user.IsActive, &user.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan ListUsers: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateUser updates the admin-editable fields of an account. passwordHash
// is applied only when non-empty; is_staff and is_superuser stay untouched.
func UpdateUser(id int64, email string, isAdmin, isActive bool, passwordHash string) error {
	var (
		res sql.Result
		err error
	)
	if passwordHash != "" {
		res, err = DB.Exec(`
			UPDATE users SET email = ?, is_admin = ?, is_active = ?, password_hash = ?
			WHERE id = ?`, email, isAdmin, isActive, passwordHash, id)
	} else {
		res, err = DB.Exec(`
			UPDATE users SET email = ?, is_admin = ?, is_active = ?
			WHERE id = ?`, email, isAdmin, isActive, id)
	}
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("user %q: %w", email, ErrDuplicate)
		}
		return fmt.Errorf("exec UpdateUser: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected UpdateUser: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// SetUserPassword replaces an account's password hash. Used by the
// password-reset flow after the token store accepted the token.
func SetUserPassword(id int64, passwordHash string) error {
	res, err := DB.Exec("UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		return fmt.Errorf("exec SetUserPassword: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected SetUserPassword: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteUser removes an account. Ledger and favorite rows cascade.
func DeleteUser(id int64) error {
	res, err := DB.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("exec DeleteUser: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected DeleteUser: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	log.Printf("deleted user ID %d", id)
	return nil
}
