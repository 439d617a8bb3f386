package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/NaghamProgrammer/Ubrary/internal/models"
)

// CreateCategory inserts a category and returns its ID. Duplicate names
// yield ErrDuplicate.
func CreateCategory(name, description string) (int64, error) {
	res, err := DB.Exec("INSERT INTO categories (name, description) VALUES (?, ?)", name, description)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, fmt.Errorf("category %q: %w", name, ErrDuplicate)
		}
		return 0, fmt.Errorf("exec CreateCategory: %w", err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id CreateCategory: %w", err)
	}
	return lastID, nil
}

// GetCategory returns a category by ID, or (nil, nil) when absent.
func GetCategory(id int64) (*models.Category, error) {
	cat := &models.Category{}
	row := DB.QueryRow("SELECT id, name, description, created_at FROM categories WHERE id = ?", id)
	err := row.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan GetCategory: %w", err)
	}
	return cat, nil
}

// ListCategories returns all categories ordered by name.
func ListCategories() ([]*models.Category, error) {
	rows, err := DB.Query("SELECT id, name, description, created_at FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query ListCategories: %w", err)
	}
	defer rows.Close()

	cats := []*models.Category{}
	for rows.Next() {
		cat := &models.Category{}
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ListCategories: %w", err)
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

// UpdateCategory replaces a category's name and description.
func UpdateCategory(id int64, name, description string) error {
	res, err := DB.Exec("UPDATE categories SET name = ?, description = ? WHERE id = ?", name, description, id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("category %q: %w", name, ErrDuplicate)
		}
		return fmt.Errorf("exec UpdateCategory: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected UpdateCategory: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteCategory removes a category. Join rows cascade; books stay.
func DeleteCategory(id int64) error {
	res, err := DB.Exec("DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("exec DeleteCategory: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected DeleteCategory: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return nil
}
