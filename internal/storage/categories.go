package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"moneymap/internal/core"
)

// The category directory is a thin collaborator: name lookups for the
// financial tables plus basic list/create/delete. No aggregation happens
// here.

// ListCategories returns the owner's categories ordered by name.
func (s *Store) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, created_at FROM categories WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		var (
			c         core.Category
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &createdAt); err != nil {
			return nil, storageErr("scan category", err)
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, storageErr("parse category timestamp", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list categories", err)
	}
	return categories, nil
}

// CreateCategory adds a named category for the owner.
func (s *Store) CreateCategory(ctx context.Context, userID int64, name string) (*core.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", core.ErrValidation)
	}

	created := time.Now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, created_at) VALUES (?, ?, ?)`,
		userID, name, formatTime(created))
	if err != nil {
		return nil, storageErr("insert category", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, storageErr("insert category", err)
	}

	return &core.Category{
		ID:        id,
		UserID:    userID,
		Name:      name,
		CreatedAt: created,
	}, nil
}

// DeleteCategory removes a category owned by userID. Financial rows that
// reference it are left in place; their joined name resolves to NULL.
func (s *Store) DeleteCategory(ctx context.Context, userID, id int64) error {
	return s.execOwned(ctx, "delete category",
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, userID, id)
}
