package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/almacen/internal/model"
)

// CreateCategory creates a new category.
func CreateCategory(ctx context.Context, db DBTX, name string) (*model.Category, error) {
	result, err := db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("creating category: %w", classify(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting category id: %w", err)
	}
	return GetCategory(ctx, db, id)
}

// GetCategory returns a category by ID.
func GetCategory(ctx context.Context, db DBTX, id int64) (*model.Category, error) {
	c := &model.Category{}
	err := db.QueryRowContext(ctx,
		`SELECT c.id, c.name, (SELECT COUNT(*) FROM inventory_items i WHERE i.category_id = c.id)
		 FROM categories c WHERE c.id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.ItemCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return c, nil
}

// ListCategories returns all categories with their item counts.
func ListCategories(ctx context.Context, db DBTX) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT c.id, c.name, COUNT(i.id)
		 FROM categories c
		 LEFT JOIN inventory_items i ON i.category_id = c.id
		 GROUP BY c.id
		 ORDER BY c.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ItemCount); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// DeleteCategory deletes a category. Categories that still hold items
// cannot be deleted and yield ErrInUse.
func DeleteCategory(ctx context.Context, db DBTX, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", classify(err))
	}
	return nil
}

// GetCategoryByName returns the category with the given name.
func GetCategoryByName(ctx context.Context, db DBTX, name string) (*model.Category, error) {
	c := &model.Category{}
	err := db.QueryRowContext(ctx,
		`SELECT c.id, c.name, (SELECT COUNT(*) FROM inventory_items i WHERE i.category_id = c.id)
		 FROM categories c WHERE c.name = ?`, name,
	).Scan(&c.ID, &c.Name, &c.ItemCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category by name: %w", err)
	}
	return c, nil
}
