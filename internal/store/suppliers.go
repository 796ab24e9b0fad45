package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/almacen/internal/model"
)

// CreateSupplier creates a new supplier.
func CreateSupplier(ctx context.Context, db DBTX, name string) (*model.Supplier, error) {
	result, err := db.ExecContext(ctx, `INSERT INTO suppliers (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("creating supplier: %w", classify(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting supplier id: %w", err)
	}
	return GetSupplier(ctx, db, id)
}

// GetSupplier returns a supplier by ID.
func GetSupplier(ctx context.Context, db DBTX, id int64) (*model.Supplier, error) {
	s := &model.Supplier{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name FROM suppliers WHERE id = ?`, id,
	).Scan(&s.ID, &s.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting supplier: %w", err)
	}
	return s, nil
}

// ListSuppliers returns all suppliers ordered by name.
func ListSuppliers(ctx context.Context, db DBTX) ([]model.Supplier, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []model.Supplier
	for rows.Next() {
		var s model.Supplier
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scanning supplier: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

// UpdateSupplier renames a supplier.
func UpdateSupplier(ctx context.Context, db DBTX, id int64, name string) error {
	_, err := db.ExecContext(ctx, `UPDATE suppliers SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("updating supplier: %w", classify(err))
	}
	return nil
}
