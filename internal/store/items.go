package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/almacen/internal/model"
)

const itemColumns = `i.id, i.sku, i.slug, i.category_id, c.name, i.description,
	i.stock, i.min_stock, i.max_stock, i.active`

const itemFrom = ` FROM inventory_items i JOIN categories c ON c.id = i.category_id`

func scanItem(row interface{ Scan(...any) error }, item *model.InventoryItem) error {
	return row.Scan(&item.ID, &item.SKU, &item.Slug, &item.CategoryID, &item.CategoryName,
		&item.Description, &item.Stock, &item.MinStock, &item.MaxStock, &item.Active)
}

// ItemFilter narrows item lists.
type ItemFilter struct {
	Search     string // case-insensitive match on SKU or description
	CategoryID int64
	ActiveOnly bool
	IDs        []int64
}

func (f ItemFilter) where() (string, []any) {
	clauses := []string{"1=1"}
	var args []any
	if f.Search != "" {
		clauses = append(clauses, `(i.sku LIKE ? ESCAPE '\' OR i.description LIKE ? ESCAPE '\')`)
		pattern := likePattern(f.Search)
		args = append(args, pattern, pattern)
	}
	if f.CategoryID > 0 {
		clauses = append(clauses, `i.category_id = ?`)
		args = append(args, f.CategoryID)
	}
	if f.ActiveOnly {
		clauses = append(clauses, `i.active = 1`)
	}
	if len(f.IDs) > 0 {
		clauses = append(clauses, `i.id IN (`+placeholders(len(f.IDs))+`)`)
		for _, id := range f.IDs {
			args = append(args, id)
		}
	}
	return ` WHERE ` + strings.Join(clauses, " AND "), args
}

// InsertItem creates an item with zero stock and returns its ID. Opening
// stock is recorded separately through the ledger.
func InsertItem(ctx context.Context, db DBTX, item *model.InventoryItem) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO inventory_items (sku, slug, category_id, description, stock, min_stock, max_stock, active)
		 VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
		item.SKU, item.Slug, item.CategoryID, item.Description, item.MinStock, item.MaxStock, item.Active,
	)
	if err != nil {
		return 0, fmt.Errorf("creating item: %w", classify(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting item id: %w", err)
	}
	return id, nil
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db DBTX, id int64) (*model.InventoryItem, error) {
	item := &model.InventoryItem{}
	err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+itemFrom+` WHERE i.id = ?`, id), item)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// GetItemBySKU returns an item by its SKU.
func GetItemBySKU(ctx context.Context, db DBTX, sku string) (*model.InventoryItem, error) {
	item := &model.InventoryItem{}
	err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+itemFrom+` WHERE i.sku = ?`, sku), item)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item by sku: %w", err)
	}
	return item, nil
}

// ListItems returns items matching f ordered by SKU.
func ListItems(ctx context.Context, db DBTX, f ItemFilter, p Page) ([]model.InventoryItem, error) {
	where, args := f.where()
	limit, limitArgs := p.clause()
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+itemFrom+where+` ORDER BY i.sku`+limit,
		append(args, limitArgs...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// CountItems returns the number of items matching f.
func CountItems(ctx context.Context, db DBTX, f ItemFilter) (int, error) {
	where, args := f.where()
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*)`+itemFrom+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

// ListLowStock returns active items whose stock is at or below their
// minimum, lowest stock first.
func ListLowStock(ctx context.Context, db DBTX, limit int) ([]model.InventoryItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+itemFrom+`
		 WHERE i.active = 1 AND i.stock <= i.min_stock
		 ORDER BY i.stock, i.sku LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing low stock items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	for rows.Next() {
		var item model.InventoryItem
		if err := scanItem(rows, &item); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItem updates an item's catalog fields. Stock is not touched.
func UpdateItem(ctx context.Context, db DBTX, item *model.InventoryItem) error {
	_, err := db.ExecContext(ctx,
		`UPDATE inventory_items
		 SET sku = ?, slug = ?, category_id = ?, description = ?, min_stock = ?, max_stock = ?, active = ?
		 WHERE id = ?`,
		item.SKU, item.Slug, item.CategoryID, item.Description, item.MinStock, item.MaxStock, item.Active, item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", classify(err))
	}
	return nil
}

// LockItem takes the write lock on an item row and returns its current
// state, or nil if the item does not exist. It must run inside a
// transaction; the lock is held until that transaction ends.
func LockItem(ctx context.Context, tx DBTX, id int64) (*model.InventoryItem, error) {
	res, err := tx.ExecContext(ctx, `UPDATE inventory_items SET stock = stock WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("locking item %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return GetItem(ctx, tx, id)
}

// SetItemStock overwrites an item's stock count.
func SetItemStock(ctx context.Context, tx DBTX, id int64, stock int) error {
	_, err := tx.ExecContext(ctx, `UPDATE inventory_items SET stock = ? WHERE id = ?`, stock, id)
	if err != nil {
		return fmt.Errorf("setting stock for item %d: %w", id, err)
	}
	return nil
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
