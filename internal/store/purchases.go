package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/erazemk/almacen/internal/model"
)

// PurchaseFilter narrows purchase lists.
type PurchaseFilter struct {
	SupplierID int64
}

func (f PurchaseFilter) where() (string, []any) {
	if f.SupplierID > 0 {
		return ` WHERE p.supplier_id = ?`, []any{f.SupplierID}
	}
	return "", nil
}

// InsertPurchase records a purchase header and returns its ID.
func InsertPurchase(ctx context.Context, db DBTX, p *model.Purchase) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO purchases (supplier_id, purchased_at, ref) VALUES (?, ?, ?)`,
		p.SupplierID, p.PurchasedAt.UTC(), nullString(p.Ref),
	)
	if err != nil {
		return 0, fmt.Errorf("creating purchase: %w", classify(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting purchase id: %w", err)
	}
	return id, nil
}

// InsertPurchaseLine records one purchase line and returns its ID.
func InsertPurchaseLine(ctx context.Context, db DBTX, l *model.PurchaseLine) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO purchase_lines (purchase_id, item_id, qty, unit_price) VALUES (?, ?, ?, ?)`,
		l.PurchaseID, l.ItemID, l.Qty, l.UnitPrice.StringFixed(model.PriceScale),
	)
	if err != nil {
		return 0, fmt.Errorf("creating purchase line: %w", classify(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting purchase line id: %w", err)
	}
	return id, nil
}

// GetPurchase returns a purchase with its lines and total.
func GetPurchase(ctx context.Context, db DBTX, id int64) (*model.Purchase, error) {
	p := &model.Purchase{}
	var ref sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT p.id, p.supplier_id, s.name, p.purchased_at, p.ref, p.created_at
		 FROM purchases p JOIN suppliers s ON s.id = p.supplier_id
		 WHERE p.id = ?`, id,
	).Scan(&p.ID, &p.SupplierID, &p.SupplierName, &p.PurchasedAt, &ref, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting purchase: %w", err)
	}
	p.Ref = ref.String

	lines, err := purchaseLines(ctx, db, []int64{id})
	if err != nil {
		return nil, err
	}
	p.Lines = lines[id]
	p.Total = model.SumLines(p.Lines)
	return p, nil
}

// ListPurchases returns purchases newest first, each with its total.
func ListPurchases(ctx context.Context, db DBTX, f PurchaseFilter, pg Page) ([]model.Purchase, error) {
	where, args := f.where()
	limit, limitArgs := pg.clause()
	rows, err := db.QueryContext(ctx,
		`SELECT p.id, p.supplier_id, s.name, p.purchased_at, p.ref, p.created_at
		 FROM purchases p JOIN suppliers s ON s.id = p.supplier_id`+where+`
		 ORDER BY p.purchased_at DESC, p.id DESC`+limit,
		append(args, limitArgs...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	defer rows.Close()

	var purchases []model.Purchase
	var ids []int64
	for rows.Next() {
		var p model.Purchase
		var ref sql.NullString
		if err := rows.Scan(&p.ID, &p.SupplierID, &p.SupplierName, &p.PurchasedAt, &ref, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning purchase: %w", err)
		}
		p.Ref = ref.String
		purchases = append(purchases, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lines, err := purchaseLines(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for i := range purchases {
		purchases[i].Total = model.SumLines(lines[purchases[i].ID])
	}
	return purchases, nil
}

// CountPurchases returns the number of purchases matching f.
func CountPurchases(ctx context.Context, db DBTX, f PurchaseFilter) (int, error) {
	where, args := f.where()
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM purchases p`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting purchases: %w", err)
	}
	return n, nil
}

// purchaseLines loads the lines of the given purchases keyed by purchase ID.
// Totals are summed in Go so prices never pass through floating point.
func purchaseLines(ctx context.Context, db DBTX, ids []int64) (map[int64][]model.PurchaseLine, error) {
	out := make(map[int64][]model.PurchaseLine, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := db.QueryContext(ctx,
		`SELECT l.id, l.purchase_id, l.item_id, i.sku, l.qty, l.unit_price
		 FROM purchase_lines l JOIN inventory_items i ON i.id = l.item_id
		 WHERE l.purchase_id IN (`+placeholders(len(ids))+`)
		 ORDER BY l.id`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing purchase lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l model.PurchaseLine
		var price decimal.Decimal
		if err := rows.Scan(&l.ID, &l.PurchaseID, &l.ItemID, &l.ItemSKU, &l.Qty, &price); err != nil {
			return nil, fmt.Errorf("scanning purchase line: %w", err)
		}
		l.UnitPrice = price
		out[l.PurchaseID] = append(out[l.PurchaseID], l)
	}
	return out, rows.Err()
}
