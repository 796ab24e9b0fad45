package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/almacen/internal/model"
)

// TxnFilter narrows ledger queries.
type TxnFilter struct {
	ItemID      int64
	ItemQuery   string     // case-insensitive match on SKU or description
	From        *time.Time // inclusive
	Until       *time.Time // exclusive
	RequestedBy int64      // only entries of this user's requisitions
}

func (f TxnFilter) where() (string, []any) {
	clauses := []string{"1=1"}
	var args []any
	if f.ItemID > 0 {
		clauses = append(clauses, `t.item_id = ?`)
		args = append(args, f.ItemID)
	}
	if f.ItemQuery != "" {
		clauses = append(clauses, `(i.sku LIKE ? ESCAPE '\' OR i.description LIKE ? ESCAPE '\')`)
		p := likePattern(f.ItemQuery)
		args = append(args, p, p)
	}
	if f.From != nil {
		clauses = append(clauses, `t.happened_at >= ?`)
		args = append(args, f.From.UTC())
	}
	if f.Until != nil {
		clauses = append(clauses, `t.happened_at < ?`)
		args = append(args, f.Until.UTC())
	}
	if f.RequestedBy > 0 {
		clauses = append(clauses, `t.requisition_id IN (SELECT id FROM requisitions WHERE requested_by = ?)`)
		args = append(args, f.RequestedBy)
	}
	return ` WHERE ` + strings.Join(clauses, " AND "), args
}

const txnFrom = ` FROM inventory_txns t
	JOIN inventory_items i ON i.id = t.item_id
	LEFT JOIN suppliers s ON s.id = t.supplier_id`

// InsertTxn appends a ledger row and returns its ID. Ledger rows are never
// updated or deleted.
func InsertTxn(ctx context.Context, db DBTX, t *model.InventoryTxn) (int64, error) {
	var price any
	if t.UnitPrice.Valid {
		price = t.UnitPrice.Decimal.StringFixed(model.PriceScale)
	}
	result, err := db.ExecContext(ctx,
		`INSERT INTO inventory_txns
		   (item_id, txn_type, qty, unit_price, supplier_id, purchase_id, requisition_id, happened_at, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ItemID, string(t.Type), t.Qty, price, t.SupplierID, t.PurchaseID, t.RequisitionID,
		t.HappenedAt.UTC(), t.Note,
	)
	if err != nil {
		return 0, fmt.Errorf("recording ledger entry: %w", classify(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting ledger entry id: %w", err)
	}
	return id, nil
}

// ListTxns returns ledger rows newest first.
func ListTxns(ctx context.Context, db DBTX, f TxnFilter, p Page) ([]model.InventoryTxn, error) {
	where, args := f.where()
	limit, limitArgs := p.clause()
	rows, err := db.QueryContext(ctx,
		`SELECT t.id, t.item_id, i.sku, t.txn_type, t.qty, t.unit_price, t.supplier_id,
		        COALESCE(s.name, ''), t.purchase_id, t.requisition_id, t.happened_at, t.note, t.created_at`+
			txnFrom+where+` ORDER BY t.happened_at DESC, t.id DESC`+limit,
		append(args, limitArgs...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing ledger: %w", err)
	}
	defer rows.Close()

	var txns []model.InventoryTxn
	for rows.Next() {
		var t model.InventoryTxn
		var typ string
		if err := rows.Scan(&t.ID, &t.ItemID, &t.ItemSKU, &typ, &t.Qty, &t.UnitPrice, &t.SupplierID,
			&t.SupplierName, &t.PurchaseID, &t.RequisitionID, &t.HappenedAt, &t.Note, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		t.Type = model.TxnType(typ)
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// CountTxns returns the number of ledger rows matching f.
func CountTxns(ctx context.Context, db DBTX, f TxnFilter) (int, error) {
	where, args := f.where()
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*)`+txnFrom+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting ledger: %w", err)
	}
	return n, nil
}
