package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/almacen/internal/model"
)

// RequisitionFilter narrows requisition lists.
type RequisitionFilter struct {
	RequestedBy int64
}

func (f RequisitionFilter) where() (string, []any) {
	if f.RequestedBy > 0 {
		return ` WHERE r.requested_by = ?`, []any{f.RequestedBy}
	}
	return "", nil
}

const requisitionSelect = `SELECT r.id, r.requested_by, u.username, u.first_name, u.last_name,
	r.requested_at, r.note, r.created_at
	FROM requisitions r JOIN users u ON u.id = r.requested_by`

func scanRequisition(row interface{ Scan(...any) error }, r *model.Requisition) error {
	var note sql.NullString
	var u model.User
	if err := row.Scan(&r.ID, &r.RequestedBy, &u.Username, &u.FirstName, &u.LastName,
		&r.RequestedAt, &note, &r.CreatedAt); err != nil {
		return err
	}
	r.RequesterName = u.DisplayName()
	r.Note = note.String
	return nil
}

// InsertRequisition records a requisition header and returns its ID.
func InsertRequisition(ctx context.Context, db DBTX, r *model.Requisition) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO requisitions (requested_by, requested_at, note) VALUES (?, ?, ?)`,
		r.RequestedBy, r.RequestedAt.UTC(), nullString(r.Note),
	)
	if err != nil {
		return 0, fmt.Errorf("creating requisition: %w", classify(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting requisition id: %w", err)
	}
	return id, nil
}

// InsertRequisitionLine records one requisition line and returns its ID.
func InsertRequisitionLine(ctx context.Context, db DBTX, l *model.RequisitionLine) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO requisition_lines (requisition_id, item_id, qty) VALUES (?, ?, ?)`,
		l.RequisitionID, l.ItemID, l.Qty,
	)
	if err != nil {
		return 0, fmt.Errorf("creating requisition line: %w", classify(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting requisition line id: %w", err)
	}
	return id, nil
}

// GetRequisition returns a requisition with its lines.
func GetRequisition(ctx context.Context, db DBTX, id int64) (*model.Requisition, error) {
	r := &model.Requisition{}
	err := scanRequisition(db.QueryRowContext(ctx, requisitionSelect+` WHERE r.id = ?`, id), r)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting requisition: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT l.id, l.requisition_id, l.item_id, i.sku, l.qty
		 FROM requisition_lines l JOIN inventory_items i ON i.id = l.item_id
		 WHERE l.requisition_id = ? ORDER BY l.id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("listing requisition lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l model.RequisitionLine
		if err := rows.Scan(&l.ID, &l.RequisitionID, &l.ItemID, &l.ItemSKU, &l.Qty); err != nil {
			return nil, fmt.Errorf("scanning requisition line: %w", err)
		}
		r.Lines = append(r.Lines, l)
	}
	return r, rows.Err()
}

// ListRequisitions returns requisitions newest first.
func ListRequisitions(ctx context.Context, db DBTX, f RequisitionFilter, pg Page) ([]model.Requisition, error) {
	where, args := f.where()
	limit, limitArgs := pg.clause()
	rows, err := db.QueryContext(ctx,
		requisitionSelect+where+` ORDER BY r.requested_at DESC, r.id DESC`+limit,
		append(args, limitArgs...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing requisitions: %w", err)
	}
	defer rows.Close()

	var out []model.Requisition
	for rows.Next() {
		var r model.Requisition
		if err := scanRequisition(rows, &r); err != nil {
			return nil, fmt.Errorf("scanning requisition: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRequisitions returns the number of requisitions matching f.
func CountRequisitions(ctx context.Context, db DBTX, f RequisitionFilter) (int, error) {
	where, args := f.where()
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM requisitions r`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting requisitions: %w", err)
	}
	return n, nil
}
