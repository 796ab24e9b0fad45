package store

import (
	"context"
	"fmt"
	"time"
)

// Stats summarizes activity for the dashboard.
type Stats struct {
	Items                 int
	LowStock              int
	PurchasesThisMonth    int
	RequisitionsThisMonth int
}

// DashboardStats counts catalog and activity figures since monthStart. When
// requestedBy is set only that user's requisitions are counted and the
// catalog figures are left at zero.
func DashboardStats(ctx context.Context, db DBTX, monthStart time.Time, requestedBy int64) (*Stats, error) {
	s := &Stats{}
	since := monthStart.UTC()

	if requestedBy > 0 {
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM requisitions WHERE requested_at >= ? AND requested_by = ?`,
			since, requestedBy,
		).Scan(&s.RequisitionsThisMonth)
		if err != nil {
			return nil, fmt.Errorf("counting requisitions: %w", err)
		}
		return s, nil
	}

	err := db.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM inventory_items WHERE active = 1),
		   (SELECT COUNT(*) FROM inventory_items WHERE active = 1 AND stock <= min_stock),
		   (SELECT COUNT(*) FROM purchases WHERE purchased_at >= ?),
		   (SELECT COUNT(*) FROM requisitions WHERE requested_at >= ?)`,
		since, since,
	).Scan(&s.Items, &s.LowStock, &s.PurchasesThisMonth, &s.RequisitionsThisMonth)
	if err != nil {
		return nil, fmt.Errorf("computing dashboard stats: %w", err)
	}
	return s, nil
}
