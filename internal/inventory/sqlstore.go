package inventory

import (
	"context"
	"database/sql"

	"github.com/erazemk/almacen/internal/model"
	"github.com/erazemk/almacen/internal/store"
)

// SQLUnitOfWork runs units of work as database transactions.
type SQLUnitOfWork struct {
	DB *sql.DB
}

// NewSQLUnitOfWork returns a UnitOfWork backed by db.
func NewSQLUnitOfWork(db *sql.DB) *SQLUnitOfWork {
	return &SQLUnitOfWork{DB: db}
}

// Do runs fn inside a transaction.
func (u *SQLUnitOfWork) Do(ctx context.Context, fn func(Store) error) error {
	return store.WithTx(ctx, u.DB, func(tx *sql.Tx) error {
		return fn(txStore{tx: tx})
	})
}

type txStore struct {
	tx *sql.Tx
}

func (s txStore) LockItem(ctx context.Context, id int64) (*model.InventoryItem, error) {
	return store.LockItem(ctx, s.tx, id)
}

func (s txStore) SetItemStock(ctx context.Context, id int64, stock int) error {
	return store.SetItemStock(ctx, s.tx, id, stock)
}

func (s txStore) InsertItem(ctx context.Context, item *model.InventoryItem) (int64, error) {
	return store.InsertItem(ctx, s.tx, item)
}

func (s txStore) InsertTxn(ctx context.Context, t *model.InventoryTxn) (int64, error) {
	return store.InsertTxn(ctx, s.tx, t)
}

func (s txStore) GetSupplier(ctx context.Context, id int64) (*model.Supplier, error) {
	return store.GetSupplier(ctx, s.tx, id)
}

func (s txStore) InsertPurchase(ctx context.Context, p *model.Purchase) (int64, error) {
	return store.InsertPurchase(ctx, s.tx, p)
}

func (s txStore) InsertPurchaseLine(ctx context.Context, l *model.PurchaseLine) (int64, error) {
	return store.InsertPurchaseLine(ctx, s.tx, l)
}

func (s txStore) InsertRequisition(ctx context.Context, r *model.Requisition) (int64, error) {
	return store.InsertRequisition(ctx, s.tx, r)
}

func (s txStore) InsertRequisitionLine(ctx context.Context, l *model.RequisitionLine) (int64, error) {
	return store.InsertRequisitionLine(ctx, s.tx, l)
}
