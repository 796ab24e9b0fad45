package inventory

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/almacen/internal/db"
	"github.com/erazemk/almacen/internal/model"
	"github.com/erazemk/almacen/internal/store"
)

type fixture struct {
	db       *sql.DB
	svc      *Service
	supplier *model.Supplier
	user     *model.User
	category *model.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, database, "Hardware")
	require.NoError(t, err)
	sup, err := store.CreateSupplier(ctx, database, "ACME")
	require.NoError(t, err)
	user, err := store.CreateUser(ctx, database, "worker", "hash", model.RoleUser)
	require.NoError(t, err)

	return &fixture{
		db:       database,
		svc:      NewService(NewSQLUnitOfWork(database)),
		supplier: sup,
		user:     user,
		category: cat,
	}
}

func (f *fixture) item(t *testing.T, sku string, stock int) *model.InventoryItem {
	t.Helper()
	item, err := f.svc.CreateItem(context.Background(), model.InventoryItem{
		SKU: sku, CategoryID: f.category.ID, Active: true,
	}, stock)
	require.NoError(t, err)
	return item
}

func (f *fixture) stock(t *testing.T, id int64) int {
	t.Helper()
	item, err := store.GetItem(context.Background(), f.db, id)
	require.NoError(t, err)
	return item.Stock
}

func (f *fixture) ledgerCount(t *testing.T, typ model.TxnType) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM inventory_txns WHERE txn_type = ?`, string(typ)).Scan(&n))
	return n
}

func TestPurchaseThenRequisitionEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bolt := f.item(t, "BOLT-10", 0)

	p, err := f.svc.CreatePurchase(ctx, PurchaseInput{
		SupplierID: f.supplier.ID,
		Ref:        "INV-7",
		Lines:      []PurchaseLineInput{{ItemID: bolt.ID, Qty: 10, UnitPrice: decimal.RequireFromString("0.2500")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t, bolt.ID))

	saved, err := store.GetPurchase(ctx, f.db, p.ID)
	require.NoError(t, err)
	require.Len(t, saved.Lines, 1)
	assert.Equal(t, "2.5000", saved.Total.StringFixed(4))

	_, err = f.svc.CreateRequisition(ctx, Actor{UserID: f.user.ID, Role: f.user.Role}, RequisitionInput{
		Lines: []RequisitionLineInput{{ItemID: bolt.ID, Qty: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, f.stock(t, bolt.ID))

	txns, err := store.ListTxns(ctx, f.db, store.TxnFilter{ItemID: bolt.ID}, store.Page{})
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, model.TxnIssue, txns[0].Type)
	assert.Equal(t, -4, txns[0].Qty)
	assert.Equal(t, model.TxnPurchase, txns[1].Type)
	assert.Equal(t, "ACME", txns[1].SupplierName)
	assert.Equal(t, "0.2500", txns[1].UnitPrice.Decimal.StringFixed(4))
}

func TestMultiLinePurchaseCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var lines []PurchaseLineInput
	var items []*model.InventoryItem
	for i, sku := range []string{"A", "B", "C", "D"} {
		item := f.item(t, sku, i)
		items = append(items, item)
		lines = append(lines, PurchaseLineInput{ItemID: item.ID, Qty: i + 1, UnitPrice: decimal.NewFromInt(1)})
	}

	_, err := f.svc.CreatePurchase(ctx, PurchaseInput{SupplierID: f.supplier.ID, Lines: lines})
	require.NoError(t, err)

	for i, item := range items {
		assert.Equal(t, i+i+1, f.stock(t, item.ID), "item %s", item.SKU)
	}
	assert.Equal(t, 4, f.ledgerCount(t, model.TxnPurchase))

	n, err := store.CountPurchases(ctx, f.db, store.PurchaseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFailedRequisitionLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "A", 10)
	b := f.item(t, "B", 5)
	before := f.ledgerCount(t, model.TxnAdjust)

	_, err := f.svc.CreateRequisition(ctx, Actor{UserID: f.user.ID}, RequisitionInput{
		Lines: []RequisitionLineInput{{ItemID: a.ID, Qty: 3}, {ItemID: b.ID, Qty: 8}},
	})
	var ise *InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, 5, ise.Available)
	assert.Equal(t, 8, ise.Requested)

	assert.Equal(t, 10, f.stock(t, a.ID))
	assert.Equal(t, 5, f.stock(t, b.ID))
	assert.Equal(t, 0, f.ledgerCount(t, model.TxnIssue))
	assert.Equal(t, before, f.ledgerCount(t, model.TxnAdjust))

	n, err := store.CountRequisitions(ctx, f.db, store.RequisitionFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConcurrentRequisitionsNeverOversell(t *testing.T) {
	f := newFixture(t)
	item := f.item(t, "SCARCE", 10)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateRequisition(context.Background(), Actor{UserID: f.user.ID}, RequisitionInput{
				Lines: []RequisitionLineInput{{ItemID: item.ID, Qty: 3}},
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			var ise *InsufficientStockError
			if !errors.As(err, &ise) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, success)
	assert.Equal(t, 1, f.stock(t, item.ID))
	assert.Equal(t, 3, f.ledgerCount(t, model.TxnIssue))
}

func TestAdjustAgainstDatabase(t *testing.T) {
	f := newFixture(t)
	item := f.item(t, "TAPE", 4)

	txn, stock, err := f.svc.Adjust(context.Background(), AdjustInput{ItemID: item.ID, Delta: 6, Note: "recount"})
	require.NoError(t, err)
	assert.Equal(t, 10, stock)
	assert.Equal(t, 10, f.stock(t, item.ID))
	assert.NotZero(t, txn.ID)
}
