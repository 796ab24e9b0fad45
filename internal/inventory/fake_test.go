package inventory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/erazemk/almacen/internal/model"
)

// memStore is an in-memory Store. memUnitOfWork runs each unit of work on
// a copy and keeps it only if the work succeeds.
type memStore struct {
	items            map[int64]model.InventoryItem
	suppliers        map[int64]model.Supplier
	txns             []model.InventoryTxn
	purchases        []model.Purchase
	purchaseLines    []model.PurchaseLine
	requisitions     []model.Requisition
	requisitionLines []model.RequisitionLine
	locks            []int64
	nextID           int64
	failTxnInsert    bool
}

func newMemStore() *memStore {
	return &memStore{
		items:     make(map[int64]model.InventoryItem),
		suppliers: make(map[int64]model.Supplier),
		nextID:    100,
	}
}

func (m *memStore) clone() *memStore {
	c := *m
	c.items = maps.Clone(m.items)
	c.suppliers = maps.Clone(m.suppliers)
	c.txns = slices.Clone(m.txns)
	c.purchases = slices.Clone(m.purchases)
	c.purchaseLines = slices.Clone(m.purchaseLines)
	c.requisitions = slices.Clone(m.requisitions)
	c.requisitionLines = slices.Clone(m.requisitionLines)
	c.locks = nil
	return &c
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addItem(id int64, sku string, stock int) {
	m.items[id] = model.InventoryItem{ID: id, SKU: sku, Slug: model.Slugify(sku), CategoryID: 1, Stock: stock, Active: true}
}

func (m *memStore) LockItem(_ context.Context, id int64) (*model.InventoryItem, error) {
	m.locks = append(m.locks, id)
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (m *memStore) SetItemStock(_ context.Context, id int64, stock int) error {
	item := m.items[id]
	item.Stock = stock
	m.items[id] = item
	return nil
}

func (m *memStore) InsertItem(_ context.Context, item *model.InventoryItem) (int64, error) {
	for _, it := range m.items {
		if it.SKU == item.SKU {
			return 0, errors.New("duplicate sku")
		}
	}
	id := m.id()
	stored := *item
	stored.ID = id
	stored.Stock = 0
	m.items[id] = stored
	return id, nil
}

func (m *memStore) InsertTxn(_ context.Context, t *model.InventoryTxn) (int64, error) {
	if m.failTxnInsert {
		return 0, errors.New("disk full")
	}
	row := *t
	row.ID = m.id()
	m.txns = append(m.txns, row)
	return row.ID, nil
}

func (m *memStore) GetSupplier(_ context.Context, id int64) (*model.Supplier, error) {
	s, ok := m.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memStore) InsertPurchase(_ context.Context, p *model.Purchase) (int64, error) {
	row := *p
	row.ID = m.id()
	m.purchases = append(m.purchases, row)
	return row.ID, nil
}

func (m *memStore) InsertPurchaseLine(_ context.Context, l *model.PurchaseLine) (int64, error) {
	row := *l
	row.ID = m.id()
	m.purchaseLines = append(m.purchaseLines, row)
	return row.ID, nil
}

func (m *memStore) InsertRequisition(_ context.Context, r *model.Requisition) (int64, error) {
	row := *r
	row.ID = m.id()
	m.requisitions = append(m.requisitions, row)
	return row.ID, nil
}

func (m *memStore) InsertRequisitionLine(_ context.Context, l *model.RequisitionLine) (int64, error) {
	row := *l
	row.ID = m.id()
	m.requisitionLines = append(m.requisitionLines, row)
	return row.ID, nil
}

type memUnitOfWork struct {
	state   *memStore
	commits int
	// lastLocks records lock order of the most recent unit of work.
	lastLocks []int64
}

func (u *memUnitOfWork) Do(_ context.Context, fn func(Store) error) error {
	work := u.state.clone()
	err := fn(work)
	u.lastLocks = work.locks
	if err != nil {
		return err
	}
	u.state = work
	u.commits++
	return nil
}

type countingObserver struct {
	byType map[model.TxnType]int
}

func (o *countingObserver) StockMutated(t model.TxnType, qty int) {
	if o.byType == nil {
		o.byType = make(map[model.TxnType]int)
	}
	o.byType[t] += qty
}

var fixedNow = time.Date(2026, 5, 4, 15, 30, 0, 0, time.UTC)

func newTestService(st *memStore, opts ...Option) (*Service, *memUnitOfWork) {
	uow := &memUnitOfWork{state: st}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(uow, opts...), uow
}
