// Package inventory implements the stock ledger: every stock change runs in
// a unit of work that locks the affected items, applies the change and
// appends exactly one ledger row per change.
package inventory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/almacen/internal/model"
)

// Store is the set of writes available inside a unit of work.
type Store interface {
	LockItem(ctx context.Context, id int64) (*model.InventoryItem, error)
	SetItemStock(ctx context.Context, id int64, stock int) error
	InsertItem(ctx context.Context, item *model.InventoryItem) (int64, error)
	InsertTxn(ctx context.Context, t *model.InventoryTxn) (int64, error)
	GetSupplier(ctx context.Context, id int64) (*model.Supplier, error)
	InsertPurchase(ctx context.Context, p *model.Purchase) (int64, error)
	InsertPurchaseLine(ctx context.Context, l *model.PurchaseLine) (int64, error)
	InsertRequisition(ctx context.Context, r *model.Requisition) (int64, error)
	InsertRequisitionLine(ctx context.Context, l *model.RequisitionLine) (int64, error)
}

// UnitOfWork runs fn atomically. If fn returns an error every write it made
// is discarded.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(Store) error) error
}

// Observer is notified of ledger rows after their unit of work commits.
type Observer interface {
	StockMutated(t model.TxnType, qty int)
}

// Actor is the authenticated user on whose behalf an operation runs.
type Actor struct {
	UserID int64
	Role   string
}

// Staff reports whether the actor manages stock.
func (a Actor) Staff() bool {
	return model.IsStaff(a.Role)
}

// CanView reports whether the actor may see a requisition.
func (a Actor) CanView(r *model.Requisition) bool {
	return a.Staff() || r.RequestedBy == a.UserID
}

// Service coordinates purchases, requisitions and adjustments.
type Service struct {
	uow      UnitOfWork
	now      func() time.Time
	observer Observer
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for ledger timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithObserver registers an observer for committed ledger rows.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// NewService creates a Service on top of uow.
func NewService(uow UnitOfWork, opts ...Option) *Service {
	s := &Service{uow: uow, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mutation describes one stock change and the ledger row recording it.
type Mutation struct {
	ItemID        int64
	Type          model.TxnType
	Delta         int
	UnitPrice     decimal.NullDecimal
	SupplierID    *int64
	PurchaseID    *int64
	RequisitionID *int64
	Note          string
}

// ApplyDelta re-reads the item under lock, applies m.Delta and appends the
// ledger row. A change that would leave stock negative fails with
// *InsufficientStockError. It must be called inside a unit of work.
func (s *Service) ApplyDelta(ctx context.Context, st Store, m Mutation) (*model.InventoryTxn, int, error) {
	if m.Delta == 0 {
		return nil, 0, invalid("qty", "must not be zero")
	}
	if !m.Type.Valid() {
		return nil, 0, invalid("txn_type", "unknown ledger entry type")
	}

	item, err := st.LockItem(ctx, m.ItemID)
	if err != nil {
		return nil, 0, err
	}
	if item == nil {
		return nil, 0, fmt.Errorf("item %d: %w", m.ItemID, ErrNotFound)
	}

	stock := item.Stock + m.Delta
	if stock < 0 {
		return nil, 0, &InsufficientStockError{
			ItemID:    item.ID,
			SKU:       item.SKU,
			Available: item.Stock,
			Requested: -m.Delta,
		}
	}
	if err := st.SetItemStock(ctx, item.ID, stock); err != nil {
		return nil, 0, err
	}

	txn := &model.InventoryTxn{
		ItemID:        item.ID,
		ItemSKU:       item.SKU,
		Type:          m.Type,
		Qty:           m.Delta,
		UnitPrice:     m.UnitPrice,
		SupplierID:    m.SupplierID,
		PurchaseID:    m.PurchaseID,
		RequisitionID: m.RequisitionID,
		HappenedAt:    s.now().UTC(),
		Note:          m.Note,
	}
	id, err := st.InsertTxn(ctx, txn)
	if err != nil {
		return nil, 0, err
	}
	txn.ID = id
	return txn, stock, nil
}

// lockItems locks every distinct item in ascending ID order so concurrent
// multi-line writes always acquire locks in the same order.
func lockItems(ctx context.Context, st Store, ids []int64) error {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	for _, id := range slices.Compact(sorted) {
		item, err := st.LockItem(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("item %d: %w", id, ErrNotFound)
		}
	}
	return nil
}

func (s *Service) notify(txns []*model.InventoryTxn) {
	if s.observer == nil {
		return
	}
	for _, t := range txns {
		s.observer.StockMutated(t.Type, t.Qty)
	}
}

func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PurchaseInput is a purchase to record.
type PurchaseInput struct {
	SupplierID  int64
	PurchasedAt time.Time // zero means today
	Ref         string
	Lines       []PurchaseLineInput
}

// CreatePurchase records a purchase and receives every line into stock
// atomically.
func (s *Service) CreatePurchase(ctx context.Context, in PurchaseInput) (*model.Purchase, error) {
	if len(in.Lines) == 0 {
		return nil, ErrEmptyOrder
	}
	if in.SupplierID <= 0 {
		return nil, invalid("supplier", "required")
	}
	ids := make([]int64, len(in.Lines))
	for i, l := range in.Lines {
		if l.Qty <= 0 {
			return nil, &ValidationError{Line: l.Line, Field: "qty", Msg: "must be a positive whole number"}
		}
		if l.UnitPrice.IsNegative() {
			return nil, &ValidationError{Line: l.Line, Field: "unit_price", Msg: "must not be negative"}
		}
		ids[i] = l.ItemID
	}
	purchasedAt := in.PurchasedAt
	if purchasedAt.IsZero() {
		purchasedAt = today(s.now())
	}

	p := &model.Purchase{
		SupplierID:  in.SupplierID,
		PurchasedAt: purchasedAt,
		Ref:         strings.TrimSpace(in.Ref),
	}
	var txns []*model.InventoryTxn

	err := s.uow.Do(ctx, func(st Store) error {
		txns = nil
		supplier, err := st.GetSupplier(ctx, in.SupplierID)
		if err != nil {
			return err
		}
		if supplier == nil {
			return fmt.Errorf("supplier %d: %w", in.SupplierID, ErrNotFound)
		}
		p.SupplierName = supplier.Name

		if err := lockItems(ctx, st, ids); err != nil {
			return err
		}

		p.ID, err = st.InsertPurchase(ctx, p)
		if err != nil {
			return err
		}

		p.Lines = make([]model.PurchaseLine, 0, len(in.Lines))
		note := fmt.Sprintf("Purchase #%d", p.ID)
		for _, l := range in.Lines {
			line := model.PurchaseLine{
				PurchaseID: p.ID,
				ItemID:     l.ItemID,
				Qty:        l.Qty,
				UnitPrice:  l.UnitPrice.Round(model.PriceScale),
			}
			line.ID, err = st.InsertPurchaseLine(ctx, &line)
			if err != nil {
				return err
			}
			txn, _, err := s.ApplyDelta(ctx, st, Mutation{
				ItemID:     l.ItemID,
				Type:       model.TxnPurchase,
				Delta:      l.Qty,
				UnitPrice:  decimal.NewNullDecimal(line.UnitPrice),
				SupplierID: &p.SupplierID,
				PurchaseID: &p.ID,
				Note:       note,
			})
			if err != nil {
				return err
			}
			line.ItemSKU = txn.ItemSKU
			p.Lines = append(p.Lines, line)
			txns = append(txns, txn)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating purchase: %w", err)
	}

	p.Total = model.SumLines(p.Lines)
	s.notify(txns)
	return p, nil
}

// RequisitionInput is a requisition to record.
type RequisitionInput struct {
	RequestedAt time.Time // zero means today
	Note        string
	Lines       []RequisitionLineInput
}

// CreateRequisition issues every line from stock on behalf of actor. Either
// all lines are issued or none are.
func (s *Service) CreateRequisition(ctx context.Context, actor Actor, in RequisitionInput) (*model.Requisition, error) {
	if actor.UserID <= 0 {
		return nil, ErrPermissionDenied
	}
	if len(in.Lines) == 0 {
		return nil, ErrEmptyOrder
	}
	note := strings.TrimSpace(in.Note)
	if len([]rune(note)) > model.MaxRequisitionNoteLength {
		return nil, invalid("note", "too long")
	}
	ids := make([]int64, len(in.Lines))
	for i, l := range in.Lines {
		if l.Qty <= 0 {
			return nil, &ValidationError{Line: l.Line, Field: "qty", Msg: "must be a positive whole number"}
		}
		ids[i] = l.ItemID
	}
	requestedAt := in.RequestedAt
	if requestedAt.IsZero() {
		requestedAt = today(s.now())
	}

	r := &model.Requisition{
		RequestedBy: actor.UserID,
		RequestedAt: requestedAt,
		Note:        note,
	}
	var txns []*model.InventoryTxn

	err := s.uow.Do(ctx, func(st Store) error {
		txns = nil
		if err := lockItems(ctx, st, ids); err != nil {
			return err
		}

		var err error
		r.ID, err = st.InsertRequisition(ctx, r)
		if err != nil {
			return err
		}

		r.Lines = make([]model.RequisitionLine, 0, len(in.Lines))
		ledgerNote := fmt.Sprintf("Requisition #%d", r.ID)
		for _, l := range in.Lines {
			line := model.RequisitionLine{RequisitionID: r.ID, ItemID: l.ItemID, Qty: l.Qty}
			line.ID, err = st.InsertRequisitionLine(ctx, &line)
			if err != nil {
				return err
			}
			txn, _, err := s.ApplyDelta(ctx, st, Mutation{
				ItemID:        l.ItemID,
				Type:          model.TxnIssue,
				Delta:         -l.Qty,
				RequisitionID: &r.ID,
				Note:          ledgerNote,
			})
			if err != nil {
				return err
			}
			line.ItemSKU = txn.ItemSKU
			r.Lines = append(r.Lines, line)
			txns = append(txns, txn)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating requisition: %w", err)
	}

	s.notify(txns)
	return r, nil
}

// AdjustInput is a manual stock correction.
type AdjustInput struct {
	ItemID int64
	Delta  int
	Note   string
}

// Adjust applies a manual correction and returns the ledger row and the
// resulting stock.
func (s *Service) Adjust(ctx context.Context, in AdjustInput) (*model.InventoryTxn, int, error) {
	if in.Delta == 0 {
		return nil, 0, invalid("qty", "must not be zero")
	}

	var (
		txn   *model.InventoryTxn
		stock int
	)
	err := s.uow.Do(ctx, func(st Store) error {
		var err error
		txn, stock, err = s.ApplyDelta(ctx, st, Mutation{
			ItemID: in.ItemID,
			Type:   model.TxnAdjust,
			Delta:  in.Delta,
			Note:   strings.TrimSpace(in.Note),
		})
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("adjusting stock: %w", err)
	}

	s.notify([]*model.InventoryTxn{txn})
	return txn, stock, nil
}

// CreateItem adds an item to the catalog. Opening stock, if any, is
// recorded as an adjustment so the ledger accounts for it.
func (s *Service) CreateItem(ctx context.Context, item model.InventoryItem, openingStock int) (*model.InventoryItem, error) {
	if err := ValidateItem(&item); err != nil {
		return nil, err
	}
	if openingStock < 0 {
		return nil, invalid("stock", "must not be negative")
	}

	var txns []*model.InventoryTxn
	err := s.uow.Do(ctx, func(st Store) error {
		txns = nil
		id, err := st.InsertItem(ctx, &item)
		if err != nil {
			return err
		}
		item.ID = id
		if openingStock == 0 {
			return nil
		}
		txn, stock, err := s.ApplyDelta(ctx, st, Mutation{
			ItemID: id,
			Type:   model.TxnAdjust,
			Delta:  openingStock,
			Note:   "Opening stock",
		})
		if err != nil {
			return err
		}
		item.Stock = stock
		txns = append(txns, txn)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	s.notify(txns)
	return &item, nil
}

// ValidateItem normalizes and checks catalog fields. An empty slug is
// derived from the SKU.
func ValidateItem(item *model.InventoryItem) error {
	item.SKU = strings.TrimSpace(item.SKU)
	item.Description = strings.TrimSpace(item.Description)
	item.Slug = model.Slugify(item.Slug)
	if item.Slug == "" {
		item.Slug = model.Slugify(item.SKU)
	}

	switch {
	case item.SKU == "":
		return invalid("sku", "required")
	case len([]rune(item.SKU)) > model.MaxSKULength:
		return invalid("sku", "too long")
	case item.Slug == "":
		return invalid("slug", "required")
	case len([]rune(item.Description)) > model.MaxDescriptionLength:
		return invalid("description", "too long")
	case item.CategoryID <= 0:
		return invalid("category", "required")
	case item.MinStock < 0:
		return invalid("min_stock", "must not be negative")
	case item.MaxStock < 0:
		return invalid("max_stock", "must not be negative")
	}
	return nil
}
