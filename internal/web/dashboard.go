package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/almacen/internal/model"
	"github.com/erazemk/almacen/internal/store"
)

// LowStockLimit caps the low stock panel.
const LowStockLimit = 10

type ledgerFilters struct {
	Item     string
	DateFrom string
	DateTo   string
}

// Dashboard handles GET /. Staff see catalog figures, low stock and the
// whole ledger; other users see only their own requisition activity.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := s.actor(r)
	q := r.URL.Query()

	filters := ledgerFilters{
		Item:     strings.TrimSpace(q.Get("item")),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	}
	f := store.TxnFilter{ItemQuery: filters.Item}
	var filterErr string
	if from, err := formDate(filters.DateFrom); err != nil {
		filterErr = "Invalid start date."
	} else if !from.IsZero() {
		f.From = &from
	}
	if to, err := formDate(filters.DateTo); err != nil {
		filterErr = "Invalid end date."
	} else if !to.IsZero() {
		until := to.AddDate(0, 0, 1)
		f.Until = &until
	}
	if !actor.Staff() {
		f.RequestedBy = actor.UserID
	}

	total, err := store.CountTxns(ctx, s.DB, f)
	if err != nil {
		s.serverError(w, r, "failed to count ledger", err)
		return
	}
	pager := newPager(r, total)
	txns, err := store.ListTxns(ctx, s.DB, f, pager.Store())
	if err != nil {
		s.serverError(w, r, "failed to list ledger", err)
		return
	}

	data := &struct {
		PageData
		Stats    *store.Stats
		LowStock []model.InventoryItem
		Txns     []model.InventoryTxn
		Filters  ledgerFilters
		Pager    *Pager
	}{
		PageData: s.page(r, "Dashboard"),
		Txns:     txns,
		Filters:  filters,
		Pager:    pager,
	}
	data.Error = filterErr

	if isPartial(r) {
		s.Templates.RenderPartial(w, "dashboard.html", "table", data)
		return
	}

	var requestedBy int64
	if !actor.Staff() {
		requestedBy = actor.UserID
	}
	if data.Stats, err = store.DashboardStats(ctx, s.DB, monthStart(s.Now()), requestedBy); err != nil {
		s.serverError(w, r, "failed to load dashboard stats", err)
		return
	}
	if actor.Staff() {
		if data.LowStock, err = store.ListLowStock(ctx, s.DB, LowStockLimit); err != nil {
			s.serverError(w, r, "failed to list low stock", err)
			return
		}
	}

	s.Templates.Render(w, "dashboard.html", data)
}

func monthStart(now time.Time) time.Time {
	y, m, _ := now.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
