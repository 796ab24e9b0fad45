package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/almacen/internal/inventory"
	"github.com/erazemk/almacen/internal/model"
	"github.com/erazemk/almacen/internal/store"
)

// PurchasesPage handles GET /purchases.
func (s *Server) PurchasesPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	supplierID, _ := strconv.ParseInt(r.URL.Query().Get("supplier"), 10, 64)
	f := store.PurchaseFilter{SupplierID: supplierID}

	total, err := store.CountPurchases(ctx, s.DB, f)
	if err != nil {
		s.serverError(w, r, "failed to count purchases", err)
		return
	}
	pager := newPager(r, total)
	purchases, err := store.ListPurchases(ctx, s.DB, f, pager.Store())
	if err != nil {
		s.serverError(w, r, "failed to list purchases", err)
		return
	}

	data := &struct {
		PageData
		Purchases  []model.Purchase
		Suppliers  []model.Supplier
		SupplierID int64
		Pager      *Pager
	}{
		PageData:   s.page(r, "Purchases"),
		Purchases:  purchases,
		SupplierID: supplierID,
		Pager:      pager,
	}

	if isPartial(r) {
		s.Templates.RenderPartial(w, "purchases.html", "table", data)
		return
	}
	if data.Suppliers, err = store.ListSuppliers(ctx, s.DB); err != nil {
		s.serverError(w, r, "failed to list suppliers", err)
		return
	}
	s.Templates.Render(w, "purchases.html", data)
}

type purchaseFormData struct {
	PageData
	Suppliers   []model.Supplier
	Items       []model.InventoryItem
	SupplierID  int64
	PurchasedAt string
	Ref         string
	Lines       []formLine
}

// PurchaseNewPage handles GET /purchases/new.
func (s *Server) PurchaseNewPage(w http.ResponseWriter, r *http.Request) {
	s.renderPurchaseForm(w, r, http.StatusOK, &purchaseFormData{
		PageData:    s.page(r, "New purchase"),
		PurchasedAt: s.Now().Format("2006-01-02"),
		Lines:       formLines(nil),
	})
}

// PurchaseCreateSubmit handles POST /purchases/new. A rejected purchase
// leaves stock untouched and shows the form again with the rows as typed.
func (s *Server) PurchaseCreateSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.errorPage(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	supplierID, _ := strconv.ParseInt(r.PostForm.Get("supplier"), 10, 64)
	data := &purchaseFormData{
		PageData:    s.page(r, "New purchase"),
		SupplierID:  supplierID,
		PurchasedAt: strings.TrimSpace(r.PostForm.Get("purchased_at")),
		Ref:         strings.TrimSpace(r.PostForm.Get("ref")),
		Lines:       formLines(r.PostForm),
	}
	fail := func(msg string) {
		data.Error = msg
		s.renderPurchaseForm(w, r, http.StatusUnprocessableEntity, data)
	}

	purchasedAt, err := formDate(data.PurchasedAt)
	if err != nil {
		fail("Purchase date must be a valid date.")
		return
	}
	lines, err := inventory.PurchaseLinesFromForm(r.PostForm)
	if err != nil {
		msg, _ := userMessage(err)
		fail(msg)
		return
	}

	p, err := s.Inventory.CreatePurchase(r.Context(), inventory.PurchaseInput{
		SupplierID:  supplierID,
		PurchasedAt: purchasedAt,
		Ref:         data.Ref,
		Lines:       lines,
	})
	if err != nil {
		if msg, ok := userMessage(err); ok {
			fail(msg)
			return
		}
		s.serverError(w, r, "failed to create purchase", err)
		return
	}

	slog.Info("purchase recorded", "user", GetWebClaims(r.Context()).Username,
		"purchase_id", p.ID, "supplier", p.SupplierName, "lines", len(p.Lines), "total", p.Total.String())
	redirect(w, r, fmt.Sprintf("/purchases/%d", p.ID), "success", fmt.Sprintf("Purchase #%d recorded.", p.ID))
}

func (s *Server) renderPurchaseForm(w http.ResponseWriter, r *http.Request, status int, data *purchaseFormData) {
	ctx := r.Context()
	var err error
	if data.Suppliers, err = store.ListSuppliers(ctx, s.DB); err != nil {
		s.serverError(w, r, "failed to list suppliers", err)
		return
	}
	if data.Items, err = store.ListItems(ctx, s.DB, store.ItemFilter{ActiveOnly: true}, store.Page{}); err != nil {
		s.serverError(w, r, "failed to list items", err)
		return
	}
	s.Templates.RenderStatus(w, status, "purchase_new.html", data)
}

// PurchaseDetailPage handles GET /purchases/{id}.
func (s *Server) PurchaseDetailPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.errorPage(w, r, http.StatusNotFound, "Purchase not found.")
		return
	}
	p, err := store.GetPurchase(r.Context(), s.DB, id)
	if err != nil {
		s.serverError(w, r, "failed to get purchase", err)
		return
	}
	if p == nil {
		s.errorPage(w, r, http.StatusNotFound, "Purchase not found.")
		return
	}
	s.Templates.Render(w, "purchase_detail.html", &struct {
		PageData
		Purchase *model.Purchase
	}{PageData: s.page(r, fmt.Sprintf("Purchase #%d", p.ID)), Purchase: p})
}
