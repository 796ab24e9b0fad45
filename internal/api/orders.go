package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/almacen/internal/inventory"
	"github.com/erazemk/almacen/internal/store"
)

// OrdersHandler records purchases, requisitions and adjustments.
type OrdersHandler struct {
	DB        *sql.DB
	Inventory *inventory.Service
}

type adjustRequest struct {
	ItemID int64  `json:"item_id"`
	Delta  int    `json:"delta"`
	Note   string `json:"note"`
}

type adjustResponse struct {
	Txn   any `json:"txn"`
	Stock int `json:"stock"`
}

type purchaseLineRequest struct {
	ItemID    int64           `json:"item_id"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type purchaseRequest struct {
	SupplierID  int64                 `json:"supplier_id"`
	PurchasedAt string                `json:"purchased_at"`
	Ref         string                `json:"ref"`
	Lines       []purchaseLineRequest `json:"lines"`
}

type requisitionLineRequest struct {
	ItemID int64 `json:"item_id"`
	Qty    int   `json:"qty"`
}

type requisitionRequest struct {
	RequestedAt string                   `json:"requested_at"`
	Note        string                   `json:"note"`
	Lines       []requisitionLineRequest `json:"lines"`
}

// parseDate parses an optional YYYY-MM-DD value; empty means today.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.DateOnly, s)
	return t, err == nil
}

func actor(r *http.Request) inventory.Actor {
	claims := GetClaims(r.Context())
	return inventory.Actor{UserID: claims.UserID, Role: claims.Role}
}

// Adjust handles POST /api/inventory/adjust.
func (h *OrdersHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID <= 0 {
		jsonError(w, http.StatusBadRequest, "item_id is required")
		return
	}

	txn, stock, err := h.Inventory.Adjust(r.Context(), inventory.AdjustInput{
		ItemID: req.ItemID,
		Delta:  req.Delta,
		Note:   req.Note,
	})
	if err != nil {
		inventoryError(w, r, err)
		return
	}

	slog.Info("stock adjusted", "user", GetClaims(r.Context()).Username,
		"item", txn.ItemSKU, "delta", req.Delta, "stock", stock)
	jsonResponse(w, http.StatusOK, adjustResponse{Txn: txn, Stock: stock})
}

// CreatePurchase handles POST /api/purchases.
func (h *OrdersHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	purchasedAt, ok := parseDate(req.PurchasedAt)
	if !ok {
		jsonError(w, http.StatusBadRequest, "purchased_at: expected YYYY-MM-DD")
		return
	}

	in := inventory.PurchaseInput{SupplierID: req.SupplierID, PurchasedAt: purchasedAt, Ref: req.Ref}
	for i, l := range req.Lines {
		in.Lines = append(in.Lines, inventory.PurchaseLineInput{Line: i, ItemID: l.ItemID, Qty: l.Qty, UnitPrice: l.UnitPrice})
	}

	p, err := h.Inventory.CreatePurchase(r.Context(), in)
	if err != nil {
		inventoryError(w, r, err)
		return
	}

	slog.Info("purchase recorded", "user", GetClaims(r.Context()).Username,
		"purchase", p.ID, "supplier", p.SupplierName, "lines", len(p.Lines))
	jsonResponse(w, http.StatusCreated, p)
}

// GetPurchase handles GET /api/purchases/{id}.
func (h *OrdersHandler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid purchase id")
		return
	}
	p, err := store.GetPurchase(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get purchase", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get purchase")
		return
	}
	if p == nil {
		jsonError(w, http.StatusNotFound, "purchase not found")
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// CreateRequisition handles POST /api/requisitions. The requester is always
// the authenticated user.
func (h *OrdersHandler) CreateRequisition(w http.ResponseWriter, r *http.Request) {
	var req requisitionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	requestedAt, ok := parseDate(req.RequestedAt)
	if !ok {
		jsonError(w, http.StatusBadRequest, "requested_at: expected YYYY-MM-DD")
		return
	}

	in := inventory.RequisitionInput{RequestedAt: requestedAt, Note: req.Note}
	for i, l := range req.Lines {
		in.Lines = append(in.Lines, inventory.RequisitionLineInput{Line: i, ItemID: l.ItemID, Qty: l.Qty})
	}

	created, err := h.Inventory.CreateRequisition(r.Context(), actor(r), in)
	if err != nil {
		inventoryError(w, r, err)
		return
	}

	slog.Info("requisition recorded", "user", GetClaims(r.Context()).Username,
		"requisition", created.ID, "lines", len(created.Lines))
	jsonResponse(w, http.StatusCreated, created)
}

// GetRequisition handles GET /api/requisitions/{id}. Non-staff may only see
// their own requisitions.
func (h *OrdersHandler) GetRequisition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid requisition id")
		return
	}
	req, err := store.GetRequisition(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get requisition", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get requisition")
		return
	}
	if req == nil {
		jsonError(w, http.StatusNotFound, "requisition not found")
		return
	}
	if !actor(r).CanView(req) {
		jsonError(w, http.StatusForbidden, "insufficient permissions")
		return
	}
	jsonResponse(w, http.StatusOK, req)
}
