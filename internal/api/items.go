package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/almacen/internal/model"
	"github.com/erazemk/almacen/internal/store"
)

// MaxPageSize caps the limit query parameter.
const MaxPageSize = 200

// ItemsHandler serves the catalog and the ledger.
type ItemsHandler struct {
	DB *sql.DB
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// page reads limit and offset, defaulting to the first 50 rows.
func page(r *http.Request) store.Page {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	limit = min(limit, MaxPageSize)
	offset, err := strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return store.Page{Limit: limit, Offset: offset}
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.ItemFilter{Search: q.Get("search")}
	f.CategoryID, _ = strconv.ParseInt(q.Get("category"), 10, 64)
	if !model.IsStaff(GetClaims(r.Context()).Role) {
		f.ActiveOnly = true
	}

	items, err := store.ListItems(r.Context(), h.DB, f, page(r))
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	total, err := store.CountItems(r.Context(), h.DB, f)
	if err != nil {
		slog.Error("failed to count items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	jsonResponse(w, http.StatusOK, listResponse[model.InventoryItem]{Items: items, Total: total})
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// ItemTxns handles GET /api/items/{id}/txns.
func (h *ItemsHandler) ItemTxns(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	f, ok := txnFilter(w, r)
	if !ok {
		return
	}
	f.ItemID = id
	h.txns(w, r, f)
}

// Txns handles GET /api/txns. Supported filters: item (text), from and
// until (YYYY-MM-DD, both inclusive).
func (h *ItemsHandler) Txns(w http.ResponseWriter, r *http.Request) {
	f, ok := txnFilter(w, r)
	if !ok {
		return
	}
	h.txns(w, r, f)
}

func (h *ItemsHandler) txns(w http.ResponseWriter, r *http.Request, f store.TxnFilter) {
	txns, err := store.ListTxns(r.Context(), h.DB, f, page(r))
	if err != nil {
		slog.Error("failed to list ledger", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list ledger")
		return
	}
	total, err := store.CountTxns(r.Context(), h.DB, f)
	if err != nil {
		slog.Error("failed to count ledger", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list ledger")
		return
	}
	if txns == nil {
		txns = []model.InventoryTxn{}
	}
	jsonResponse(w, http.StatusOK, listResponse[model.InventoryTxn]{Items: txns, Total: total})
}

// txnFilter builds a ledger filter from the query. Non-staff only see the
// entries of their own requisitions.
func txnFilter(w http.ResponseWriter, r *http.Request) (store.TxnFilter, bool) {
	q := r.URL.Query()
	f := store.TxnFilter{ItemQuery: q.Get("item")}

	if v := q.Get("from"); v != "" {
		from, err := time.Parse(time.DateOnly, v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "from: expected YYYY-MM-DD")
			return f, false
		}
		f.From = &from
	}
	if v := q.Get("until"); v != "" {
		until, err := time.Parse(time.DateOnly, v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "until: expected YYYY-MM-DD")
			return f, false
		}
		until = until.AddDate(0, 0, 1)
		f.Until = &until
	}

	claims := GetClaims(r.Context())
	if !model.IsStaff(claims.Role) {
		f.RequestedBy = claims.UserID
	}
	return f, true
}
