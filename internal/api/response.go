package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/almacen/internal/inventory"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

type stockErrorResponse struct {
	Error     string `json:"error"`
	ItemID    int64  `json:"item_id"`
	SKU       string `json:"sku"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

// inventoryError maps an inventory service error to a response.
func inventoryError(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *inventory.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		jsonResponse(w, http.StatusConflict, stockErrorResponse{
			Error:     stockErr.Error(),
			ItemID:    stockErr.ItemID,
			SKU:       stockErr.SKU,
			Available: stockErr.Available,
			Requested: stockErr.Requested,
		})
	case inventory.IsValidation(err):
		jsonError(w, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, inventory.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, inventory.ErrPermissionDenied):
		jsonError(w, http.StatusForbidden, "insufficient permissions")
	default:
		slog.Error("inventory operation failed", "error", err, "request_id", RequestID(r.Context()))
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

func validationMessage(err error) string {
	var ve *inventory.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return err.Error()
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}
