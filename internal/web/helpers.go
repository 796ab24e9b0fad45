package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/almacen/internal/employees"
	"github.com/erazemk/almacen/internal/inventory"
	"github.com/erazemk/almacen/internal/store"
)

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// formInt parses an optional integer field; empty means zero.
func formInt(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.FormValue(name))
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// formDate parses an optional YYYY-MM-DD field; empty yields the zero time.
func formDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, v)
}

// userMessage turns an expected domain error into text for the form. It
// reports false for errors that should be logged and shown generically.
func userMessage(err error) (string, bool) {
	var (
		stockErr *inventory.InsufficientStockError
		invErr   *inventory.ValidationError
		empErr   *employees.ValidationError
	)
	switch {
	case errors.As(err, &stockErr):
		return fmt.Sprintf("Not enough stock for %s: %d available, %d requested.",
			stockErr.SKU, stockErr.Available, stockErr.Requested), true
	case errors.As(err, &invErr):
		if invErr.Line >= 0 {
			return fmt.Sprintf("Line %d: %s %s.", invErr.Line+1, fieldName(invErr.Field), invErr.Msg), true
		}
		return fmt.Sprintf("%s %s.", capitalize(fieldName(invErr.Field)), invErr.Msg), true
	case errors.Is(err, inventory.ErrEmptyOrder):
		return "Add at least one line.", true
	case errors.Is(err, inventory.ErrNotFound):
		return "A referenced item or supplier no longer exists.", true
	case errors.As(err, &empErr):
		return fmt.Sprintf("%s: %s.", capitalize(fieldName(empErr.Field)), empErr.Msg), true
	case errors.Is(err, store.ErrConflict):
		return "A record with the same name already exists.", true
	case errors.Is(err, store.ErrInUse):
		return "The record is still in use.", true
	}
	return "", false
}

func fieldName(f string) string {
	switch f {
	case "qty":
		return "quantity"
	case "unit_price":
		return "unit price"
	case "sku":
		return "SKU"
	default:
		return strings.ReplaceAll(f, "_", " ")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
