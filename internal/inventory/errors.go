package inventory

import (
	"errors"
	"fmt"
)

// ErrEmptyOrder is returned when a purchase or requisition has no lines.
var ErrEmptyOrder = errors.New("at least one line is required")

// ErrNotFound is returned when a referenced item or supplier does not exist.
var ErrNotFound = errors.New("not found")

// ErrPermissionDenied is returned when the actor may not see or change a record.
var ErrPermissionDenied = errors.New("permission denied")

// ValidationError reports malformed input. Line is the form index of the
// offending line, or -1 for header fields.
type ValidationError struct {
	Line  int
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Msg)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	return e.Msg
}

func invalid(field, msg string) error {
	return &ValidationError{Line: -1, Field: field, Msg: msg}
}

// InsufficientStockError is returned when an issue or adjustment would take
// an item's stock below zero.
type InsufficientStockError struct {
	ItemID    int64
	SKU       string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: have %d, need %d", e.SKU, e.Available, e.Requested)
}

// IsValidation reports whether err is a ValidationError or ErrEmptyOrder.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrEmptyOrder)
}
