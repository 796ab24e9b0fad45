package model

import (
	"strings"
	"unicode"
)

// Category groups inventory items.
type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ItemCount int    `json:"item_count"`
}

// InventoryItem is a stock-keeping unit. Stock only changes through the
// ledger; MinStock and MaxStock are advisory thresholds.
type InventoryItem struct {
	ID           int64  `json:"id"`
	SKU          string `json:"sku"`
	Slug         string `json:"slug"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name,omitempty"`
	Description  string `json:"description"`
	Stock        int    `json:"stock"`
	MinStock     int    `json:"min_stock"`
	MaxStock     int    `json:"max_stock"`
	Active       bool   `json:"active"`
}

// Field limits.
const (
	MaxSKULength         = 60
	MaxDescriptionLength = 250
)

// LowStock reports whether stock is at or below the minimum.
func (i *InventoryItem) LowStock() bool {
	return i.Stock <= i.MinStock
}

// OverMax reports whether stock exceeds a configured maximum.
func (i *InventoryItem) OverMax() bool {
	return i.MaxStock > 0 && i.Stock > i.MaxStock
}

// Slugify derives a URL-safe identifier from s.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
