package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of decimal places kept for unit prices.
const PriceScale = 4

// Supplier is a vendor goods are purchased from.
type Supplier struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MaxSupplierNameLength bounds Supplier.Name.
const MaxSupplierNameLength = 120

// Purchase is a goods receipt from a supplier.
type Purchase struct {
	ID           int64           `json:"id"`
	SupplierID   int64           `json:"supplier_id"`
	SupplierName string          `json:"supplier_name,omitempty"`
	PurchasedAt  time.Time       `json:"purchased_at"`
	Ref          string          `json:"ref,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Lines        []PurchaseLine  `json:"lines,omitempty"`
	Total        decimal.Decimal `json:"total"`
}

// PurchaseLine is one item received in a purchase.
type PurchaseLine struct {
	ID         int64           `json:"id"`
	PurchaseID int64           `json:"purchase_id"`
	ItemID     int64           `json:"item_id"`
	ItemSKU    string          `json:"item_sku,omitempty"`
	Qty        int             `json:"qty"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// Subtotal returns qty × unit price.
func (l PurchaseLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// SumLines totals the subtotals of lines.
func SumLines(lines []PurchaseLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
