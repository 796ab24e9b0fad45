package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxnType classifies a ledger entry.
type TxnType string

// Ledger entry types.
const (
	TxnPurchase TxnType = "PURCHASE"
	TxnIssue    TxnType = "ISSUE"
	TxnAdjust   TxnType = "ADJUST"
)

// Valid reports whether t is a known ledger entry type.
func (t TxnType) Valid() bool {
	switch t {
	case TxnPurchase, TxnIssue, TxnAdjust:
		return true
	}
	return false
}

// InventoryTxn is an append-only ledger row recording one stock change.
// Qty is signed: positive for receipts, negative for issues.
type InventoryTxn struct {
	ID            int64               `json:"id"`
	ItemID        int64               `json:"item_id"`
	ItemSKU       string              `json:"item_sku,omitempty"`
	Type          TxnType             `json:"txn_type"`
	Qty           int                 `json:"qty"`
	UnitPrice     decimal.NullDecimal `json:"unit_price"`
	SupplierID    *int64              `json:"supplier_id,omitempty"`
	SupplierName  string              `json:"supplier_name,omitempty"`
	PurchaseID    *int64              `json:"purchase_id,omitempty"`
	RequisitionID *int64              `json:"requisition_id,omitempty"`
	HappenedAt    time.Time           `json:"happened_at"`
	Note          string              `json:"note"`
	CreatedAt     time.Time           `json:"created_at"`
}
