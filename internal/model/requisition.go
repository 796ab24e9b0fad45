package model

import "time"

// MaxRequisitionNoteLength bounds Requisition.Note.
const MaxRequisitionNoteLength = 300

// Requisition is a staff request that issues stock.
type Requisition struct {
	ID            int64             `json:"id"`
	RequestedBy   int64             `json:"requested_by"`
	RequesterName string            `json:"requester_name,omitempty"`
	RequestedAt   time.Time         `json:"requested_at"`
	Note          string            `json:"note,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Lines         []RequisitionLine `json:"lines,omitempty"`
}

// RequisitionLine is one item issued by a requisition.
type RequisitionLine struct {
	ID            int64  `json:"id"`
	RequisitionID int64  `json:"requisition_id"`
	ItemID        int64  `json:"item_id"`
	ItemSKU       string `json:"item_sku,omitempty"`
	Qty           int    `json:"qty"`
}
