package entity

import (
	"time"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/status"
)

// Quotation is a versioned customer quotation for a project.
type Quotation struct {
	ID           int64            `json:"id"`
	ProjectID    int64            `json:"project_id"`
	Version      int              `json:"version"`
	Status       status.Quotation `json:"status"`
	RejectReason string           `json:"reject_reason,omitempty"`
	Items        []QuotationItem  `json:"items,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	DeletedAt    *time.Time       `json:"deleted_at,omitempty"`
}

// IsDeleted returns true if the quotation has been soft-deleted
func (q *Quotation) IsDeleted() bool {
	return q.DeletedAt != nil
}

// QuotationItem is a single line item of a quotation. Quantities are
// the upper bound for deliveries recorded against the item.
type QuotationItem struct {
	ID          int64  `json:"id"`
	QuotationID int64  `json:"quotation_id"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

// Delivery records a partial delivery against a quotation line item.
type Delivery struct {
	ID              int64     `json:"id"`
	QuotationItemID int64     `json:"quotation_item_id"`
	Quantity        int64     `json:"quantity"`
	Note            string    `json:"note,omitempty"`
	DeliveredAt     time.Time `json:"delivered_at"`
}
