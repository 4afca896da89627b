package entity

import (
	"time"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/status"
)

// PurchaseRequest asks vendors for quotes on a material or service
// needed by a project. Vendor quotes arrive as RfqItems; selecting one
// leads to a PurchaseOrder.
type PurchaseRequest struct {
	ID                int64                  `json:"id"`
	ProjectID         int64                  `json:"project_id"`
	ItemName          string                 `json:"item_name"`
	Quantity          int64                  `json:"quantity"`
	Status            status.PurchaseRequest `json:"status"`
	SelectedRfqItemID *int64                 `json:"selected_rfq_item_id,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// RfqItem is one vendor's line in a request-for-quotation round.
type RfqItem struct {
	ID          int64          `json:"id"`
	RequestID   int64          `json:"request_id"`
	VendorName  string         `json:"vendor_name"`
	Status      status.RfqItem `json:"status"`
	QuotedPrice *int64         `json:"quoted_price,omitempty"`
	Deadline    *time.Time     `json:"deadline,omitempty"`
	RepliedAt   *time.Time     `json:"replied_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// PurchaseOrder is the order placed with the vendor selected for a
// purchase request.
type PurchaseOrder struct {
	ID         int64                `json:"id"`
	RequestID  int64                `json:"request_id"`
	RfqItemID  int64                `json:"rfq_item_id"`
	VendorName string               `json:"vendor_name"`
	Amount     int64                `json:"amount"`
	Status     status.PurchaseOrder `json:"status"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}
