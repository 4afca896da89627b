package event

// Type identifies the type of domain event
type Type string

const (
	TypePurchaseOrderCreated  Type = "purchase_order.created"
	TypePurchaseOrderCanceled Type = "purchase_order.canceled"
	TypePurchaseOrderReceived Type = "purchase_order.received"
	TypeApprovalCompleted     Type = "quotation.approval_completed"
	TypeQuotationAccepted     Type = "quotation.accepted"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypePurchaseOrderCreated,
		TypePurchaseOrderCanceled,
		TypePurchaseOrderReceived,
		TypeApprovalCompleted,
		TypeQuotationAccepted:
		return true
	default:
		return false
	}
}
