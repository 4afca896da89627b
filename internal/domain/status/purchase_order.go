package status

// PurchaseOrder represents a purchase order lifecycle status
type PurchaseOrder string

const (
	PurchaseOrderDraft     PurchaseOrder = "DRAFT"
	PurchaseOrderSent      PurchaseOrder = "SENT"
	PurchaseOrderConfirmed PurchaseOrder = "CONFIRMED"
	PurchaseOrderReceived  PurchaseOrder = "RECEIVED"
	PurchaseOrderCanceled  PurchaseOrder = "CANCELED"
)

// purchaseOrderTransitions is the fixed transition graph. CANCELED is
// reachable from every status except RECEIVED.
var purchaseOrderTransitions = map[PurchaseOrder][]PurchaseOrder{
	PurchaseOrderDraft:     {PurchaseOrderSent, PurchaseOrderCanceled},
	PurchaseOrderSent:      {PurchaseOrderConfirmed, PurchaseOrderCanceled},
	PurchaseOrderConfirmed: {PurchaseOrderReceived, PurchaseOrderCanceled},
	PurchaseOrderReceived:  {},
	PurchaseOrderCanceled:  {},
}

// String returns the string representation of the status
func (s PurchaseOrder) String() string {
	return string(s)
}

// IsValid returns true if the status is a known purchase order status
func (s PurchaseOrder) IsValid() bool {
	_, ok := purchaseOrderTransitions[s]
	return ok
}

// IsTerminal returns true if no further transitions are allowed
func (s PurchaseOrder) IsTerminal() bool {
	return s.IsValid() && len(purchaseOrderTransitions[s]) == 0
}

// CanTransitionTo returns true if the edge s -> target is in the graph
func (s PurchaseOrder) CanTransitionTo(target PurchaseOrder) bool {
	if target == s || !target.IsValid() {
		return false
	}
	return contains(purchaseOrderTransitions[s], target)
}

// AllowedTargets returns the statuses reachable from s in one transition
func (s PurchaseOrder) AllowedTargets() []PurchaseOrder {
	return append([]PurchaseOrder(nil), purchaseOrderTransitions[s]...)
}
