package status

// PurchaseRequest represents a purchase request lifecycle status
type PurchaseRequest string

const (
	PurchaseRequestDraft          PurchaseRequest = "DRAFT"
	PurchaseRequestRFQSent        PurchaseRequest = "RFQ_SENT"
	PurchaseRequestVendorSelected PurchaseRequest = "VENDOR_SELECTED"
	PurchaseRequestOrdered        PurchaseRequest = "ORDERED"
	PurchaseRequestClosed         PurchaseRequest = "CLOSED"
	PurchaseRequestCanceled       PurchaseRequest = "CANCELED"
)

// purchaseRequestTransitions is the fixed transition graph. CANCELED is
// reachable from every non-terminal status. VENDOR_SELECTED and ORDERED
// may fall back to RFQ_SENT when a purchase order is canceled.
var purchaseRequestTransitions = map[PurchaseRequest][]PurchaseRequest{
	PurchaseRequestDraft:          {PurchaseRequestRFQSent, PurchaseRequestCanceled},
	PurchaseRequestRFQSent:        {PurchaseRequestVendorSelected, PurchaseRequestCanceled},
	PurchaseRequestVendorSelected: {PurchaseRequestOrdered, PurchaseRequestRFQSent, PurchaseRequestCanceled},
	PurchaseRequestOrdered:        {PurchaseRequestClosed, PurchaseRequestRFQSent, PurchaseRequestCanceled},
	PurchaseRequestClosed:         {},
	PurchaseRequestCanceled:       {},
}

// String returns the string representation of the status
func (s PurchaseRequest) String() string {
	return string(s)
}

// IsValid returns true if the status is a known purchase request status
func (s PurchaseRequest) IsValid() bool {
	_, ok := purchaseRequestTransitions[s]
	return ok
}

// IsTerminal returns true if no further transitions are allowed
func (s PurchaseRequest) IsTerminal() bool {
	return s.IsValid() && len(purchaseRequestTransitions[s]) == 0
}

// CanTransitionTo returns true if the edge s -> target is in the graph
func (s PurchaseRequest) CanTransitionTo(target PurchaseRequest) bool {
	if target == s || !target.IsValid() {
		return false
	}
	return contains(purchaseRequestTransitions[s], target)
}

// AllowedTargets returns the statuses reachable from s in one transition
func (s PurchaseRequest) AllowedTargets() []PurchaseRequest {
	return append([]PurchaseRequest(nil), purchaseRequestTransitions[s]...)
}
