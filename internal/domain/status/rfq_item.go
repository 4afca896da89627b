package status

// RfqItem represents the status of a single vendor's RFQ line
type RfqItem string

const (
	RfqItemSent       RfqItem = "SENT"
	RfqItemReplied    RfqItem = "REPLIED"
	RfqItemNoResponse RfqItem = "NO_RESPONSE"
	RfqItemSelected   RfqItem = "SELECTED"
	RfqItemRejected   RfqItem = "REJECTED"
)

// rfqItemTransitions is the fixed transition graph. SELECTED may fall
// back to REPLIED when the resulting purchase order is canceled.
var rfqItemTransitions = map[RfqItem][]RfqItem{
	RfqItemSent:       {RfqItemReplied, RfqItemNoResponse},
	RfqItemReplied:    {RfqItemSelected, RfqItemRejected},
	RfqItemNoResponse: {},
	RfqItemSelected:   {RfqItemReplied},
	RfqItemRejected:   {},
}

// String returns the string representation of the status
func (s RfqItem) String() string {
	return string(s)
}

// IsValid returns true if the status is a known RFQ item status
func (s RfqItem) IsValid() bool {
	_, ok := rfqItemTransitions[s]
	return ok
}

// IsTerminal returns true if no further transitions are allowed
func (s RfqItem) IsTerminal() bool {
	return s.IsValid() && len(rfqItemTransitions[s]) == 0
}

// CanTransitionTo returns true if the edge s -> target is in the graph
func (s RfqItem) CanTransitionTo(target RfqItem) bool {
	if target == s || !target.IsValid() {
		return false
	}
	return contains(rfqItemTransitions[s], target)
}

// AllowedTargets returns the statuses reachable from s in one transition
func (s RfqItem) AllowedTargets() []RfqItem {
	return append([]RfqItem(nil), rfqItemTransitions[s]...)
}
