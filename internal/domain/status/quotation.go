package status

// Quotation represents a quotation lifecycle status
type Quotation string

const (
	QuotationDraft     Quotation = "DRAFT"
	QuotationSubmitted Quotation = "SUBMITTED"
	QuotationApproved  Quotation = "APPROVED"
	QuotationRejected  Quotation = "REJECTED"
	QuotationSending   Quotation = "SENDING"
	QuotationSent      Quotation = "SENT"
	QuotationAccepted  Quotation = "ACCEPTED"
)

// quotationTransitions is the fixed transition graph. REJECTED and
// ACCEPTED are terminal.
var quotationTransitions = map[Quotation][]Quotation{
	QuotationDraft:     {QuotationSubmitted},
	QuotationSubmitted: {QuotationApproved, QuotationRejected},
	QuotationApproved:  {QuotationSending},
	QuotationRejected:  {},
	QuotationSending:   {QuotationSent},
	QuotationSent:      {QuotationAccepted},
	QuotationAccepted:  {},
}

// String returns the string representation of the status
func (s Quotation) String() string {
	return string(s)
}

// IsValid returns true if the status is a known quotation status
func (s Quotation) IsValid() bool {
	_, ok := quotationTransitions[s]
	return ok
}

// IsTerminal returns true if no further transitions are allowed
func (s Quotation) IsTerminal() bool {
	return s.IsValid() && len(quotationTransitions[s]) == 0
}

// CanGeneratePDF returns true if a PDF rendering of the quotation is
// permitted. Draft quotations are never printable.
func (s Quotation) CanGeneratePDF() bool {
	return s.IsValid() && s != QuotationDraft
}

// CanTransitionTo returns true if the edge s -> target is in the graph
func (s Quotation) CanTransitionTo(target Quotation) bool {
	if target == s || !target.IsValid() {
		return false
	}
	return contains(quotationTransitions[s], target)
}

// AllowedTargets returns the statuses reachable from s in one transition
func (s Quotation) AllowedTargets() []Quotation {
	return append([]Quotation(nil), quotationTransitions[s]...)
}
