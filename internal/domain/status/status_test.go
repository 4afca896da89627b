package status

import (
	"errors"
	"testing"
)

func TestProject_CanTransitionTo(t *testing.T) {
	all := []Project{ProjectDraft, ProjectActive, ProjectCompleted, ProjectArchived}

	allowed := map[Project][]Project{
		ProjectDraft:     {ProjectActive, ProjectArchived},
		ProjectActive:    {ProjectCompleted, ProjectArchived},
		ProjectCompleted: {ProjectArchived},
		ProjectArchived:  {},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("Project %s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestProject_SelfAndUnknownTransitions(t *testing.T) {
	if ProjectDraft.CanTransitionTo(ProjectDraft) {
		t.Error("self transition must be rejected")
	}
	if ProjectDraft.CanTransitionTo(Project("")) {
		t.Error("empty target must be rejected")
	}
	if ProjectDraft.CanTransitionTo(Project("BOGUS")) {
		t.Error("unknown target must be rejected")
	}
	if Project("BOGUS").CanTransitionTo(ProjectActive) {
		t.Error("unknown source must be rejected")
	}
}

func TestProject_IsEditable(t *testing.T) {
	tests := []struct {
		status   Project
		editable bool
	}{
		{ProjectDraft, true},
		{ProjectActive, true},
		{ProjectCompleted, false},
		{ProjectArchived, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsEditable(); got != tt.editable {
				t.Errorf("IsEditable() = %v, want %v", got, tt.editable)
			}
		})
	}
}

func TestProject_IsTerminal(t *testing.T) {
	if !ProjectArchived.IsTerminal() {
		t.Error("ARCHIVED must be terminal")
	}
	for _, s := range []Project{ProjectDraft, ProjectActive, ProjectCompleted} {
		if s.IsTerminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}

func TestQuotation_CanTransitionTo(t *testing.T) {
	all := []Quotation{
		QuotationDraft, QuotationSubmitted, QuotationApproved,
		QuotationRejected, QuotationSending, QuotationSent, QuotationAccepted,
	}

	allowed := map[Quotation][]Quotation{
		QuotationDraft:     {QuotationSubmitted},
		QuotationSubmitted: {QuotationApproved, QuotationRejected},
		QuotationApproved:  {QuotationSending},
		QuotationSending:   {QuotationSent},
		QuotationSent:      {QuotationAccepted},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("Quotation %s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestQuotation_CanGeneratePDF(t *testing.T) {
	if QuotationDraft.CanGeneratePDF() {
		t.Error("draft quotation must not be printable")
	}
	for _, s := range []Quotation{
		QuotationSubmitted, QuotationApproved, QuotationRejected,
		QuotationSending, QuotationSent, QuotationAccepted,
	} {
		if !s.CanGeneratePDF() {
			t.Errorf("%s must be printable", s)
		}
	}
	if Quotation("BOGUS").CanGeneratePDF() {
		t.Error("unknown status must not be printable")
	}
}

func TestPurchaseRequest_CanTransitionTo(t *testing.T) {
	all := []PurchaseRequest{
		PurchaseRequestDraft, PurchaseRequestRFQSent, PurchaseRequestVendorSelected,
		PurchaseRequestOrdered, PurchaseRequestClosed, PurchaseRequestCanceled,
	}

	allowed := map[PurchaseRequest][]PurchaseRequest{
		PurchaseRequestDraft:          {PurchaseRequestRFQSent, PurchaseRequestCanceled},
		PurchaseRequestRFQSent:        {PurchaseRequestVendorSelected, PurchaseRequestCanceled},
		PurchaseRequestVendorSelected: {PurchaseRequestOrdered, PurchaseRequestRFQSent, PurchaseRequestCanceled},
		PurchaseRequestOrdered:        {PurchaseRequestClosed, PurchaseRequestRFQSent, PurchaseRequestCanceled},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("PurchaseRequest %s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestPurchaseRequest_CancelableFromAnyNonTerminal(t *testing.T) {
	for _, s := range []PurchaseRequest{
		PurchaseRequestDraft, PurchaseRequestRFQSent,
		PurchaseRequestVendorSelected, PurchaseRequestOrdered,
	} {
		if !s.CanTransitionTo(PurchaseRequestCanceled) {
			t.Errorf("%s must be cancelable", s)
		}
	}
	if PurchaseRequestClosed.CanTransitionTo(PurchaseRequestCanceled) {
		t.Error("CLOSED must not be cancelable")
	}
}

func TestPurchaseOrder_CanTransitionTo(t *testing.T) {
	all := []PurchaseOrder{
		PurchaseOrderDraft, PurchaseOrderSent, PurchaseOrderConfirmed,
		PurchaseOrderReceived, PurchaseOrderCanceled,
	}

	allowed := map[PurchaseOrder][]PurchaseOrder{
		PurchaseOrderDraft:     {PurchaseOrderSent, PurchaseOrderCanceled},
		PurchaseOrderSent:      {PurchaseOrderConfirmed, PurchaseOrderCanceled},
		PurchaseOrderConfirmed: {PurchaseOrderReceived, PurchaseOrderCanceled},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("PurchaseOrder %s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestPurchaseOrder_ReceivedIsNotCancelable(t *testing.T) {
	if PurchaseOrderReceived.CanTransitionTo(PurchaseOrderCanceled) {
		t.Error("RECEIVED order must not be cancelable")
	}
}

func TestRfqItem_CanTransitionTo(t *testing.T) {
	all := []RfqItem{
		RfqItemSent, RfqItemReplied, RfqItemNoResponse,
		RfqItemSelected, RfqItemRejected,
	}

	allowed := map[RfqItem][]RfqItem{
		RfqItemSent:     {RfqItemReplied, RfqItemNoResponse},
		RfqItemReplied:  {RfqItemSelected, RfqItemRejected},
		RfqItemSelected: {RfqItemReplied},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("RfqItem %s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestInvalidTransitionError(t *testing.T) {
	err := NewInvalidTransition("project", ProjectArchived, ProjectActive)

	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected *InvalidTransitionError, got %T", err)
	}
	if ite.From != "ARCHIVED" || ite.To != "ACTIVE" {
		t.Errorf("unexpected edge: %s -> %s", ite.From, ite.To)
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Error("error must wrap ErrInvalidTransition")
	}
}
