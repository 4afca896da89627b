package event

import (
	"testing"
	"time"
)

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		want      bool
	}{
		{"purchase order created", TypePurchaseOrderCreated, true},
		{"purchase order canceled", TypePurchaseOrderCanceled, true},
		{"purchase order received", TypePurchaseOrderReceived, true},
		{"approval completed", TypeApprovalCompleted, true},
		{"quotation accepted", TypeQuotationAccepted, true},
		{"unknown type", Type("project.deleted"), false},
		{"empty type", Type(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eventType.IsValid(); got != tt.want {
				t.Errorf("Type.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	before := time.Now()
	evt := New(TypePurchaseOrderCreated, 42, 7, map[string]any{"rfq_item_id": int64(3)})

	if evt.ID == "" {
		t.Error("expected auto-generated ID")
	}
	if evt.CorrelationID != evt.ID {
		t.Error("fresh event must start its own correlation chain")
	}
	if evt.SourceID != 42 || evt.TargetID != 7 {
		t.Errorf("unexpected source/target: %d/%d", evt.SourceID, evt.TargetID)
	}
	if evt.Timestamp.Before(before) {
		t.Error("timestamp not set")
	}
	if got := evt.PayloadInt("rfq_item_id"); got != 3 {
		t.Errorf("PayloadInt() = %d, want 3", got)
	}
}

func TestNewCorrelated(t *testing.T) {
	evt := NewCorrelated(TypeQuotationAccepted, 1, 2, nil, "corr-123")

	if evt.CorrelationID != "corr-123" {
		t.Errorf("CorrelationID = %s, want corr-123", evt.CorrelationID)
	}
	if evt.ID == "corr-123" {
		t.Error("event ID must be distinct from the correlation ID")
	}
}

func TestEvent_PayloadAccessors(t *testing.T) {
	evt := New(TypeApprovalCompleted, 1, 1, map[string]any{
		"approved": true,
		"reason":   "price too high",
		"count":    float64(5), // JSON round-trips numbers as float64
	})

	if !evt.PayloadBool("approved") {
		t.Error("PayloadBool(approved) = false, want true")
	}
	if got := evt.PayloadString("reason"); got != "price too high" {
		t.Errorf("PayloadString(reason) = %q", got)
	}
	if got := evt.PayloadInt("count"); got != 5 {
		t.Errorf("PayloadInt(count) = %d, want 5", got)
	}
	if evt.PayloadBool("missing") || evt.PayloadString("missing") != "" || evt.PayloadInt("missing") != 0 {
		t.Error("missing keys must return zero values")
	}
}
