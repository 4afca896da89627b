package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/dispatcher"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/event"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/status"
)

// Propagation owns the cross-aggregate event handlers. Each handler
// re-loads its target inside the publishing transaction and re-checks
// the expected status before acting: a target that moved on since the
// event was built (e.g. a request canceled while the order was being
// placed) is skipped with a log line, not failed, so the triggering
// transaction still commits. The mutation itself goes through the
// target aggregate's own service, so its validation and logging apply
// to propagated transitions the same as to direct calls.
type Propagation struct {
	projects   ProjectService
	quotations QuotationService
	requests   PurchaseRequestService
	rfqItems   RfqItemService
	logger     *zap.Logger
}

// NewPropagation creates the propagation handler set
func NewPropagation(
	projects ProjectService,
	quotations QuotationService,
	requests PurchaseRequestService,
	rfqItems RfqItemService,
	logger *zap.Logger,
) *Propagation {
	return &Propagation{
		projects:   projects,
		quotations: quotations,
		requests:   requests,
		rfqItems:   rfqItems,
		logger:     logger,
	}
}

// Register subscribes every propagation handler on the dispatcher.
// Registration order is delivery order.
func (p *Propagation) Register(d dispatcher.Dispatcher) {
	d.Subscribe(event.TypePurchaseOrderCreated, "mark_request_ordered", p.MarkRequestOrdered)
	d.Subscribe(event.TypePurchaseOrderCanceled, "reopen_request", p.ReopenRequest)
	d.Subscribe(event.TypePurchaseOrderCanceled, "deselect_rfq_item", p.DeselectRfqItem)
	d.Subscribe(event.TypePurchaseOrderReceived, "close_request", p.CloseRequest)
	d.Subscribe(event.TypeApprovalCompleted, "apply_approval_outcome", p.ApplyApprovalOutcome)
	d.Subscribe(event.TypeQuotationAccepted, "activate_project", p.ActivateProject)
}

// MarkRequestOrdered handles purchase_order.created: the request that
// produced the order moves VENDOR_SELECTED -> ORDERED.
func (p *Propagation) MarkRequestOrdered(ctx context.Context, evt *event.Event) error {
	request, err := p.requests.Get(ctx, evt.TargetID)
	if err != nil {
		return err
	}
	if request.Status != status.PurchaseRequestVendorSelected {
		p.skip(evt, "purchase request", evt.TargetID, request.Status.String())
		return nil
	}
	_, err = p.requests.MarkOrdered(ctx, evt.TargetID)
	return err
}

// ReopenRequest handles purchase_order.canceled: the request falls back
// to RFQ_SENT and its vendor selection is cleared.
func (p *Propagation) ReopenRequest(ctx context.Context, evt *event.Event) error {
	request, err := p.requests.Get(ctx, evt.TargetID)
	if err != nil {
		return err
	}
	if !request.Status.CanTransitionTo(status.PurchaseRequestRFQSent) {
		p.skip(evt, "purchase request", evt.TargetID, request.Status.String())
		return nil
	}
	_, err = p.requests.Reopen(ctx, evt.TargetID)
	return err
}

// DeselectRfqItem handles purchase_order.canceled: the winning RFQ item
// returns SELECTED -> REPLIED so it can compete in the reopened round.
func (p *Propagation) DeselectRfqItem(ctx context.Context, evt *event.Event) error {
	rfqItemID := evt.PayloadInt("rfq_item_id")
	if rfqItemID == 0 {
		p.logger.Warn("Cancel event carries no rfq_item_id",
			zap.String("event_id", evt.ID),
			zap.Int64("order_id", evt.SourceID))
		return nil
	}

	item, err := p.rfqItems.Get(ctx, rfqItemID)
	if err != nil {
		return err
	}
	if item.Status != status.RfqItemSelected {
		p.skip(evt, "rfq item", rfqItemID, item.Status.String())
		return nil
	}
	_, err = p.rfqItems.Deselect(ctx, rfqItemID)
	return err
}

// CloseRequest handles purchase_order.received: the request moves
// ORDERED -> CLOSED.
func (p *Propagation) CloseRequest(ctx context.Context, evt *event.Event) error {
	request, err := p.requests.Get(ctx, evt.TargetID)
	if err != nil {
		return err
	}
	if request.Status != status.PurchaseRequestOrdered {
		p.skip(evt, "purchase request", evt.TargetID, request.Status.String())
		return nil
	}
	_, err = p.requests.Close(ctx, evt.TargetID)
	return err
}

// ApplyApprovalOutcome handles quotation.approval_completed: a
// SUBMITTED quotation becomes APPROVED or REJECTED according to the
// payload, with the reject reason stored alongside.
func (p *Propagation) ApplyApprovalOutcome(ctx context.Context, evt *event.Event) error {
	quotation, err := p.quotations.Get(ctx, evt.TargetID)
	if err != nil {
		return err
	}
	if quotation.Status != status.QuotationSubmitted {
		p.skip(evt, "quotation", evt.TargetID, quotation.Status.String())
		return nil
	}
	_, err = p.quotations.CompleteApproval(ctx, evt.TargetID, evt.PayloadBool("approved"), evt.PayloadString("reason"))
	return err
}

// ActivateProject handles quotation.accepted: the quotation's project
// moves DRAFT -> ACTIVE. A project already ACTIVE is left alone.
func (p *Propagation) ActivateProject(ctx context.Context, evt *event.Event) error {
	project, err := p.projects.Get(ctx, evt.TargetID)
	if err != nil {
		return err
	}
	if project.Status != status.ProjectDraft {
		p.skip(evt, "project", evt.TargetID, project.Status.String())
		return nil
	}
	_, err = p.projects.Activate(ctx, evt.TargetID)
	return err
}

func (p *Propagation) skip(evt *event.Event, entityName string, id int64, current string) {
	p.logger.Info("Propagation skipped, target moved on",
		zap.String("event_type", evt.Type.String()),
		zap.String("event_id", evt.ID),
		zap.String("entity", entityName),
		zap.Int64("entity_id", id),
		zap.String("current_status", current))
}
