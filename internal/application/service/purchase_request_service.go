package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/port"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/entity"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/status"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/lock"
)

// CreatePurchaseRequestInput holds the data for a new purchase request
type CreatePurchaseRequestInput struct {
	ProjectID int64
	ItemName  string
	Quantity  int64
}

// PurchaseRequestService manages the purchase request lifecycle
type PurchaseRequestService interface {
	Create(ctx context.Context, in CreatePurchaseRequestInput) (*entity.PurchaseRequest, error)
	Get(ctx context.Context, id int64) (*entity.PurchaseRequest, error)
	ListByProject(ctx context.Context, projectID int64) ([]*entity.PurchaseRequest, error)

	// SendRFQ moves DRAFT -> RFQ_SENT and opens one RFQ item per vendor.
	SendRFQ(ctx context.Context, id int64, vendors []string, deadline time.Time) (*entity.PurchaseRequest, error)

	// SelectVendor picks the winning RFQ item. Runs under the project
	// lock: selection validates the item against its siblings and must
	// not interleave with order creation or cancellation.
	SelectVendor(ctx context.Context, id, rfqItemID int64) (*entity.PurchaseRequest, error)

	Cancel(ctx context.Context, id int64) (*entity.PurchaseRequest, error)

	// MarkOrdered, Reopen and Close are the propagation effects of
	// purchase order events. Callers must have re-checked the current
	// status; the methods still validate the edge.
	MarkOrdered(ctx context.Context, id int64) (*entity.PurchaseRequest, error)
	Reopen(ctx context.Context, id int64) (*entity.PurchaseRequest, error)
	Close(ctx context.Context, id int64) (*entity.PurchaseRequest, error)
}

type purchaseRequestService struct {
	requests port.PurchaseRequestRepository
	rfqItems port.RfqItemRepository
	projects port.ProjectRepository
	locks    *lock.Service
	tx       port.TransactionManager
	logger   *zap.Logger
}

// NewPurchaseRequestService creates a new PurchaseRequestService
func NewPurchaseRequestService(
	requests port.PurchaseRequestRepository,
	rfqItems port.RfqItemRepository,
	projects port.ProjectRepository,
	locks *lock.Service,
	tx port.TransactionManager,
	logger *zap.Logger,
) PurchaseRequestService {
	return &purchaseRequestService{
		requests: requests,
		rfqItems: rfqItems,
		projects: projects,
		locks:    locks,
		tx:       tx,
		logger:   logger,
	}
}

// Create opens a purchase request in DRAFT for an editable project
func (s *purchaseRequestService) Create(ctx context.Context, in CreatePurchaseRequestInput) (*entity.PurchaseRequest, error) {
	if in.ItemName == "" {
		return nil, validationf("item name is required")
	}
	if in.Quantity <= 0 {
		return nil, validationf("quantity must be positive")
	}

	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if !project.Status.IsEditable() {
		return nil, validationf("project %s does not accept purchase requests", project.Status)
	}

	request := &entity.PurchaseRequest{
		ProjectID: in.ProjectID,
		ItemName:  in.ItemName,
		Quantity:  in.Quantity,
		Status:    status.PurchaseRequestDraft,
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.requests.Create(txCtx, request)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase request created",
		zap.Int64("request_id", request.ID),
		zap.Int64("project_id", in.ProjectID))
	return request, nil
}

// Get loads a purchase request by ID
func (s *purchaseRequestService) Get(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	return s.requests.GetByID(ctx, id)
}

// ListByProject returns a project's purchase requests
func (s *purchaseRequestService) ListByProject(ctx context.Context, projectID int64) ([]*entity.PurchaseRequest, error) {
	return s.requests.ListByProject(ctx, projectID)
}

// SendRFQ moves DRAFT -> RFQ_SENT and creates an RFQ item per vendor,
// all in one transaction.
func (s *purchaseRequestService) SendRFQ(ctx context.Context, id int64, vendors []string, deadline time.Time) (*entity.PurchaseRequest, error) {
	if len(vendors) == 0 {
		return nil, validationf("at least one vendor is required")
	}

	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !request.Status.CanTransitionTo(status.PurchaseRequestRFQSent) {
		return nil, status.NewInvalidTransition("purchase request", request.Status, status.PurchaseRequestRFQSent)
	}

	items := make([]*entity.RfqItem, 0, len(vendors))
	for _, vendor := range vendors {
		items = append(items, &entity.RfqItem{
			RequestID:  id,
			VendorName: vendor,
			Status:     status.RfqItemSent,
			Deadline:   &deadline,
		})
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.requests.UpdateStatus(txCtx, id, request.Status, status.PurchaseRequestRFQSent); err != nil {
			return err
		}
		return s.rfqItems.CreateBatch(txCtx, items)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("RFQ sent",
		zap.Int64("request_id", id),
		zap.Int("vendor_count", len(vendors)))

	request.Status = status.PurchaseRequestRFQSent
	return request, nil
}

// SelectVendor marks one replied RFQ item SELECTED, rejects the other
// replied siblings, and moves the request to VENDOR_SELECTED. The whole
// validate-then-mutate sequence runs under the project lock.
func (s *purchaseRequestService) SelectVendor(ctx context.Context, id, rfqItemID int64) (*entity.PurchaseRequest, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.locks.RunExclusive(ctx, lock.ProjectKey(request.ProjectID), func(ctx context.Context) error {
		return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
			// Re-load under the lock; the pre-lock snapshot may be stale.
			current, err := s.requests.GetByID(txCtx, id)
			if err != nil {
				return err
			}
			if !current.Status.CanTransitionTo(status.PurchaseRequestVendorSelected) {
				return status.NewInvalidTransition("purchase request", current.Status, status.PurchaseRequestVendorSelected)
			}

			winner, err := s.rfqItems.GetByID(txCtx, rfqItemID)
			if err != nil {
				return err
			}
			if winner.RequestID != id {
				return validationf("rfq item %d does not belong to request %d", rfqItemID, id)
			}
			if !winner.Status.CanTransitionTo(status.RfqItemSelected) {
				return status.NewInvalidTransition("rfq item", winner.Status, status.RfqItemSelected)
			}

			if err := s.rfqItems.UpdateStatus(txCtx, rfqItemID, winner.Status, status.RfqItemSelected); err != nil {
				return err
			}

			siblings, err := s.rfqItems.ListByRequest(txCtx, id)
			if err != nil {
				return err
			}
			for _, item := range siblings {
				if item.ID != rfqItemID && item.Status == status.RfqItemReplied {
					if err := s.rfqItems.UpdateStatus(txCtx, item.ID, item.Status, status.RfqItemRejected); err != nil {
						return err
					}
				}
			}

			if err := s.requests.SetSelectedRfqItem(txCtx, id, &rfqItemID); err != nil {
				return err
			}
			return s.requests.UpdateStatus(txCtx, id, current.Status, status.PurchaseRequestVendorSelected)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Vendor selected",
		zap.Int64("request_id", id),
		zap.Int64("rfq_item_id", rfqItemID))

	request.Status = status.PurchaseRequestVendorSelected
	request.SelectedRfqItemID = &rfqItemID
	return request, nil
}

// Cancel moves any non-terminal request to CANCELED
func (s *purchaseRequestService) Cancel(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	return s.transition(ctx, id, status.PurchaseRequestCanceled)
}

// MarkOrdered moves VENDOR_SELECTED -> ORDERED
func (s *purchaseRequestService) MarkOrdered(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	return s.transition(ctx, id, status.PurchaseRequestOrdered)
}

// Reopen falls back to RFQ_SENT after an order cancellation and clears
// the vendor selection.
func (s *purchaseRequestService) Reopen(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !request.Status.CanTransitionTo(status.PurchaseRequestRFQSent) {
		return nil, status.NewInvalidTransition("purchase request", request.Status, status.PurchaseRequestRFQSent)
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.requests.SetSelectedRfqItem(txCtx, id, nil); err != nil {
			return err
		}
		return s.requests.UpdateStatus(txCtx, id, request.Status, status.PurchaseRequestRFQSent)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase request reopened", zap.Int64("request_id", id))

	request.Status = status.PurchaseRequestRFQSent
	request.SelectedRfqItemID = nil
	return request, nil
}

// Close moves ORDERED -> CLOSED
func (s *purchaseRequestService) Close(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	return s.transition(ctx, id, status.PurchaseRequestClosed)
}

func (s *purchaseRequestService) transition(ctx context.Context, id int64, target status.PurchaseRequest) (*entity.PurchaseRequest, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !request.Status.CanTransitionTo(target) {
		return nil, status.NewInvalidTransition("purchase request", request.Status, target)
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.requests.UpdateStatus(txCtx, id, request.Status, target)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase request status changed",
		zap.Int64("request_id", id),
		zap.String("from", request.Status.String()),
		zap.String("to", target.String()))

	request.Status = target
	return request, nil
}
