package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/port"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/entity"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/event"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/status"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/lock"
)

// PurchaseOrderService manages purchase orders and the events that keep
// their purchase requests in step
type PurchaseOrderService interface {
	// Create places an order against a request's selected RFQ item.
	// Runs under the project lock so it cannot race vendor selection or
	// a concurrent cancellation on the same request.
	Create(ctx context.Context, requestID int64) (*entity.PurchaseOrder, error)

	Get(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
	ListByRequest(ctx context.Context, requestID int64) ([]*entity.PurchaseOrder, error)

	Send(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
	Confirm(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
	Receive(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
	Cancel(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
}

type purchaseOrderService struct {
	orders    port.PurchaseOrderRepository
	requests  port.PurchaseRequestRepository
	rfqItems  port.RfqItemRepository
	locks     *lock.Service
	tx        port.TransactionManager
	publisher port.EventPublisher
	logger    *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orders port.PurchaseOrderRepository,
	requests port.PurchaseRequestRepository,
	rfqItems port.RfqItemRepository,
	locks *lock.Service,
	tx port.TransactionManager,
	publisher port.EventPublisher,
	logger *zap.Logger,
) PurchaseOrderService {
	return &purchaseOrderService{
		orders:    orders,
		requests:  requests,
		rfqItems:  rfqItems,
		locks:     locks,
		tx:        tx,
		publisher: publisher,
		logger:    logger,
	}
}

// Create places the order and publishes purchase_order.created in the
// same transaction; the subscribed handler moves the request to ORDERED
// before commit.
func (s *purchaseOrderService) Create(ctx context.Context, requestID int64) (*entity.PurchaseOrder, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	var order *entity.PurchaseOrder
	err = s.locks.RunExclusive(ctx, lock.ProjectKey(request.ProjectID), func(ctx context.Context) error {
		return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
			current, err := s.requests.GetByID(txCtx, requestID)
			if err != nil {
				return err
			}
			if current.Status != status.PurchaseRequestVendorSelected {
				return validationf("request %d is %s, expected %s", requestID, current.Status, status.PurchaseRequestVendorSelected)
			}
			if current.SelectedRfqItemID == nil {
				return validationf("request %d has no selected rfq item", requestID)
			}

			winner, err := s.rfqItems.GetByID(txCtx, *current.SelectedRfqItemID)
			if err != nil {
				return err
			}
			if winner.QuotedPrice == nil {
				return validationf("rfq item %d has no quoted price", winner.ID)
			}

			order = &entity.PurchaseOrder{
				RequestID:  requestID,
				RfqItemID:  winner.ID,
				VendorName: winner.VendorName,
				Amount:     *winner.QuotedPrice,
				Status:     status.PurchaseOrderDraft,
			}
			if err := s.orders.Create(txCtx, order); err != nil {
				return err
			}

			evt := event.New(event.TypePurchaseOrderCreated, order.ID, requestID, map[string]any{
				"rfq_item_id": winner.ID,
			})
			return s.publisher.Publish(txCtx, evt)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("request_id", requestID),
		zap.String("vendor", order.VendorName))
	return order, nil
}

// Get loads a purchase order by ID
func (s *purchaseOrderService) Get(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return s.orders.GetByID(ctx, id)
}

// ListByRequest returns the orders placed for a purchase request
func (s *purchaseOrderService) ListByRequest(ctx context.Context, requestID int64) ([]*entity.PurchaseOrder, error) {
	return s.orders.ListByRequest(ctx, requestID)
}

// Send moves DRAFT -> SENT
func (s *purchaseOrderService) Send(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return s.transition(ctx, id, status.PurchaseOrderSent, nil)
}

// Confirm moves SENT -> CONFIRMED
func (s *purchaseOrderService) Confirm(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return s.transition(ctx, id, status.PurchaseOrderConfirmed, nil)
}

// Receive moves CONFIRMED -> RECEIVED and publishes
// purchase_order.received in the same transaction; the handler closes
// the ORDERED request.
func (s *purchaseOrderService) Receive(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return s.transition(ctx, id, status.PurchaseOrderReceived, func(order *entity.PurchaseOrder) *event.Event {
		return event.New(event.TypePurchaseOrderReceived, order.ID, order.RequestID, nil)
	})
}

// Cancel moves the order to CANCELED and publishes
// purchase_order.canceled in the same transaction; the handler reopens
// the request and deselects the winning RFQ item.
func (s *purchaseOrderService) Cancel(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return s.transition(ctx, id, status.PurchaseOrderCanceled, func(order *entity.PurchaseOrder) *event.Event {
		return event.New(event.TypePurchaseOrderCanceled, order.ID, order.RequestID, map[string]any{
			"rfq_item_id": order.RfqItemID,
		})
	})
}

func (s *purchaseOrderService) transition(ctx context.Context, id int64, target status.PurchaseOrder, makeEvent func(*entity.PurchaseOrder) *event.Event) (*entity.PurchaseOrder, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, status.NewInvalidTransition("purchase order", order.Status, target)
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.orders.UpdateStatus(txCtx, id, order.Status, target); err != nil {
			return err
		}
		if makeEvent == nil {
			return nil
		}
		return s.publisher.Publish(txCtx, makeEvent(order))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order status changed",
		zap.Int64("order_id", id),
		zap.String("from", order.Status.String()),
		zap.String("to", target.String()))

	order.Status = target
	return order, nil
}
