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

// RecordDeliveryInput holds the data for a new delivery record
type RecordDeliveryInput struct {
	QuotationItemID int64
	Quantity        int64
	Note            string
	DeliveredAt     time.Time
}

// DeliveryService records partial deliveries against accepted
// quotation line items
type DeliveryService interface {
	// Record validates and stores a delivery. The check-then-insert runs
	// under the quotation lock so two concurrent deliveries cannot both
	// pass the remaining-quantity check.
	Record(ctx context.Context, in RecordDeliveryInput) (*entity.Delivery, error)

	ListByItem(ctx context.Context, quotationItemID int64) ([]*entity.Delivery, error)

	// Remaining returns how much of the item's quantity is still
	// undelivered.
	Remaining(ctx context.Context, quotationItemID int64) (int64, error)
}

type deliveryService struct {
	deliveries port.DeliveryRepository
	quotations port.QuotationRepository
	locks      *lock.Service
	tx         port.TransactionManager
	logger     *zap.Logger
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(
	deliveries port.DeliveryRepository,
	quotations port.QuotationRepository,
	locks *lock.Service,
	tx port.TransactionManager,
	logger *zap.Logger,
) DeliveryService {
	return &deliveryService{
		deliveries: deliveries,
		quotations: quotations,
		locks:      locks,
		tx:         tx,
		logger:     logger,
	}
}

// Record stores a delivery after re-checking, under the quotation lock,
// that the quotation is ACCEPTED and the item still has capacity
func (s *deliveryService) Record(ctx context.Context, in RecordDeliveryInput) (*entity.Delivery, error) {
	if in.Quantity <= 0 {
		return nil, validationf("delivery quantity must be positive")
	}
	if in.DeliveredAt.IsZero() {
		in.DeliveredAt = time.Now()
	}

	item, err := s.quotations.GetItem(ctx, in.QuotationItemID)
	if err != nil {
		return nil, err
	}

	var delivery *entity.Delivery
	err = s.locks.RunExclusive(ctx, lock.QuotationKey(item.QuotationID), func(ctx context.Context) error {
		return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
			quotation, err := s.quotations.GetByID(txCtx, item.QuotationID)
			if err != nil {
				return err
			}
			if quotation.Status != status.QuotationAccepted {
				return validationf("quotation %d is %s, deliveries require %s",
					quotation.ID, quotation.Status, status.QuotationAccepted)
			}

			delivered, err := s.deliveries.SumQuantityByItem(txCtx, in.QuotationItemID)
			if err != nil {
				return err
			}
			if delivered+in.Quantity > item.Quantity {
				return validationf("delivery of %d exceeds remaining quantity %d on item %d",
					in.Quantity, item.Quantity-delivered, item.ID)
			}

			delivery = &entity.Delivery{
				QuotationItemID: in.QuotationItemID,
				Quantity:        in.Quantity,
				Note:            in.Note,
				DeliveredAt:     in.DeliveredAt,
			}
			return s.deliveries.Create(txCtx, delivery)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Delivery recorded",
		zap.Int64("delivery_id", delivery.ID),
		zap.Int64("quotation_item_id", in.QuotationItemID),
		zap.Int64("quantity", in.Quantity))
	return delivery, nil
}

// ListByItem returns deliveries recorded against a quotation item
func (s *deliveryService) ListByItem(ctx context.Context, quotationItemID int64) ([]*entity.Delivery, error) {
	return s.deliveries.ListByItem(ctx, quotationItemID)
}

// Remaining returns the undelivered balance of an item
func (s *deliveryService) Remaining(ctx context.Context, quotationItemID int64) (int64, error) {
	item, err := s.quotations.GetItem(ctx, quotationItemID)
	if err != nil {
		return 0, err
	}
	delivered, err := s.deliveries.SumQuantityByItem(ctx, quotationItemID)
	if err != nil {
		return 0, err
	}
	return item.Quantity - delivered, nil
}
