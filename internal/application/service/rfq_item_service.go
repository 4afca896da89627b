package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/port"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/entity"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/status"
)

// RfqItemService manages vendor replies within an RFQ round
type RfqItemService interface {
	Get(ctx context.Context, id int64) (*entity.RfqItem, error)
	ListByRequest(ctx context.Context, requestID int64) ([]*entity.RfqItem, error)

	// RecordReply stores a vendor's quote and moves the item to REPLIED.
	RecordReply(ctx context.Context, id int64, quotedPrice int64) (*entity.RfqItem, error)

	// MarkNoResponse closes out a SENT item whose vendor never replied.
	MarkNoResponse(ctx context.Context, id int64) (*entity.RfqItem, error)

	// Deselect returns a SELECTED item to REPLIED after the order placed
	// on it is canceled, so it can compete in the reopened round.
	Deselect(ctx context.Context, id int64) (*entity.RfqItem, error)

	// SweepOverdue marks all SENT items past their deadline NO_RESPONSE
	// and returns how many were changed.
	SweepOverdue(ctx context.Context, now time.Time, limit int) (int, error)
}

type rfqItemService struct {
	rfqItems port.RfqItemRepository
	tx       port.TransactionManager
	logger   *zap.Logger
}

// NewRfqItemService creates a new RfqItemService
func NewRfqItemService(rfqItems port.RfqItemRepository, tx port.TransactionManager, logger *zap.Logger) RfqItemService {
	return &rfqItemService{rfqItems: rfqItems, tx: tx, logger: logger}
}

// Get loads an RFQ item by ID
func (s *rfqItemService) Get(ctx context.Context, id int64) (*entity.RfqItem, error) {
	return s.rfqItems.GetByID(ctx, id)
}

// ListByRequest returns the RFQ items of one request
func (s *rfqItemService) ListByRequest(ctx context.Context, requestID int64) ([]*entity.RfqItem, error) {
	return s.rfqItems.ListByRequest(ctx, requestID)
}

// RecordReply stores the quote and moves SENT -> REPLIED in one
// transaction
func (s *rfqItemService) RecordReply(ctx context.Context, id int64, quotedPrice int64) (*entity.RfqItem, error) {
	if quotedPrice <= 0 {
		return nil, validationf("quoted price must be positive")
	}

	item, err := s.rfqItems.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.Status.CanTransitionTo(status.RfqItemReplied) {
		return nil, status.NewInvalidTransition("rfq item", item.Status, status.RfqItemReplied)
	}

	repliedAt := time.Now()
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.rfqItems.RecordReply(txCtx, id, quotedPrice, repliedAt); err != nil {
			return err
		}
		return s.rfqItems.UpdateStatus(txCtx, id, item.Status, status.RfqItemReplied)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("RFQ reply recorded",
		zap.Int64("rfq_item_id", id),
		zap.Int64("quoted_price", quotedPrice))

	item.Status = status.RfqItemReplied
	item.QuotedPrice = &quotedPrice
	item.RepliedAt = &repliedAt
	return item, nil
}

// MarkNoResponse moves SENT -> NO_RESPONSE
func (s *rfqItemService) MarkNoResponse(ctx context.Context, id int64) (*entity.RfqItem, error) {
	item, err := s.rfqItems.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.Status.CanTransitionTo(status.RfqItemNoResponse) {
		return nil, status.NewInvalidTransition("rfq item", item.Status, status.RfqItemNoResponse)
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.rfqItems.UpdateStatus(txCtx, id, item.Status, status.RfqItemNoResponse)
	})
	if err != nil {
		return nil, err
	}

	item.Status = status.RfqItemNoResponse
	return item, nil
}

// Deselect moves SELECTED -> REPLIED
func (s *rfqItemService) Deselect(ctx context.Context, id int64) (*entity.RfqItem, error) {
	item, err := s.rfqItems.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.Status.CanTransitionTo(status.RfqItemReplied) {
		return nil, status.NewInvalidTransition("rfq item", item.Status, status.RfqItemReplied)
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.rfqItems.UpdateStatus(txCtx, id, item.Status, status.RfqItemReplied)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("RFQ item deselected", zap.Int64("rfq_item_id", id))

	item.Status = status.RfqItemReplied
	return item, nil
}

// SweepOverdue expires SENT items past their deadline. Items are
// checked one by one; a reply that lands between listing and the sweep
// keeps the item alive.
func (s *rfqItemService) SweepOverdue(ctx context.Context, now time.Time, limit int) (int, error) {
	overdue, err := s.rfqItems.ListOverdue(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, item := range overdue {
		expired := false
		err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
			current, err := s.rfqItems.GetByID(txCtx, item.ID)
			if err != nil {
				return err
			}
			if current.Status != status.RfqItemSent {
				return nil
			}
			expired = true
			return s.rfqItems.UpdateStatus(txCtx, item.ID, status.RfqItemSent, status.RfqItemNoResponse)
		})
		if err != nil {
			s.logger.Warn("Failed to expire overdue RFQ item",
				zap.Int64("rfq_item_id", item.ID),
				zap.Error(err))
			continue
		}
		if expired {
			swept++
		}
	}

	if swept > 0 {
		s.logger.Info("Overdue RFQ items expired", zap.Int("count", swept))
	}
	return swept, nil
}
