package sqlite

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/port"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/entity"
)

// DeliveryRepository handles delivery record persistence
type DeliveryRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDeliveryRepository creates a new delivery repository
func NewDeliveryRepository(db *DB, logger *zap.Logger) *DeliveryRepository {
	return &DeliveryRepository{db: db, logger: logger}
}

// Create inserts a delivery record
func (r *DeliveryRepository) Create(ctx context.Context, delivery *entity.Delivery) error {
	result, err := r.db.getExecutor(ctx).ExecContext(ctx,
		`INSERT INTO deliveries (quotation_item_id, quantity, note, delivered_at) VALUES (?, ?, ?, ?)`,
		delivery.QuotationItemID, delivery.Quantity, delivery.Note, delivery.DeliveredAt)
	if err != nil {
		r.logger.Error("Failed to create delivery", zap.Error(err))
		return fmt.Errorf("create delivery: %w", port.ErrStoreUnavailable)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create delivery id: %w", port.ErrStoreUnavailable)
	}
	delivery.ID = id
	return nil
}

// SumQuantityByItem returns the total quantity already delivered
// against a quotation line item
func (r *DeliveryRepository) SumQuantityByItem(ctx context.Context, quotationItemID int64) (int64, error) {
	var sum int64
	err := r.db.getExecutor(ctx).QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM deliveries WHERE quotation_item_id = ?`,
		quotationItemID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum deliveries: %w", port.ErrStoreUnavailable)
	}
	return sum, nil
}

// ListByItem returns deliveries for a quotation line item, oldest first
func (r *DeliveryRepository) ListByItem(ctx context.Context, quotationItemID int64) ([]*entity.Delivery, error) {
	rows, err := r.db.getExecutor(ctx).QueryContext(ctx,
		`SELECT id, quotation_item_id, quantity, note, delivered_at FROM deliveries WHERE quotation_item_id = ? ORDER BY id`,
		quotationItemID)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", port.ErrStoreUnavailable)
	}
	defer rows.Close()

	var deliveries []*entity.Delivery
	for rows.Next() {
		var d entity.Delivery
		if err := rows.Scan(&d.ID, &d.QuotationItemID, &d.Quantity, &d.Note, &d.DeliveredAt); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", port.ErrStoreUnavailable)
		}
		deliveries = append(deliveries, &d)
	}
	return deliveries, rows.Err()
}
