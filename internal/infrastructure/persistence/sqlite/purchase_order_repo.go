package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/port"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/entity"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/status"
)

// PurchaseOrderRepository handles purchase order persistence
type PurchaseOrderRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPurchaseOrderRepository creates a new purchase order repository
func NewPurchaseOrderRepository(db *DB, logger *zap.Logger) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db, logger: logger}
}

const purchaseOrderColumns = `id, request_id, rfq_item_id, vendor_name, amount, status, created_at, updated_at`

// Create inserts a new purchase order
func (r *PurchaseOrderRepository) Create(ctx context.Context, order *entity.PurchaseOrder) error {
	result, err := r.db.getExecutor(ctx).ExecContext(ctx,
		`INSERT INTO purchase_orders (request_id, rfq_item_id, vendor_name, amount, status) VALUES (?, ?, ?, ?, ?)`,
		order.RequestID, order.RfqItemID, order.VendorName, order.Amount, order.Status.String())
	if err != nil {
		r.logger.Error("Failed to create purchase order", zap.Error(err))
		return fmt.Errorf("create purchase order: %w", port.ErrStoreUnavailable)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create purchase order id: %w", port.ErrStoreUnavailable)
	}
	order.ID = id
	return nil
}

// GetByID retrieves a purchase order by ID
func (r *PurchaseOrderRepository) GetByID(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	var st string

	err := r.db.getExecutor(ctx).QueryRowContext(ctx,
		`SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = ?`, id).Scan(
		&po.ID, &po.RequestID, &po.RfqItemID, &po.VendorName, &po.Amount, &st,
		&po.CreatedAt, &po.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("purchase order: %w", port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get purchase order", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("get purchase order: %w", port.ErrStoreUnavailable)
	}

	po.Status = status.PurchaseOrder(st)
	return &po, nil
}

// UpdateStatus persists a new status and refreshes updated_at. The
// update only lands if the row still carries the expected status.
func (r *PurchaseOrderRepository) UpdateStatus(ctx context.Context, id int64, from, to status.PurchaseOrder) error {
	result, err := r.db.getExecutor(ctx).ExecContext(ctx,
		`UPDATE purchase_orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		to.String(), id, from.String())
	if err != nil {
		r.logger.Error("Failed to update purchase order status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("update purchase order status: %w", port.ErrStoreUnavailable)
	}
	return requireCurrentRow(result, "purchase order")
}

// ListByRequest returns all purchase orders placed for a request
func (r *PurchaseOrderRepository) ListByRequest(ctx context.Context, requestID int64) ([]*entity.PurchaseOrder, error) {
	rows, err := r.db.getExecutor(ctx).QueryContext(ctx,
		`SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE request_id = ? ORDER BY id`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", port.ErrStoreUnavailable)
	}
	defer rows.Close()

	var orders []*entity.PurchaseOrder
	for rows.Next() {
		var po entity.PurchaseOrder
		var st string
		if err := rows.Scan(&po.ID, &po.RequestID, &po.RfqItemID, &po.VendorName, &po.Amount, &st,
			&po.CreatedAt, &po.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", port.ErrStoreUnavailable)
		}
		po.Status = status.PurchaseOrder(st)
		orders = append(orders, &po)
	}
	return orders, rows.Err()
}
