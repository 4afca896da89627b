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

// PurchaseRequestRepository handles purchase request persistence
type PurchaseRequestRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPurchaseRequestRepository creates a new purchase request repository
func NewPurchaseRequestRepository(db *DB, logger *zap.Logger) *PurchaseRequestRepository {
	return &PurchaseRequestRepository{db: db, logger: logger}
}

const purchaseRequestColumns = `id, project_id, item_name, quantity, status, selected_rfq_item_id, created_at, updated_at`

// Create inserts a new purchase request
func (r *PurchaseRequestRepository) Create(ctx context.Context, request *entity.PurchaseRequest) error {
	result, err := r.db.getExecutor(ctx).ExecContext(ctx,
		`INSERT INTO purchase_requests (project_id, item_name, quantity, status) VALUES (?, ?, ?, ?)`,
		request.ProjectID, request.ItemName, request.Quantity, request.Status.String())
	if err != nil {
		r.logger.Error("Failed to create purchase request", zap.Error(err))
		return fmt.Errorf("create purchase request: %w", port.ErrStoreUnavailable)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create purchase request id: %w", port.ErrStoreUnavailable)
	}
	request.ID = id
	return nil
}

// GetByID retrieves a purchase request by ID
func (r *PurchaseRequestRepository) GetByID(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	var req entity.PurchaseRequest
	var st string
	var selected sql.NullInt64

	err := r.db.getExecutor(ctx).QueryRowContext(ctx,
		`SELECT `+purchaseRequestColumns+` FROM purchase_requests WHERE id = ?`, id).Scan(
		&req.ID, &req.ProjectID, &req.ItemName, &req.Quantity, &st,
		&selected, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("purchase request: %w", port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get purchase request", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("get purchase request: %w", port.ErrStoreUnavailable)
	}

	req.Status = status.PurchaseRequest(st)
	if selected.Valid {
		req.SelectedRfqItemID = &selected.Int64
	}
	return &req, nil
}

// UpdateStatus persists a new status and refreshes updated_at. The
// update only lands if the row still carries the expected status.
func (r *PurchaseRequestRepository) UpdateStatus(ctx context.Context, id int64, from, to status.PurchaseRequest) error {
	result, err := r.db.getExecutor(ctx).ExecContext(ctx,
		`UPDATE purchase_requests SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		to.String(), id, from.String())
	if err != nil {
		r.logger.Error("Failed to update purchase request status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("update purchase request status: %w", port.ErrStoreUnavailable)
	}
	return requireCurrentRow(result, "purchase request")
}

// SetSelectedRfqItem records (or clears, with nil) the winning RFQ item
func (r *PurchaseRequestRepository) SetSelectedRfqItem(ctx context.Context, id int64, rfqItemID *int64) error {
	result, err := r.db.getExecutor(ctx).ExecContext(ctx,
		`UPDATE purchase_requests SET selected_rfq_item_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		rfqItemID, id)
	if err != nil {
		return fmt.Errorf("set selected rfq item: %w", port.ErrStoreUnavailable)
	}
	return requireRow(result, "purchase request")
}

// ListByProject returns all purchase requests of a project
func (r *PurchaseRequestRepository) ListByProject(ctx context.Context, projectID int64) ([]*entity.PurchaseRequest, error) {
	rows, err := r.db.getExecutor(ctx).QueryContext(ctx,
		`SELECT `+purchaseRequestColumns+` FROM purchase_requests WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list purchase requests: %w", port.ErrStoreUnavailable)
	}
	defer rows.Close()

	var requests []*entity.PurchaseRequest
	for rows.Next() {
		var req entity.PurchaseRequest
		var st string
		var selected sql.NullInt64
		if err := rows.Scan(&req.ID, &req.ProjectID, &req.ItemName, &req.Quantity, &st,
			&selected, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase request: %w", port.ErrStoreUnavailable)
		}
		req.Status = status.PurchaseRequest(st)
		if selected.Valid {
			req.SelectedRfqItemID = &selected.Int64
		}
		requests = append(requests, &req)
	}
	return requests, rows.Err()
}
