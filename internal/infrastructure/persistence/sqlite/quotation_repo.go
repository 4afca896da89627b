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

// QuotationRepository handles quotation and line item persistence
type QuotationRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewQuotationRepository creates a new quotation repository
func NewQuotationRepository(db *DB, logger *zap.Logger) *QuotationRepository {
	return &QuotationRepository{db: db, logger: logger}
}

// Create inserts a quotation together with its line items
func (r *QuotationRepository) Create(ctx context.Context, quotation *entity.Quotation) error {
	query := `
		INSERT INTO quotations (project_id, version, status, reject_reason)
		VALUES (?, ?, ?, ?)
	`

	exec := r.db.getExecutor(ctx)
	result, err := exec.ExecContext(ctx, query,
		quotation.ProjectID, quotation.Version, quotation.Status.String(), quotation.RejectReason)
	if err != nil {
		r.logger.Error("Failed to create quotation", zap.Error(err))
		return fmt.Errorf("create quotation: %w", port.ErrStoreUnavailable)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create quotation id: %w", port.ErrStoreUnavailable)
	}
	quotation.ID = id

	for i := range quotation.Items {
		item := &quotation.Items[i]
		item.QuotationID = id

		res, err := exec.ExecContext(ctx,
			`INSERT INTO quotation_items (quotation_id, description, quantity, unit_price) VALUES (?, ?, ?, ?)`,
			id, item.Description, item.Quantity, item.UnitPrice)
		if err != nil {
			return fmt.Errorf("create quotation item: %w", port.ErrStoreUnavailable)
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("create quotation item id: %w", port.ErrStoreUnavailable)
		}
		item.ID = itemID
	}

	return nil
}

// GetByID retrieves a quotation with its line items
func (r *QuotationRepository) GetByID(ctx context.Context, id int64) (*entity.Quotation, error) {
	query := `
		SELECT id, project_id, version, status, reject_reason, created_at, updated_at, deleted_at
		FROM quotations WHERE id = ? AND deleted_at IS NULL
	`

	var q entity.Quotation
	var st string
	var deletedAt sql.NullTime

	err := r.db.getExecutor(ctx).QueryRowContext(ctx, query, id).Scan(
		&q.ID, &q.ProjectID, &q.Version, &st, &q.RejectReason,
		&q.CreatedAt, &q.UpdatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quotation: %w", port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get quotation", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("get quotation: %w", port.ErrStoreUnavailable)
	}

	q.Status = status.Quotation(st)
	if deletedAt.Valid {
		q.DeletedAt = &deletedAt.Time
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Items = items
	return &q, nil
}

func (r *QuotationRepository) listItems(ctx context.Context, quotationID int64) ([]entity.QuotationItem, error) {
	rows, err := r.db.getExecutor(ctx).QueryContext(ctx,
		`SELECT id, quotation_id, description, quantity, unit_price FROM quotation_items WHERE quotation_id = ? ORDER BY id`,
		quotationID)
	if err != nil {
		return nil, fmt.Errorf("list quotation items: %w", port.ErrStoreUnavailable)
	}
	defer rows.Close()

	var items []entity.QuotationItem
	for rows.Next() {
		var item entity.QuotationItem
		if err := rows.Scan(&item.ID, &item.QuotationID, &item.Description, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan quotation item: %w", port.ErrStoreUnavailable)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetItem retrieves a single quotation line item
func (r *QuotationRepository) GetItem(ctx context.Context, itemID int64) (*entity.QuotationItem, error) {
	var item entity.QuotationItem
	err := r.db.getExecutor(ctx).QueryRowContext(ctx,
		`SELECT id, quotation_id, description, quantity, unit_price FROM quotation_items WHERE id = ?`,
		itemID).Scan(&item.ID, &item.QuotationID, &item.Description, &item.Quantity, &item.UnitPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quotation item: %w", port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get quotation item: %w", port.ErrStoreUnavailable)
	}
	return &item, nil
}

// NextVersion returns the next quotation version number for a project
func (r *QuotationRepository) NextVersion(ctx context.Context, projectID int64) (int, error) {
	var v int
	err := r.db.getExecutor(ctx).QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM quotations WHERE project_id = ?`,
		projectID).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("next quotation version: %w", port.ErrStoreUnavailable)
	}
	return v, nil
}

// UpdateStatus persists a new status and refreshes updated_at. The
// update only lands if the row still carries the expected status.
func (r *QuotationRepository) UpdateStatus(ctx context.Context, id int64, from, to status.Quotation) error {
	result, err := r.db.getExecutor(ctx).ExecContext(ctx,
		`UPDATE quotations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ? AND deleted_at IS NULL`,
		to.String(), id, from.String())
	if err != nil {
		r.logger.Error("Failed to update quotation status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("update quotation status: %w", port.ErrStoreUnavailable)
	}
	return requireCurrentRow(result, "quotation")
}

// UpdateRejectReason stores the reason attached to a rejection
func (r *QuotationRepository) UpdateRejectReason(ctx context.Context, id int64, reason string) error {
	result, err := r.db.getExecutor(ctx).ExecContext(ctx,
		`UPDATE quotations SET reject_reason = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		reason, id)
	if err != nil {
		return fmt.Errorf("update quotation reject reason: %w", port.ErrStoreUnavailable)
	}
	return requireRow(result, "quotation")
}

// ListByProject returns all quotations of a project, newest version first
func (r *QuotationRepository) ListByProject(ctx context.Context, projectID int64) ([]*entity.Quotation, error) {
	rows, err := r.db.getExecutor(ctx).QueryContext(ctx, `
		SELECT id, project_id, version, status, reject_reason, created_at, updated_at, deleted_at
		FROM quotations WHERE project_id = ? AND deleted_at IS NULL ORDER BY version DESC`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("list quotations: %w", port.ErrStoreUnavailable)
	}
	defer rows.Close()

	var quotations []*entity.Quotation
	for rows.Next() {
		var q entity.Quotation
		var st string
		var deletedAt sql.NullTime
		if err := rows.Scan(&q.ID, &q.ProjectID, &q.Version, &st, &q.RejectReason,
			&q.CreatedAt, &q.UpdatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("scan quotation: %w", port.ErrStoreUnavailable)
		}
		q.Status = status.Quotation(st)
		if deletedAt.Valid {
			q.DeletedAt = &deletedAt.Time
		}
		quotations = append(quotations, &q)
	}
	return quotations, rows.Err()
}
