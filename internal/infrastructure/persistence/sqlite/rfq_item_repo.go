package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/port"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/entity"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/status"
)

// RfqItemRepository handles RFQ item persistence
type RfqItemRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRfqItemRepository creates a new RFQ item repository
func NewRfqItemRepository(db *DB, logger *zap.Logger) *RfqItemRepository {
	return &RfqItemRepository{db: db, logger: logger}
}

const rfqItemColumns = `id, request_id, vendor_name, status, quoted_price, deadline, replied_at, created_at, updated_at`

// CreateBatch inserts one RFQ item per vendor of a request
func (r *RfqItemRepository) CreateBatch(ctx context.Context, items []*entity.RfqItem) error {
	exec := r.db.getExecutor(ctx)
	for _, item := range items {
		result, err := exec.ExecContext(ctx,
			`INSERT INTO rfq_items (request_id, vendor_name, status, deadline) VALUES (?, ?, ?, ?)`,
			item.RequestID, item.VendorName, item.Status.String(), item.Deadline)
		if err != nil {
			r.logger.Error("Failed to create rfq item", zap.Error(err))
			return fmt.Errorf("create rfq item: %w", port.ErrStoreUnavailable)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("create rfq item id: %w", port.ErrStoreUnavailable)
		}
		item.ID = id
	}
	return nil
}

// GetByID retrieves an RFQ item by ID
func (r *RfqItemRepository) GetByID(ctx context.Context, id int64) (*entity.RfqItem, error) {
	row := r.db.getExecutor(ctx).QueryRowContext(ctx,
		`SELECT `+rfqItemColumns+` FROM rfq_items WHERE id = ?`, id)

	item, err := scanRfqItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rfq item: %w", port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get rfq item", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("get rfq item: %w", port.ErrStoreUnavailable)
	}
	return item, nil
}

// UpdateStatus persists a new status and refreshes updated_at. The
// update only lands if the row still carries the expected status.
func (r *RfqItemRepository) UpdateStatus(ctx context.Context, id int64, from, to status.RfqItem) error {
	result, err := r.db.getExecutor(ctx).ExecContext(ctx,
		`UPDATE rfq_items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		to.String(), id, from.String())
	if err != nil {
		r.logger.Error("Failed to update rfq item status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("update rfq item status: %w", port.ErrStoreUnavailable)
	}
	return requireCurrentRow(result, "rfq item")
}

// RecordReply stores the vendor's quoted price and reply time. The
// status move itself goes through UpdateStatus so its guard applies.
func (r *RfqItemRepository) RecordReply(ctx context.Context, id int64, quotedPrice int64, repliedAt time.Time) error {
	result, err := r.db.getExecutor(ctx).ExecContext(ctx,
		`UPDATE rfq_items SET quoted_price = ?, replied_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		quotedPrice, repliedAt, id)
	if err != nil {
		return fmt.Errorf("record rfq reply: %w", port.ErrStoreUnavailable)
	}
	return requireRow(result, "rfq item")
}

// ListByRequest returns all RFQ items of a purchase request
func (r *RfqItemRepository) ListByRequest(ctx context.Context, requestID int64) ([]*entity.RfqItem, error) {
	rows, err := r.db.getExecutor(ctx).QueryContext(ctx,
		`SELECT `+rfqItemColumns+` FROM rfq_items WHERE request_id = ? ORDER BY id`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list rfq items: %w", port.ErrStoreUnavailable)
	}
	defer rows.Close()
	return collectRfqItems(rows)
}

// ListOverdue returns items still SENT whose deadline passed before now
func (r *RfqItemRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.RfqItem, error) {
	rows, err := r.db.getExecutor(ctx).QueryContext(ctx,
		`SELECT `+rfqItemColumns+` FROM rfq_items
		 WHERE status = ? AND deadline IS NOT NULL AND deadline < ?
		 ORDER BY deadline LIMIT ?`,
		status.RfqItemSent.String(), now, limit)
	if err != nil {
		return nil, fmt.Errorf("list overdue rfq items: %w", port.ErrStoreUnavailable)
	}
	defer rows.Close()
	return collectRfqItems(rows)
}

func collectRfqItems(rows *sql.Rows) ([]*entity.RfqItem, error) {
	var items []*entity.RfqItem
	for rows.Next() {
		item, err := scanRfqItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan rfq item: %w", port.ErrStoreUnavailable)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanRfqItem(scan func(dest ...interface{}) error) (*entity.RfqItem, error) {
	var item entity.RfqItem
	var st string
	var quotedPrice sql.NullInt64
	var deadline, repliedAt sql.NullTime

	err := scan(&item.ID, &item.RequestID, &item.VendorName, &st,
		&quotedPrice, &deadline, &repliedAt, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	item.Status = status.RfqItem(st)
	if quotedPrice.Valid {
		item.QuotedPrice = &quotedPrice.Int64
	}
	if deadline.Valid {
		item.Deadline = &deadline.Time
	}
	if repliedAt.Valid {
		item.RepliedAt = &repliedAt.Time
	}
	return &item, nil
}
