package port

import (
	"context"
	"time"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/entity"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/status"
)

// ProjectRepository defines persistence operations for Project
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	GetByID(ctx context.Context, id int64) (*entity.Project, error)
	GetByJobCode(ctx context.Context, jobCode string) (*entity.Project, error)
	// UpdateStatus moves the row from one status to another. The update is
	// guarded on the expected current status; a stale expectation yields
	// ErrConflict.
	UpdateStatus(ctx context.Context, id int64, from, to status.Project) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*entity.Project, error)
}

// QuotationRepository defines persistence operations for Quotation and
// its line items
type QuotationRepository interface {
	Create(ctx context.Context, quotation *entity.Quotation) error
	GetByID(ctx context.Context, id int64) (*entity.Quotation, error)
	GetItem(ctx context.Context, itemID int64) (*entity.QuotationItem, error)
	NextVersion(ctx context.Context, projectID int64) (int, error)
	UpdateStatus(ctx context.Context, id int64, from, to status.Quotation) error
	UpdateRejectReason(ctx context.Context, id int64, reason string) error
	ListByProject(ctx context.Context, projectID int64) ([]*entity.Quotation, error)
}

// DeliveryRepository defines persistence operations for Delivery
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *entity.Delivery) error
	SumQuantityByItem(ctx context.Context, quotationItemID int64) (int64, error)
	ListByItem(ctx context.Context, quotationItemID int64) ([]*entity.Delivery, error)
}

// PurchaseRequestRepository defines persistence operations for PurchaseRequest
type PurchaseRequestRepository interface {
	Create(ctx context.Context, request *entity.PurchaseRequest) error
	GetByID(ctx context.Context, id int64) (*entity.PurchaseRequest, error)
	UpdateStatus(ctx context.Context, id int64, from, to status.PurchaseRequest) error
	SetSelectedRfqItem(ctx context.Context, id int64, rfqItemID *int64) error
	ListByProject(ctx context.Context, projectID int64) ([]*entity.PurchaseRequest, error)
}

// RfqItemRepository defines persistence operations for RfqItem
type RfqItemRepository interface {
	CreateBatch(ctx context.Context, items []*entity.RfqItem) error
	GetByID(ctx context.Context, id int64) (*entity.RfqItem, error)
	UpdateStatus(ctx context.Context, id int64, from, to status.RfqItem) error
	RecordReply(ctx context.Context, id int64, quotedPrice int64, repliedAt time.Time) error
	ListByRequest(ctx context.Context, requestID int64) ([]*entity.RfqItem, error)
	// ListOverdue returns items still SENT whose deadline passed before now.
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.RfqItem, error)
}

// PurchaseOrderRepository defines persistence operations for PurchaseOrder
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, id int64, from, to status.PurchaseOrder) error
	ListByRequest(ctx context.Context, requestID int64) ([]*entity.PurchaseOrder, error)
}

// TransactionManager handles database transactions. The callback's
// context carries the active transaction; repository calls made with it
// join that transaction, so a save and its triggered event-handler
// saves commit together.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
