package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/entity"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/event"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/status"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/lock"
)

// Mock repositories

type mockProjectRepo struct {
	createFunc       func(ctx context.Context, project *entity.Project) error
	getByIDFunc      func(ctx context.Context, id int64) (*entity.Project, error)
	getByJobCodeFunc func(ctx context.Context, jobCode string) (*entity.Project, error)
	updateStatusFunc func(ctx context.Context, id int64, from, to status.Project) error
	softDeleteFunc   func(ctx context.Context, id int64) error
	listFunc         func(ctx context.Context, limit, offset int) ([]*entity.Project, error)
}

func (m *mockProjectRepo) Create(ctx context.Context, project *entity.Project) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, project)
	}
	project.ID = 1
	return nil
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id int64) (*entity.Project, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Project{ID: id, Status: status.ProjectDraft}, nil
}

func (m *mockProjectRepo) GetByJobCode(ctx context.Context, jobCode string) (*entity.Project, error) {
	if m.getByJobCodeFunc != nil {
		return m.getByJobCodeFunc(ctx, jobCode)
	}
	return &entity.Project{ID: 1, JobCode: jobCode, Status: status.ProjectDraft}, nil
}

func (m *mockProjectRepo) UpdateStatus(ctx context.Context, id int64, from, to status.Project) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, from, to)
	}
	return nil
}

func (m *mockProjectRepo) SoftDelete(ctx context.Context, id int64) error {
	if m.softDeleteFunc != nil {
		return m.softDeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockProjectRepo) List(ctx context.Context, limit, offset int) ([]*entity.Project, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return []*entity.Project{}, nil
}

type mockQuotationRepo struct {
	createFunc             func(ctx context.Context, quotation *entity.Quotation) error
	getByIDFunc            func(ctx context.Context, id int64) (*entity.Quotation, error)
	getItemFunc            func(ctx context.Context, itemID int64) (*entity.QuotationItem, error)
	nextVersionFunc        func(ctx context.Context, projectID int64) (int, error)
	updateStatusFunc       func(ctx context.Context, id int64, from, to status.Quotation) error
	updateRejectReasonFunc func(ctx context.Context, id int64, reason string) error
	listByProjectFunc      func(ctx context.Context, projectID int64) ([]*entity.Quotation, error)
}

func (m *mockQuotationRepo) Create(ctx context.Context, quotation *entity.Quotation) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, quotation)
	}
	quotation.ID = 1
	return nil
}

func (m *mockQuotationRepo) GetByID(ctx context.Context, id int64) (*entity.Quotation, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Quotation{ID: id, ProjectID: 1, Status: status.QuotationDraft}, nil
}

func (m *mockQuotationRepo) GetItem(ctx context.Context, itemID int64) (*entity.QuotationItem, error) {
	if m.getItemFunc != nil {
		return m.getItemFunc(ctx, itemID)
	}
	return &entity.QuotationItem{ID: itemID, QuotationID: 1, Quantity: 10}, nil
}

func (m *mockQuotationRepo) NextVersion(ctx context.Context, projectID int64) (int, error) {
	if m.nextVersionFunc != nil {
		return m.nextVersionFunc(ctx, projectID)
	}
	return 1, nil
}

func (m *mockQuotationRepo) UpdateStatus(ctx context.Context, id int64, from, to status.Quotation) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, from, to)
	}
	return nil
}

func (m *mockQuotationRepo) UpdateRejectReason(ctx context.Context, id int64, reason string) error {
	if m.updateRejectReasonFunc != nil {
		return m.updateRejectReasonFunc(ctx, id, reason)
	}
	return nil
}

func (m *mockQuotationRepo) ListByProject(ctx context.Context, projectID int64) ([]*entity.Quotation, error) {
	if m.listByProjectFunc != nil {
		return m.listByProjectFunc(ctx, projectID)
	}
	return []*entity.Quotation{}, nil
}

type mockDeliveryRepo struct {
	createFunc            func(ctx context.Context, delivery *entity.Delivery) error
	sumQuantityByItemFunc func(ctx context.Context, quotationItemID int64) (int64, error)
	listByItemFunc        func(ctx context.Context, quotationItemID int64) ([]*entity.Delivery, error)
}

func (m *mockDeliveryRepo) Create(ctx context.Context, delivery *entity.Delivery) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, delivery)
	}
	delivery.ID = 1
	return nil
}

func (m *mockDeliveryRepo) SumQuantityByItem(ctx context.Context, quotationItemID int64) (int64, error) {
	if m.sumQuantityByItemFunc != nil {
		return m.sumQuantityByItemFunc(ctx, quotationItemID)
	}
	return 0, nil
}

func (m *mockDeliveryRepo) ListByItem(ctx context.Context, quotationItemID int64) ([]*entity.Delivery, error) {
	if m.listByItemFunc != nil {
		return m.listByItemFunc(ctx, quotationItemID)
	}
	return []*entity.Delivery{}, nil
}

type mockPurchaseRequestRepo struct {
	createFunc             func(ctx context.Context, request *entity.PurchaseRequest) error
	getByIDFunc            func(ctx context.Context, id int64) (*entity.PurchaseRequest, error)
	updateStatusFunc       func(ctx context.Context, id int64, from, to status.PurchaseRequest) error
	setSelectedRfqItemFunc func(ctx context.Context, id int64, rfqItemID *int64) error
	listByProjectFunc      func(ctx context.Context, projectID int64) ([]*entity.PurchaseRequest, error)
}

func (m *mockPurchaseRequestRepo) Create(ctx context.Context, request *entity.PurchaseRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, request)
	}
	request.ID = 1
	return nil
}

func (m *mockPurchaseRequestRepo) GetByID(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.PurchaseRequest{ID: id, ProjectID: 1, Status: status.PurchaseRequestDraft}, nil
}

func (m *mockPurchaseRequestRepo) UpdateStatus(ctx context.Context, id int64, from, to status.PurchaseRequest) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, from, to)
	}
	return nil
}

func (m *mockPurchaseRequestRepo) SetSelectedRfqItem(ctx context.Context, id int64, rfqItemID *int64) error {
	if m.setSelectedRfqItemFunc != nil {
		return m.setSelectedRfqItemFunc(ctx, id, rfqItemID)
	}
	return nil
}

func (m *mockPurchaseRequestRepo) ListByProject(ctx context.Context, projectID int64) ([]*entity.PurchaseRequest, error) {
	if m.listByProjectFunc != nil {
		return m.listByProjectFunc(ctx, projectID)
	}
	return []*entity.PurchaseRequest{}, nil
}

type mockRfqItemRepo struct {
	createBatchFunc   func(ctx context.Context, items []*entity.RfqItem) error
	getByIDFunc       func(ctx context.Context, id int64) (*entity.RfqItem, error)
	updateStatusFunc  func(ctx context.Context, id int64, from, to status.RfqItem) error
	recordReplyFunc   func(ctx context.Context, id int64, quotedPrice int64, repliedAt time.Time) error
	listByRequestFunc func(ctx context.Context, requestID int64) ([]*entity.RfqItem, error)
	listOverdueFunc   func(ctx context.Context, now time.Time, limit int) ([]*entity.RfqItem, error)
}

func (m *mockRfqItemRepo) CreateBatch(ctx context.Context, items []*entity.RfqItem) error {
	if m.createBatchFunc != nil {
		return m.createBatchFunc(ctx, items)
	}
	for i, item := range items {
		item.ID = int64(i + 1)
	}
	return nil
}

func (m *mockRfqItemRepo) GetByID(ctx context.Context, id int64) (*entity.RfqItem, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.RfqItem{ID: id, RequestID: 1, Status: status.RfqItemSent}, nil
}

func (m *mockRfqItemRepo) UpdateStatus(ctx context.Context, id int64, from, to status.RfqItem) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, from, to)
	}
	return nil
}

func (m *mockRfqItemRepo) RecordReply(ctx context.Context, id int64, quotedPrice int64, repliedAt time.Time) error {
	if m.recordReplyFunc != nil {
		return m.recordReplyFunc(ctx, id, quotedPrice, repliedAt)
	}
	return nil
}

func (m *mockRfqItemRepo) ListByRequest(ctx context.Context, requestID int64) ([]*entity.RfqItem, error) {
	if m.listByRequestFunc != nil {
		return m.listByRequestFunc(ctx, requestID)
	}
	return []*entity.RfqItem{}, nil
}

func (m *mockRfqItemRepo) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.RfqItem, error) {
	if m.listOverdueFunc != nil {
		return m.listOverdueFunc(ctx, now, limit)
	}
	return []*entity.RfqItem{}, nil
}

type mockPurchaseOrderRepo struct {
	createFunc        func(ctx context.Context, order *entity.PurchaseOrder) error
	getByIDFunc       func(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
	updateStatusFunc  func(ctx context.Context, id int64, from, to status.PurchaseOrder) error
	listByRequestFunc func(ctx context.Context, requestID int64) ([]*entity.PurchaseOrder, error)
}

func (m *mockPurchaseOrderRepo) Create(ctx context.Context, order *entity.PurchaseOrder) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, order)
	}
	order.ID = 1
	return nil
}

func (m *mockPurchaseOrderRepo) GetByID(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.PurchaseOrder{ID: id, RequestID: 1, Status: status.PurchaseOrderDraft}, nil
}

func (m *mockPurchaseOrderRepo) UpdateStatus(ctx context.Context, id int64, from, to status.PurchaseOrder) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, from, to)
	}
	return nil
}

func (m *mockPurchaseOrderRepo) ListByRequest(ctx context.Context, requestID int64) ([]*entity.PurchaseOrder, error) {
	if m.listByRequestFunc != nil {
		return m.listByRequestFunc(ctx, requestID)
	}
	return []*entity.PurchaseOrder{}, nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockPublisher struct {
	publishFunc func(ctx context.Context, evt *event.Event) error
	published   []*event.Event
}

func (m *mockPublisher) Publish(ctx context.Context, evt *event.Event) error {
	m.published = append(m.published, evt)
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evt)
	}
	return nil
}

type mockSequenceAllocator struct {
	nextFunc func(ctx context.Context, scopeKey string) (int64, error)
}

func (m *mockSequenceAllocator) Next(ctx context.Context, scopeKey string) (int64, error) {
	if m.nextFunc != nil {
		return m.nextFunc(ctx, scopeKey)
	}
	return 1, nil
}

// grantingLockStore hands out every lease immediately. Good enough for
// service tests; contention behavior is covered in the lock package.
type grantingLockStore struct {
	mu      sync.Mutex
	granted []string
}

func (s *grantingLockStore) TryAcquire(ctx context.Context, key, holder string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.granted = append(s.granted, key)
	return true, nil
}

func (s *grantingLockStore) Release(ctx context.Context, key, holder string) error {
	return nil
}

func (s *grantingLockStore) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func newTestLockService(store *grantingLockStore) *lock.Service {
	return lock.NewService(store, zap.NewNop())
}
