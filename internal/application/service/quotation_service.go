package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/port"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/entity"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/event"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/status"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/lock"
)

// CreateQuotationInput holds the data for a new quotation draft
type CreateQuotationInput struct {
	ProjectID int64
	Items     []QuotationItemInput
}

// QuotationItemInput is one line of a quotation draft
type QuotationItemInput struct {
	Description string
	Quantity    int64
	UnitPrice   int64
}

// QuotationService manages the quotation lifecycle
type QuotationService interface {
	Create(ctx context.Context, in CreateQuotationInput) (*entity.Quotation, error)
	Get(ctx context.Context, id int64) (*entity.Quotation, error)
	ListByProject(ctx context.Context, projectID int64) ([]*entity.Quotation, error)

	// Submit hands the quotation to the external approval workflow.
	Submit(ctx context.Context, id int64) (*entity.Quotation, error)

	// NotifyApprovalCompleted is called by the approval collaborator's
	// glue when its workflow finishes. It publishes the approval event
	// inside a transaction; the propagation handler moves the quotation.
	NotifyApprovalCompleted(ctx context.Context, id int64, approved bool, reason string) error

	// CompleteApproval applies the approval outcome to the quotation.
	// Invoked by the propagation handler, inside the publishing transaction.
	CompleteApproval(ctx context.Context, id int64, approved bool, reason string) (*entity.Quotation, error)

	MarkSending(ctx context.Context, id int64) (*entity.Quotation, error)
	MarkSent(ctx context.Context, id int64) (*entity.Quotation, error)

	// Accept records customer acceptance and propagates project activation.
	Accept(ctx context.Context, id int64) (*entity.Quotation, error)

	// EnsurePrintable reports whether a PDF rendering is allowed for the
	// quotation's current status. Draft quotations are rejected.
	EnsurePrintable(ctx context.Context, id int64) error
}

type quotationService struct {
	quotations port.QuotationRepository
	projects   port.ProjectRepository
	publisher  port.EventPublisher
	locks      *lock.Service
	tx         port.TransactionManager
	logger     *zap.Logger
}

// NewQuotationService creates a new QuotationService
func NewQuotationService(
	quotations port.QuotationRepository,
	projects port.ProjectRepository,
	publisher port.EventPublisher,
	locks *lock.Service,
	tx port.TransactionManager,
	logger *zap.Logger,
) QuotationService {
	return &quotationService{
		quotations: quotations,
		projects:   projects,
		publisher:  publisher,
		locks:      locks,
		tx:         tx,
		logger:     logger,
	}
}

// Create opens a new quotation draft for a project
func (s *quotationService) Create(ctx context.Context, in CreateQuotationInput) (*entity.Quotation, error) {
	if len(in.Items) == 0 {
		return nil, validationf("quotation needs at least one item")
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, validationf("item %q: quantity must be positive", item.Description)
		}
		if item.UnitPrice < 0 {
			return nil, validationf("item %q: unit price must not be negative", item.Description)
		}
	}

	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if !project.Status.IsEditable() {
		return nil, validationf("project %s does not accept new quotations", project.Status)
	}

	quotation := &entity.Quotation{
		ProjectID: in.ProjectID,
		Status:    status.QuotationDraft,
	}
	for _, item := range in.Items {
		quotation.Items = append(quotation.Items, entity.QuotationItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	// Version numbering reads MAX(version) before inserting, so two
	// concurrent drafts for one project would collide on the unique
	// (project_id, version) index. The project lock serializes them.
	err = s.locks.RunExclusive(ctx, lock.ProjectKey(in.ProjectID), func(ctx context.Context) error {
		return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
			version, err := s.quotations.NextVersion(txCtx, in.ProjectID)
			if err != nil {
				return err
			}
			quotation.Version = version
			return s.quotations.Create(txCtx, quotation)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quotation created",
		zap.Int64("quotation_id", quotation.ID),
		zap.Int64("project_id", in.ProjectID),
		zap.Int("version", quotation.Version))
	return quotation, nil
}

// Get loads a quotation with its items
func (s *quotationService) Get(ctx context.Context, id int64) (*entity.Quotation, error) {
	return s.quotations.GetByID(ctx, id)
}

// ListByProject returns a project's quotations, newest version first
func (s *quotationService) ListByProject(ctx context.Context, projectID int64) ([]*entity.Quotation, error) {
	return s.quotations.ListByProject(ctx, projectID)
}

// Submit moves DRAFT -> SUBMITTED
func (s *quotationService) Submit(ctx context.Context, id int64) (*entity.Quotation, error) {
	return s.transition(ctx, id, status.QuotationSubmitted)
}

// NotifyApprovalCompleted publishes the approval outcome as a domain
// event. The registered handler re-loads the quotation and applies the
// transition within the same transaction.
func (s *quotationService) NotifyApprovalCompleted(ctx context.Context, id int64, approved bool, reason string) error {
	if _, err := s.quotations.GetByID(ctx, id); err != nil {
		return err
	}

	evt := event.New(event.TypeApprovalCompleted, id, id, map[string]any{
		"approved": approved,
		"reason":   reason,
	})

	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.publisher.Publish(txCtx, evt)
	})
}

// CompleteApproval moves SUBMITTED -> APPROVED or REJECTED, attaching
// the rejection reason when present.
func (s *quotationService) CompleteApproval(ctx context.Context, id int64, approved bool, reason string) (*entity.Quotation, error) {
	target := status.QuotationApproved
	if !approved {
		target = status.QuotationRejected
	}

	quotation, err := s.quotations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !quotation.Status.CanTransitionTo(target) {
		return nil, status.NewInvalidTransition("quotation", quotation.Status, target)
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.quotations.UpdateStatus(txCtx, id, quotation.Status, target); err != nil {
			return err
		}
		if !approved && reason != "" {
			return s.quotations.UpdateRejectReason(txCtx, id, reason)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quotation approval completed",
		zap.Int64("quotation_id", id),
		zap.Bool("approved", approved))

	quotation.Status = target
	quotation.RejectReason = reason
	return quotation, nil
}

// MarkSending moves APPROVED -> SENDING
func (s *quotationService) MarkSending(ctx context.Context, id int64) (*entity.Quotation, error) {
	return s.transition(ctx, id, status.QuotationSending)
}

// MarkSent moves SENDING -> SENT
func (s *quotationService) MarkSent(ctx context.Context, id int64) (*entity.Quotation, error) {
	return s.transition(ctx, id, status.QuotationSent)
}

// Accept moves SENT -> ACCEPTED and publishes quotation.accepted in the
// same transaction, so the dependent project activation commits with it.
func (s *quotationService) Accept(ctx context.Context, id int64) (*entity.Quotation, error) {
	quotation, err := s.quotations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !quotation.Status.CanTransitionTo(status.QuotationAccepted) {
		return nil, status.NewInvalidTransition("quotation", quotation.Status, status.QuotationAccepted)
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.quotations.UpdateStatus(txCtx, id, quotation.Status, status.QuotationAccepted); err != nil {
			return err
		}
		evt := event.New(event.TypeQuotationAccepted, id, quotation.ProjectID, nil)
		return s.publisher.Publish(txCtx, evt)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quotation accepted",
		zap.Int64("quotation_id", id),
		zap.Int64("project_id", quotation.ProjectID))

	quotation.Status = status.QuotationAccepted
	return quotation, nil
}

// EnsurePrintable gates PDF generation on the quotation's status
func (s *quotationService) EnsurePrintable(ctx context.Context, id int64) error {
	quotation, err := s.quotations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !quotation.Status.CanGeneratePDF() {
		return fmt.Errorf("quotation %d in status %s cannot be rendered: %w", id, quotation.Status, status.ErrInvalidTransition)
	}
	return nil
}

func (s *quotationService) transition(ctx context.Context, id int64, target status.Quotation) (*entity.Quotation, error) {
	quotation, err := s.quotations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !quotation.Status.CanTransitionTo(target) {
		return nil, status.NewInvalidTransition("quotation", quotation.Status, target)
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.quotations.UpdateStatus(txCtx, id, quotation.Status, target)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quotation status changed",
		zap.Int64("quotation_id", id),
		zap.String("from", quotation.Status.String()),
		zap.String("to", target.String()))

	quotation.Status = target
	quotation.UpdatedAt = time.Now()
	return quotation, nil
}
