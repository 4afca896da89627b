package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/port"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/entity"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/jobcode"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/status"
)

// CreateProjectInput holds the data needed to open a new project
type CreateProjectInput struct {
	Name     string
	Customer string
}

// ProjectService manages the project lifecycle
type ProjectService interface {
	Create(ctx context.Context, in CreateProjectInput) (*entity.Project, error)
	Get(ctx context.Context, id int64) (*entity.Project, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Project, error)

	// Activate is idempotent: activating an already-ACTIVE project is a
	// silent no-op returning success. Any other illegal edge, including
	// activating an ARCHIVED project, is a hard error.
	Activate(ctx context.Context, id int64) (*entity.Project, error)
	Complete(ctx context.Context, id int64) (*entity.Project, error)
	Archive(ctx context.Context, id int64) (*entity.Project, error)
	Delete(ctx context.Context, id int64) error
}

type projectService struct {
	projects port.ProjectRepository
	codes    *jobcode.Generator
	tx       port.TransactionManager
	logger   *zap.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projects port.ProjectRepository,
	codes *jobcode.Generator,
	tx port.TransactionManager,
	logger *zap.Logger,
) ProjectService {
	return &projectService{
		projects: projects,
		codes:    codes,
		tx:       tx,
		logger:   logger,
	}
}

// Create allocates a job code and opens the project in DRAFT. Code
// allocation and the insert share one transaction so a failed insert
// never burns a visible identifier row outside it.
func (s *projectService) Create(ctx context.Context, in CreateProjectInput) (*entity.Project, error) {
	if in.Name == "" {
		return nil, validationf("project name is required")
	}

	project := &entity.Project{
		Name:     in.Name,
		Customer: in.Customer,
		Status:   status.ProjectDraft,
	}

	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		code, err := s.codes.Generate(txCtx, time.Now())
		if err != nil {
			return err
		}
		project.JobCode = code
		return s.projects.Create(txCtx, project)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Project created",
		zap.Int64("project_id", project.ID),
		zap.String("job_code", project.JobCode))
	return project, nil
}

// Get loads a project by ID
func (s *projectService) Get(ctx context.Context, id int64) (*entity.Project, error) {
	return s.projects.GetByID(ctx, id)
}

// List returns projects, newest first
func (s *projectService) List(ctx context.Context, limit, offset int) ([]*entity.Project, error) {
	return s.projects.List(ctx, limit, offset)
}

// Activate moves a project to ACTIVE
func (s *projectService) Activate(ctx context.Context, id int64) (*entity.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if project.Status == status.ProjectActive {
		s.logger.Info("Project already active, no-op", zap.Int64("project_id", id))
		return project, nil
	}

	return s.transition(ctx, project, status.ProjectActive)
}

// Complete moves a project to COMPLETED
func (s *projectService) Complete(ctx context.Context, id int64) (*entity.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, project, status.ProjectCompleted)
}

// Archive moves a project to its terminal ARCHIVED state
func (s *projectService) Archive(ctx context.Context, id int64) (*entity.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, project, status.ProjectArchived)
}

// Delete soft-deletes a project. Only editable projects may be deleted.
func (s *projectService) Delete(ctx context.Context, id int64) error {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !project.Status.IsEditable() {
		return validationf("project in status %s cannot be deleted", project.Status)
	}
	return s.projects.SoftDelete(ctx, id)
}

// transition validates the edge against the freshly loaded status and
// persists the target.
func (s *projectService) transition(ctx context.Context, project *entity.Project, target status.Project) (*entity.Project, error) {
	if !project.Status.CanTransitionTo(target) {
		return nil, status.NewInvalidTransition("project", project.Status, target)
	}

	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.projects.UpdateStatus(txCtx, project.ID, project.Status, target)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Project status changed",
		zap.Int64("project_id", project.ID),
		zap.String("from", project.Status.String()),
		zap.String("to", target.String()))

	project.Status = target
	project.UpdatedAt = time.Now()
	return project, nil
}
