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

// ProjectRepository handles project persistence
type ProjectRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *DB, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

const projectColumns = `id, job_code, name, customer, status, created_at, updated_at, deleted_at`

// Create inserts a new project and fills in its generated ID
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	query := `
		INSERT INTO projects (job_code, name, customer, status)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.getExecutor(ctx).ExecContext(ctx, query,
		project.JobCode, project.Name, project.Customer, project.Status.String())
	if err != nil {
		r.logger.Error("Failed to create project", zap.Error(err))
		return fmt.Errorf("create project: %w", port.ErrStoreUnavailable)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create project id: %w", port.ErrStoreUnavailable)
	}
	project.ID = id
	return nil
}

// GetByID retrieves a project by ID. Soft-deleted rows are treated as absent.
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ? AND deleted_at IS NULL`
	return r.scanOne(ctx, query, id)
}

// GetByJobCode retrieves a project by its business identifier
func (r *ProjectRepository) GetByJobCode(ctx context.Context, jobCode string) (*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE job_code = ? AND deleted_at IS NULL`
	return r.scanOne(ctx, query, jobCode)
}

func (r *ProjectRepository) scanOne(ctx context.Context, query string, arg interface{}) (*entity.Project, error) {
	var p entity.Project
	var st string
	var deletedAt sql.NullTime

	err := r.db.getExecutor(ctx).QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.JobCode, &p.Name, &p.Customer, &st,
		&p.CreatedAt, &p.UpdatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project: %w", port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get project", zap.Error(err))
		return nil, fmt.Errorf("get project: %w", port.ErrStoreUnavailable)
	}

	p.Status = status.Project(st)
	if deletedAt.Valid {
		p.DeletedAt = &deletedAt.Time
	}
	return &p, nil
}

// UpdateStatus persists a new status and refreshes updated_at. The
// update only lands if the row still carries the expected status.
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id int64, from, to status.Project) error {
	query := `
		UPDATE projects SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ? AND deleted_at IS NULL
	`

	result, err := r.db.getExecutor(ctx).ExecContext(ctx, query, to.String(), id, from.String())
	if err != nil {
		r.logger.Error("Failed to update project status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("update project status: %w", port.ErrStoreUnavailable)
	}
	return requireCurrentRow(result, "project")
}

// SoftDelete marks the project deleted without removing the row
func (r *ProjectRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE projects SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.getExecutor(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete project: %w", port.ErrStoreUnavailable)
	}
	return requireRow(result, "project")
}

// List returns projects ordered by newest first
func (r *ProjectRepository) List(ctx context.Context, limit, offset int) ([]*entity.Project, error) {
	query := `
		SELECT ` + projectColumns + ` FROM projects
		WHERE deleted_at IS NULL
		ORDER BY id DESC LIMIT ? OFFSET ?
	`

	rows, err := r.db.getExecutor(ctx).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, fmt.Errorf("list projects: %w", port.ErrStoreUnavailable)
	}
	defer rows.Close()

	var projects []*entity.Project
	for rows.Next() {
		var p entity.Project
		var st string
		var deletedAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.JobCode, &p.Name, &p.Customer, &st,
			&p.CreatedAt, &p.UpdatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", port.ErrStoreUnavailable)
		}
		p.Status = status.Project(st)
		if deletedAt.Valid {
			p.DeletedAt = &deletedAt.Time
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

// requireRow maps a zero-row update to ErrNotFound
func requireRow(result sql.Result, entityName string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", entityName, port.ErrStoreUnavailable)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", entityName, port.ErrNotFound)
	}
	return nil
}

// requireCurrentRow maps a zero-row guarded update to ErrConflict: the
// row either vanished or no longer carries the status the caller read.
func requireCurrentRow(result sql.Result, entityName string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", entityName, port.ErrStoreUnavailable)
	}
	if n == 0 {
		return fmt.Errorf("%s status changed underneath: %w", entityName, port.ErrConflict)
	}
	return nil
}
