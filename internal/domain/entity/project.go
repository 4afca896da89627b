package entity

import (
	"time"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/status"
)

// Project is the top-level aggregate of a manufacturing order. Every
// quotation and purchase request belongs to exactly one project.
type Project struct {
	ID        int64          `json:"id"`
	JobCode   string         `json:"job_code"`
	Name      string         `json:"name"`
	Customer  string         `json:"customer"`
	Status    status.Project `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt *time.Time     `json:"deleted_at,omitempty"`
}

// IsDeleted returns true if the project has been soft-deleted
func (p *Project) IsDeleted() bool {
	return p.DeletedAt != nil
}
