package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/port"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/service"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/entity"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/status"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/lock"
)

type fakeProjectService struct {
	CreateFn   func(ctx context.Context, in service.CreateProjectInput) (*entity.Project, error)
	GetFn      func(ctx context.Context, id int64) (*entity.Project, error)
	ListFn     func(ctx context.Context, limit, offset int) ([]*entity.Project, error)
	ActivateFn func(ctx context.Context, id int64) (*entity.Project, error)
	CompleteFn func(ctx context.Context, id int64) (*entity.Project, error)
	ArchiveFn  func(ctx context.Context, id int64) (*entity.Project, error)
	DeleteFn   func(ctx context.Context, id int64) error
}

func (f *fakeProjectService) Create(ctx context.Context, in service.CreateProjectInput) (*entity.Project, error) {
	return f.CreateFn(ctx, in)
}
func (f *fakeProjectService) Get(ctx context.Context, id int64) (*entity.Project, error) {
	return f.GetFn(ctx, id)
}
func (f *fakeProjectService) List(ctx context.Context, limit, offset int) ([]*entity.Project, error) {
	return f.ListFn(ctx, limit, offset)
}
func (f *fakeProjectService) Activate(ctx context.Context, id int64) (*entity.Project, error) {
	return f.ActivateFn(ctx, id)
}
func (f *fakeProjectService) Complete(ctx context.Context, id int64) (*entity.Project, error) {
	return f.CompleteFn(ctx, id)
}
func (f *fakeProjectService) Archive(ctx context.Context, id int64) (*entity.Project, error) {
	return f.ArchiveFn(ctx, id)
}
func (f *fakeProjectService) Delete(ctx context.Context, id int64) error {
	return f.DeleteFn(ctx, id)
}

func newTestServer(projects service.ProjectService) *Server {
	return NewServer(ServerConfig{}, Services{Projects: projects}, zap.NewNop())
}

func doRequest(s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateProject(t *testing.T) {
	projects := &fakeProjectService{
		CreateFn: func(ctx context.Context, in service.CreateProjectInput) (*entity.Project, error) {
			return &entity.Project{ID: 1, JobCode: "WK26-0001-0115", Name: in.Name}, nil
		},
	}
	s := newTestServer(projects)

	rec := doRequest(s, http.MethodPost, "/api/projects", map[string]string{"name": "Press line"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestCreateProject_MissingName(t *testing.T) {
	s := newTestServer(&fakeProjectService{})

	rec := doRequest(s, http.MethodPost, "/api/projects", map[string]string{"customer": "Daehan"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", port.ErrNotFound, http.StatusNotFound},
		{"validation", fmt.Errorf("%w: bad input", service.ErrValidation), http.StatusBadRequest},
		{"invalid transition", status.NewInvalidTransition("project", status.ProjectArchived, status.ProjectActive), http.StatusConflict},
		{"concurrent modification", fmt.Errorf("project status changed underneath: %w", port.ErrConflict), http.StatusConflict},
		{"lock timeout", lock.ErrTimeout, http.StatusConflict},
		{"unknown", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects := &fakeProjectService{
				ActivateFn: func(ctx context.Context, id int64) (*entity.Project, error) {
					return nil, tt.err
				},
			}
			s := newTestServer(projects)

			rec := doRequest(s, http.MethodPost, "/api/projects/5/activate", nil)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestLockTimeoutBodyAsksForRetry(t *testing.T) {
	projects := &fakeProjectService{
		ActivateFn: func(ctx context.Context, id int64) (*entity.Project, error) {
			return nil, lock.ErrTimeout
		},
	}
	s := newTestServer(projects)

	rec := doRequest(s, http.MethodPost, "/api/projects/5/activate", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "another operation is in progress, please retry", resp.Error)
}

func TestPathIDValidation(t *testing.T) {
	s := newTestServer(&fakeProjectService{})

	for _, path := range []string{"/api/projects/abc", "/api/projects/0", "/api/projects/-3"} {
		rec := doRequest(s, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "path %s", path)
	}
}

func TestDeleteProject(t *testing.T) {
	deleted := int64(0)
	projects := &fakeProjectService{
		DeleteFn: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
	}
	s := newTestServer(projects)

	rec := doRequest(s, http.MethodDelete, "/api/projects/9", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(9), deleted)
}
