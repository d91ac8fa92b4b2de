package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/lalith-99/tasklane/internal/observ"
	"github.com/lalith-99/tasklane/internal/realtime"
	"github.com/lalith-99/tasklane/internal/repository"
	"go.uber.org/zap"
)

type ProjectService struct {
	projects repository.ProjectRepository
	notify   notifier
	logger   *zap.Logger
}

func NewProjectService(projects repository.ProjectRepository, events realtime.Publisher, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		notify:   newNotifier(events, logger),
		logger:   logger,
	}
}

type ProjectListParams struct {
	Status string
	Search string
	PageRequest
}

type ProjectList struct {
	Projects   []models.Project
	Total      int
	Pagination Pagination
}

type CreateProjectInput struct {
	Name        string
	Description *string
}

// UpdateProjectInput holds a partial update; nil fields keep their value.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *string
}

func (s *ProjectService) List(ctx context.Context, p Principal, params ProjectListParams) (*ProjectList, error) {
	filter := repository.ProjectFilter{Search: strings.TrimSpace(params.Search)}
	if params.Status != "" {
		status := models.ProjectStatus(params.Status)
		if !status.Valid() {
			return nil, validationError("status must be one of active, archived, completed")
		}
		filter.Status = &status
	}

	page := params.PageRequest.normalize(defaultPageLimit)
	filter.Page = page.window()

	projects, total, err := s.projects.List(ctx, p.Scope(), filter)
	if err != nil {
		return nil, err
	}
	return &ProjectList{Projects: projects, Total: total, Pagination: paginate(page, total)}, nil
}

// Create adds a project to the caller's tenant. The plan's project limit is
// checked by the store in the same transaction as the insert.
func (s *ProjectService) Create(ctx context.Context, p Principal, in CreateProjectInput) (*models.Project, error) {
	if !p.IsTenantAdmin() || p.TenantID == uuid.Nil {
		return nil, forbiddenError("Only tenant admins can create projects")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("Project name is required")
	}

	project, err := s.projects.Create(ctx, repository.CreateProjectParams{
		TenantID:    p.TenantID,
		Name:        name,
		Description: trimOptional(in.Description),
		CreatedBy:   p.UserID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrQuotaExceeded) {
			observ.PlanLimitRejectionsTotal.WithLabelValues("project").Inc()
			return nil, &Error{Kind: KindQuotaExceeded, Message: "Project limit reached for current plan", Err: err}
		}
		return nil, mapRepoError(err, "Project already exists")
	}

	s.notify.publish(ctx, realtime.ProjectCreated, project.TenantID, &project.ID, project.ID)
	return project, nil
}

func (s *ProjectService) Get(ctx context.Context, p Principal, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, p.Scope(), projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, notFoundError("Project not found")
	}
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, p Principal, projectID uuid.UUID, in UpdateProjectInput) (*models.Project, error) {
	if !p.IsTenantAdmin() && !p.IsSuperAdmin() {
		return nil, forbiddenError("Only tenant admins can update projects")
	}

	params := repository.UpdateProjectParams{
		Description:      trimOptional(in.Description),
		ClearDescription: isBlank(in.Description),
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validationError("Project name cannot be empty")
		}
		params.Name = &name
	}
	if in.Status != nil {
		status := models.ProjectStatus(*in.Status)
		if !status.Valid() {
			return nil, validationError("status must be one of active, archived, completed")
		}
		params.Status = &status
	}

	project, err := s.projects.Update(ctx, p.Scope(), projectID, params)
	if err != nil {
		return nil, mapRepoError(err, "Project already exists")
	}
	if project == nil {
		return nil, notFoundError("Project not found")
	}

	s.notify.publish(ctx, realtime.ProjectUpdated, project.TenantID, &project.ID, project.ID)
	return project, nil
}

// Delete removes the project and, through the foreign key, its tasks.
func (s *ProjectService) Delete(ctx context.Context, p Principal, projectID uuid.UUID) error {
	if !p.IsTenantAdmin() && !p.IsSuperAdmin() {
		return forbiddenError("Only tenant admins can delete projects")
	}

	// Read first so the event carries the owning tenant even for SUPER_ADMIN.
	project, err := s.projects.GetByID(ctx, p.Scope(), projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return notFoundError("Project not found")
	}

	if err := s.projects.Delete(ctx, p.Scope(), projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Project not found")
		}
		return err
	}

	s.notify.publish(ctx, realtime.ProjectDeleted, project.TenantID, &project.ID, project.ID)
	return nil
}

// isBlank reports whether s was provided but holds only whitespace. On
// update that clears the column.
func isBlank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) == ""
}

// trimOptional trims a provided string and treats blank as absent.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
