package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/lalith-99/tasklane/internal/repository"
)

type mockPlans struct {
	ensureFn func(ctx context.Context) error
	getFn    func(ctx context.Context, id uuid.UUID) (*models.Plan, error)
}

func (m *mockPlans) EnsureDefaults(ctx context.Context) error {
	if m.ensureFn == nil {
		return nil
	}
	return m.ensureFn(ctx)
}

func (m *mockPlans) GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	if m.getFn == nil {
		panic("getFn not configured")
	}
	return m.getFn(ctx, id)
}

type mockTenants struct {
	registerFn    func(ctx context.Context, params repository.RegisterParams) (*models.Tenant, *models.User, error)
	bySubdomainFn func(ctx context.Context, subdomain string) (*models.Tenant, error)
	detailFn      func(ctx context.Context, id uuid.UUID) (*models.TenantDetail, error)
	listFn        func(ctx context.Context, page repository.Page) ([]models.TenantDetail, int, error)
	updateFn      func(ctx context.Context, id uuid.UUID, params repository.UpdateTenantParams) (*models.Tenant, error)
}

func (m *mockTenants) Register(ctx context.Context, params repository.RegisterParams) (*models.Tenant, *models.User, error) {
	if m.registerFn == nil {
		panic("registerFn not configured")
	}
	return m.registerFn(ctx, params)
}

func (m *mockTenants) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	if m.bySubdomainFn == nil {
		panic("bySubdomainFn not configured")
	}
	return m.bySubdomainFn(ctx, subdomain)
}

func (m *mockTenants) GetDetail(ctx context.Context, id uuid.UUID) (*models.TenantDetail, error) {
	if m.detailFn == nil {
		panic("detailFn not configured")
	}
	return m.detailFn(ctx, id)
}

func (m *mockTenants) List(ctx context.Context, page repository.Page) ([]models.TenantDetail, int, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, page)
}

func (m *mockTenants) Update(ctx context.Context, id uuid.UUID, params repository.UpdateTenantParams) (*models.Tenant, error) {
	if m.updateFn == nil {
		panic("updateFn not configured")
	}
	return m.updateFn(ctx, id, params)
}

type mockUsers struct {
	createFn  func(ctx context.Context, params repository.CreateUserParams) (*models.User, error)
	getFn     func(ctx context.Context, scope repository.Scope, id uuid.UUID) (*models.User, error)
	byEmailFn func(ctx context.Context, tenantID *uuid.UUID, email string) (*models.User, error)
	profileFn func(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	listFn    func(ctx context.Context, tenantID uuid.UUID, filter repository.UserFilter) ([]models.User, int, error)
	updateFn  func(ctx context.Context, id uuid.UUID, params repository.UpdateUserParams) (*models.User, error)
	deleteFn  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockUsers) Create(ctx context.Context, params repository.CreateUserParams) (*models.User, error) {
	if m.createFn == nil {
		panic("createFn not configured")
	}
	return m.createFn(ctx, params)
}

func (m *mockUsers) GetByID(ctx context.Context, scope repository.Scope, id uuid.UUID) (*models.User, error) {
	if m.getFn == nil {
		panic("getFn not configured")
	}
	return m.getFn(ctx, scope, id)
}

func (m *mockUsers) GetByEmail(ctx context.Context, tenantID *uuid.UUID, email string) (*models.User, error) {
	if m.byEmailFn == nil {
		panic("byEmailFn not configured")
	}
	return m.byEmailFn(ctx, tenantID, email)
}

func (m *mockUsers) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if m.profileFn == nil {
		panic("profileFn not configured")
	}
	return m.profileFn(ctx, id)
}

func (m *mockUsers) List(ctx context.Context, tenantID uuid.UUID, filter repository.UserFilter) ([]models.User, int, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, tenantID, filter)
}

func (m *mockUsers) Update(ctx context.Context, id uuid.UUID, params repository.UpdateUserParams) (*models.User, error) {
	if m.updateFn == nil {
		panic("updateFn not configured")
	}
	return m.updateFn(ctx, id, params)
}

func (m *mockUsers) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn == nil {
		panic("deleteFn not configured")
	}
	return m.deleteFn(ctx, id)
}

type mockProjects struct {
	createFn func(ctx context.Context, params repository.CreateProjectParams) (*models.Project, error)
	getFn    func(ctx context.Context, scope repository.Scope, id uuid.UUID) (*models.Project, error)
	listFn   func(ctx context.Context, scope repository.Scope, filter repository.ProjectFilter) ([]models.Project, int, error)
	updateFn func(ctx context.Context, scope repository.Scope, id uuid.UUID, params repository.UpdateProjectParams) (*models.Project, error)
	deleteFn func(ctx context.Context, scope repository.Scope, id uuid.UUID) error
}

func (m *mockProjects) Create(ctx context.Context, params repository.CreateProjectParams) (*models.Project, error) {
	if m.createFn == nil {
		panic("createFn not configured")
	}
	return m.createFn(ctx, params)
}

func (m *mockProjects) GetByID(ctx context.Context, scope repository.Scope, id uuid.UUID) (*models.Project, error) {
	if m.getFn == nil {
		panic("getFn not configured")
	}
	return m.getFn(ctx, scope, id)
}

func (m *mockProjects) List(ctx context.Context, scope repository.Scope, filter repository.ProjectFilter) ([]models.Project, int, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, scope, filter)
}

func (m *mockProjects) Update(ctx context.Context, scope repository.Scope, id uuid.UUID, params repository.UpdateProjectParams) (*models.Project, error) {
	if m.updateFn == nil {
		panic("updateFn not configured")
	}
	return m.updateFn(ctx, scope, id, params)
}

func (m *mockProjects) Delete(ctx context.Context, scope repository.Scope, id uuid.UUID) error {
	if m.deleteFn == nil {
		panic("deleteFn not configured")
	}
	return m.deleteFn(ctx, scope, id)
}

type mockTasks struct {
	createFn func(ctx context.Context, params repository.CreateTaskParams) (*models.Task, error)
	getFn    func(ctx context.Context, scope repository.Scope, id uuid.UUID) (*models.Task, error)
	listFn   func(ctx context.Context, scope repository.Scope, projectID uuid.UUID, filter repository.TaskFilter) ([]models.Task, int, error)
	updateFn func(ctx context.Context, scope repository.Scope, id uuid.UUID, params repository.UpdateTaskParams) (*models.Task, error)
	deleteFn func(ctx context.Context, scope repository.Scope, id uuid.UUID) error
}

func (m *mockTasks) Create(ctx context.Context, params repository.CreateTaskParams) (*models.Task, error) {
	if m.createFn == nil {
		panic("createFn not configured")
	}
	return m.createFn(ctx, params)
}

func (m *mockTasks) GetByID(ctx context.Context, scope repository.Scope, id uuid.UUID) (*models.Task, error) {
	if m.getFn == nil {
		panic("getFn not configured")
	}
	return m.getFn(ctx, scope, id)
}

func (m *mockTasks) List(ctx context.Context, scope repository.Scope, projectID uuid.UUID, filter repository.TaskFilter) ([]models.Task, int, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, scope, projectID, filter)
}

func (m *mockTasks) Update(ctx context.Context, scope repository.Scope, id uuid.UUID, params repository.UpdateTaskParams) (*models.Task, error) {
	if m.updateFn == nil {
		panic("updateFn not configured")
	}
	return m.updateFn(ctx, scope, id, params)
}

func (m *mockTasks) Delete(ctx context.Context, scope repository.Scope, id uuid.UUID) error {
	if m.deleteFn == nil {
		panic("deleteFn not configured")
	}
	return m.deleteFn(ctx, scope, id)
}
