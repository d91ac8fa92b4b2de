package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/tasklane/internal/models"
)

// Every method takes ctx first and every tenant-owned read or write takes a
// Scope. Stores never trust the caller: a row outside the scope behaves
// exactly like a row that does not exist.

var (
	// ErrNotFound is returned by mutations that matched zero rows.
	ErrNotFound = errors.New("not found")
	// ErrConflict wraps unique constraint violations (SQLSTATE 23505).
	ErrConflict = errors.New("conflict")
	// ErrQuotaExceeded means the tenant's plan limit is already reached.
	ErrQuotaExceeded = errors.New("plan limit reached")
	// ErrPlanNotFound means the tenant or its plan row is missing.
	ErrPlanNotFound = errors.New("tenant or plan not found")
)

// Scope restricts a query to a single tenant. The zero value scopes to
// uuid.Nil and therefore matches nothing; only AllTenants lifts the filter.
type Scope struct {
	TenantID uuid.UUID
	All      bool
}

func TenantScope(tenantID uuid.UUID) Scope { return Scope{TenantID: tenantID} }

func AllTenants() Scope { return Scope{All: true} }

// Arg is the value bound to a `($n::uuid IS NULL OR tenant_id = $n)`
// predicate.
func (s Scope) Arg() any {
	if s.All {
		return nil
	}
	return s.TenantID
}

// Page is a LIMIT/OFFSET window.
type Page struct {
	Limit  int
	Offset int
}

type ProjectFilter struct {
	Status *models.ProjectStatus
	Search string
	Page
}

type TaskFilter struct {
	Status     *models.TaskStatus
	AssignedTo *uuid.UUID
	Search     string
	Page
}

type UserFilter struct {
	Role   *models.Role
	Search string
	Page
}

type CreateProjectParams struct {
	TenantID    uuid.UUID
	Name        string
	Description *string
	CreatedBy   uuid.UUID
}

// Update params use nil for "keep the stored value". The Clear flags null
// a column and win over the matching pointer.
type UpdateProjectParams struct {
	Name             *string
	Description      *string
	ClearDescription bool
	Status           *models.ProjectStatus
}

type CreateTaskParams struct {
	Scope       Scope
	ProjectID   uuid.UUID
	Title       string
	Description *string
	Priority    models.TaskPriority
	AssignedTo  *uuid.UUID
	DueDate     *time.Time
}

type UpdateTaskParams struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Status           *models.TaskStatus
	Priority         *models.TaskPriority
	AssignedTo       *uuid.UUID
	ClearAssignee    bool
	DueDate          *time.Time
	ClearDueDate     bool
}

type CreateUserParams struct {
	TenantID     uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         models.Role
}

type UpdateUserParams struct {
	Name *string
	Role *models.Role
}

type UpdateTenantParams struct {
	Name   *string
	PlanID *uuid.UUID
}

// RegisterParams creates a tenant on the named plan together with its first
// TENANT_ADMIN.
type RegisterParams struct {
	TenantName        string
	Subdomain         string
	PlanName          string
	AdminName         string
	AdminEmail        string
	AdminPasswordHash string
}

// PlanRepository manages subscription plans.
type PlanRepository interface {
	// EnsureDefaults upserts the free, pro and enterprise plans by name.
	EnsureDefaults(ctx context.Context) error

	// GetByID returns nil, nil if the plan does not exist.
	GetByID(ctx context.Context, planID uuid.UUID) (*models.Plan, error)
}

// TenantRepository manages tenants.
type TenantRepository interface {
	// Register inserts the tenant and its admin user in one transaction.
	Register(ctx context.Context, params RegisterParams) (*models.Tenant, *models.User, error)

	// GetBySubdomain returns nil, nil if no tenant uses the subdomain.
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)

	// GetDetail returns the tenant joined with its plan and live stats.
	// Returns nil, nil if not found.
	GetDetail(ctx context.Context, tenantID uuid.UUID) (*models.TenantDetail, error)

	// List returns a page of tenants, newest first, and the total count.
	List(ctx context.Context, page Page) ([]models.TenantDetail, int, error)

	// Update applies a partial update. Returns nil, nil if not found.
	Update(ctx context.Context, tenantID uuid.UUID, params UpdateTenantParams) (*models.Tenant, error)
}

// UserRepository manages users.
type UserRepository interface {
	// Create checks the plan's user limit and the per-tenant email
	// uniqueness, then inserts, all under a lock on the tenant row.
	Create(ctx context.Context, params CreateUserParams) (*models.User, error)

	// GetByID returns nil, nil if not found within scope.
	GetByID(ctx context.Context, scope Scope, userID uuid.UUID) (*models.User, error)

	// GetByEmail looks a user up by (tenant, email). A nil tenantID matches
	// platform users only.
	GetByEmail(ctx context.Context, tenantID *uuid.UUID, email string) (*models.User, error)

	// GetProfile returns the user joined with its tenant and plan.
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)

	List(ctx context.Context, tenantID uuid.UUID, filter UserFilter) ([]models.User, int, error)

	// Update applies a partial update. Returns nil, nil if not found.
	Update(ctx context.Context, userID uuid.UUID, params UpdateUserParams) (*models.User, error)

	// Delete unassigns the user's tasks and then removes the user, in one
	// transaction.
	Delete(ctx context.Context, userID uuid.UUID) error
}

// ProjectRepository manages projects.
type ProjectRepository interface {
	// Create checks the plan's project limit and inserts under a lock on
	// the tenant row.
	Create(ctx context.Context, params CreateProjectParams) (*models.Project, error)

	GetByID(ctx context.Context, scope Scope, projectID uuid.UUID) (*models.Project, error)

	List(ctx context.Context, scope Scope, filter ProjectFilter) ([]models.Project, int, error)

	Update(ctx context.Context, scope Scope, projectID uuid.UUID, params UpdateProjectParams) (*models.Project, error)

	Delete(ctx context.Context, scope Scope, projectID uuid.UUID) error
}

// TaskRepository manages tasks.
type TaskRepository interface {
	// Create copies tenant_id from the parent project. Returns ErrNotFound
	// if the project is not visible within params.Scope.
	Create(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	GetByID(ctx context.Context, scope Scope, taskID uuid.UUID) (*models.Task, error)

	List(ctx context.Context, scope Scope, projectID uuid.UUID, filter TaskFilter) ([]models.Task, int, error)

	Update(ctx context.Context, scope Scope, taskID uuid.UUID, params UpdateTaskParams) (*models.Task, error)

	Delete(ctx context.Context, scope Scope, taskID uuid.UUID) error
}
