package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization level of a user.
//
// SUPER_ADMIN principals have no tenant (tenant_id is NULL) and act across
// all tenants. Every other role is bound to exactly one tenant.
type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleTenantAdmin Role = "TENANT_ADMIN"
	RoleUser        Role = "USER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleTenantAdmin, RoleUser:
		return true
	}
	return false
}

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectArchived  ProjectStatus = "archived"
	ProjectCompleted ProjectStatus = "completed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectArchived, ProjectCompleted:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "inprogress"
	TaskCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Plan is subscription reference data. Limits are checked when users and
// projects are created, never retroactively.
type Plan struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	MaxUsers    int       `json:"maxUsers"`
	MaxProjects int       `json:"maxProjects"`
}

// Tenant is the isolation boundary. Every project, task and non-platform
// user belongs to exactly one tenant.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	PlanID    uuid.UUID `json:"planId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TenantStats are computed with COUNT queries on every read.
type TenantStats struct {
	TotalUsers    int  `json:"totalUsers"`
	TotalProjects int  `json:"totalProjects"`
	TotalTasks    *int `json:"totalTasks,omitempty"`
}

// TenantDetail is a tenant joined with its plan and live usage.
type TenantDetail struct {
	Tenant
	PlanName    string      `json:"planName"`
	MaxUsers    int         `json:"maxUsers"`
	MaxProjects int         `json:"maxProjects"`
	Stats       TenantStats `json:"stats"`
}

// User is a person inside a tenant, or a platform SUPER_ADMIN when
// TenantID is nil.
//
// PasswordHash is never serialized.
type User struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     *uuid.UUID `json:"tenantId"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         Role       `json:"role"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Profile is the response of GET /auth/me: the user joined with the
// tenant it belongs to. Tenant fields are nil for platform principals.
type Profile struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Role       Role       `json:"role"`
	TenantID   *uuid.UUID `json:"tenantId"`
	TenantName *string    `json:"tenantName"`
	Subdomain  *string    `json:"subdomain"`
	PlanID     *uuid.UUID `json:"planId"`
	PlanName   *string    `json:"planName"`
}

// Project belongs to one tenant. CreatedBy is not a foreign key: it keeps
// the creator's id after that user is deleted.
type Project struct {
	ID          uuid.UUID     `json:"id"`
	TenantID    uuid.UUID     `json:"tenantId"`
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	Status      ProjectStatus `json:"status"`
	CreatedBy   uuid.UUID     `json:"createdBy"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Task belongs to one project. TenantID is copied from the project when the
// row is inserted and is never updated afterwards.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	TenantID    uuid.UUID    `json:"tenantId"`
	ProjectID   uuid.UUID    `json:"projectId"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	AssignedTo  *uuid.UUID   `json:"assignedTo"`
	DueDate     *time.Time   `json:"dueDate"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
