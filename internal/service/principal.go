package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/lalith-99/tasklane/internal/repository"
)

// Principal is the authenticated caller, decoded from the bearer token by
// the auth middleware.
type Principal struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     models.Role
	Email    string

	// TokenID and ExpiresAt identify the presented token for revocation.
	TokenID   string
	ExpiresAt time.Time
}

func (p Principal) IsSuperAdmin() bool { return p.Role == models.RoleSuperAdmin }

func (p Principal) IsTenantAdmin() bool { return p.Role == models.RoleTenantAdmin }

// Scope is the tenant filter for every read or write of tenant-owned rows.
// SUPER_ADMIN is the only principal that sees across tenants.
func (p Principal) Scope() repository.Scope {
	if p.IsSuperAdmin() {
		return repository.AllTenants()
	}
	return repository.TenantScope(p.TenantID)
}

// inTenant reports whether p may act on tenantID at all.
func (p Principal) inTenant(tenantID uuid.UUID) bool {
	return p.IsSuperAdmin() || (p.TenantID != uuid.Nil && p.TenantID == tenantID)
}
