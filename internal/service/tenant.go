package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/lalith-99/tasklane/internal/repository"
	"go.uber.org/zap"
)

// TenantService exposes tenant details to their members and tenant
// administration to SUPER_ADMIN. The tenant id comes from the path, so a
// mismatch is reported as Forbidden rather than NotFound.
type TenantService struct {
	tenants repository.TenantRepository
	plans   repository.PlanRepository
	logger  *zap.Logger
}

func NewTenantService(tenants repository.TenantRepository, plans repository.PlanRepository, logger *zap.Logger) *TenantService {
	return &TenantService{tenants: tenants, plans: plans, logger: logger}
}

type UpdateTenantInput struct {
	Name   *string
	PlanID *uuid.UUID
}

type TenantList struct {
	Tenants    []models.TenantDetail
	Total      int
	Pagination Pagination
}

func (s *TenantService) Get(ctx context.Context, p Principal, tenantID uuid.UUID) (*models.TenantDetail, error) {
	if !p.inTenant(tenantID) {
		return nil, forbiddenError("Unauthorized access to tenant")
	}

	detail, err := s.tenants.GetDetail(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, notFoundError("Tenant not found")
	}
	return detail, nil
}

// List pages through every tenant. SUPER_ADMIN only.
func (s *TenantService) List(ctx context.Context, p Principal, req PageRequest) (*TenantList, error) {
	if !p.IsSuperAdmin() {
		return nil, forbiddenError("Forbidden")
	}

	page := req.normalize(defaultTenantLimit)
	tenants, total, err := s.tenants.List(ctx, page.window())
	if err != nil {
		return nil, err
	}
	return &TenantList{Tenants: tenants, Total: total, Pagination: paginate(page, total)}, nil
}

// Update renames a tenant or, for SUPER_ADMIN only, moves it to another
// plan. Limits of the new plan apply to future creations only.
func (s *TenantService) Update(ctx context.Context, p Principal, tenantID uuid.UUID, in UpdateTenantInput) (*models.Tenant, error) {
	if !p.inTenant(tenantID) {
		return nil, forbiddenError("Unauthorized access to tenant")
	}
	if in.PlanID != nil && !p.IsSuperAdmin() {
		return nil, forbiddenError("Only super admin can update plan")
	}

	var params repository.UpdateTenantParams
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validationError("Tenant name cannot be empty")
		}
		params.Name = &name
	}
	if in.PlanID != nil {
		plan, err := s.plans.GetByID(ctx, *in.PlanID)
		if err != nil {
			return nil, err
		}
		if plan == nil {
			return nil, validationError("Unknown plan")
		}
		params.PlanID = &plan.ID
	}

	tenant, err := s.tenants.Update(ctx, tenantID, params)
	if err != nil {
		return nil, mapRepoError(err, "Tenant already exists")
	}
	if tenant == nil {
		return nil, notFoundError("Tenant not found")
	}

	if params.PlanID != nil {
		s.logger.Info("tenant plan changed",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("plan_id", tenant.PlanID.String()),
			zap.String("by", p.UserID.String()),
		)
	}
	return tenant, nil
}
