package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/tasklane/internal/auth"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/lalith-99/tasklane/internal/observ"
	"github.com/lalith-99/tasklane/internal/realtime"
	"github.com/lalith-99/tasklane/internal/repository"
	"go.uber.org/zap"
)

type UserService struct {
	users  repository.UserRepository
	hasher *auth.Hasher
	notify notifier
	logger *zap.Logger
}

func NewUserService(users repository.UserRepository, hasher *auth.Hasher, events realtime.Publisher, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		notify: newNotifier(events, logger),
		logger: logger,
	}
}

type AddUserInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

type UpdateUserInput struct {
	Name *string
	Role *string
}

type UserListParams struct {
	Role   string
	Search string
	PageRequest
}

type UserList struct {
	Users      []models.User
	Total      int
	Pagination Pagination
}

// Add creates a user in tenantID. Only a TENANT_ADMIN of that tenant may
// do so; the plan's user limit and email uniqueness are checked by the
// store under a lock on the tenant row.
func (s *UserService) Add(ctx context.Context, p Principal, tenantID uuid.UUID, in AddUserInput) (*models.User, error) {
	if !p.IsTenantAdmin() || p.TenantID != tenantID {
		return nil, forbiddenError("Cannot add user to a different tenant")
	}

	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || in.Password == "" || name == "" {
		return nil, validationError("email, password and name are required")
	}
	if !strings.Contains(email, "@") {
		return nil, validationError("email must be a valid email")
	}
	if len(in.Password) < minPasswordLength {
		return nil, validationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, validationError(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}

	role := models.RoleUser
	if in.Role != "" {
		role = models.Role(in.Role)
		if !assignableRole(role) {
			return nil, validationError("role must be TENANT_ADMIN or USER")
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, repository.CreateUserParams{
		TenantID:     tenantID,
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrQuotaExceeded) {
			observ.PlanLimitRejectionsTotal.WithLabelValues("user").Inc()
			return nil, &Error{Kind: KindQuotaExceeded, Message: "User limit reached for current plan", Err: err}
		}
		return nil, mapRepoError(err, "Email already exists in this tenant")
	}

	s.notify.publish(ctx, realtime.UserCreated, tenantID, nil, user.ID)
	return user, nil
}

func (s *UserService) List(ctx context.Context, p Principal, tenantID uuid.UUID, params UserListParams) (*UserList, error) {
	if !p.inTenant(tenantID) {
		return nil, forbiddenError("Cannot view users of a different tenant")
	}

	filter := repository.UserFilter{Search: strings.TrimSpace(params.Search)}
	if params.Role != "" {
		role := models.Role(params.Role)
		if !role.Valid() {
			return nil, validationError("role must be one of SUPER_ADMIN, TENANT_ADMIN, USER")
		}
		filter.Role = &role
	}

	page := params.PageRequest.normalize(defaultPageLimit)
	filter.Page = page.window()

	users, total, err := s.users.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	return &UserList{Users: users, Total: total, Pagination: paginate(page, total)}, nil
}

// Update lets a user rename themselves. Changing another user, or any
// role, needs TENANT_ADMIN of the target's tenant or SUPER_ADMIN.
func (s *UserService) Update(ctx context.Context, p Principal, userID uuid.UUID, in UpdateUserInput) (*models.User, error) {
	target, err := s.users.GetByID(ctx, repository.AllTenants(), userID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, notFoundError("User not found")
	}

	isAdmin := p.IsSuperAdmin() || (p.IsTenantAdmin() && sameTenant(p, target))
	if target.ID != p.UserID && !isAdmin {
		if p.IsTenantAdmin() {
			return nil, forbiddenError("Not authorized for users of another tenant")
		}
		return nil, forbiddenError("Not authorized to update this user")
	}

	var params repository.UpdateUserParams
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validationError("Name cannot be empty")
		}
		params.Name = &name
	}
	if in.Role != nil {
		if !isAdmin {
			return nil, forbiddenError("Only admins can change roles")
		}
		role := models.Role(*in.Role)
		if !role.Valid() {
			return nil, validationError("role must be TENANT_ADMIN or USER")
		}
		if role == models.RoleSuperAdmin && !p.IsSuperAdmin() {
			return nil, forbiddenError("Cannot grant SUPER_ADMIN")
		}
		// Platform users have no tenant and tenant users cannot become
		// platform users; the schema enforces the same pairing.
		if target.TenantID == nil || !assignableRole(role) {
			if role != target.Role {
				return nil, validationError("role cannot be changed between platform and tenant roles")
			}
		}
		params.Role = &role
	}

	user, err := s.users.Update(ctx, userID, params)
	if err != nil {
		return nil, mapRepoError(err, "User already exists")
	}
	if user == nil {
		return nil, notFoundError("User not found")
	}

	if user.TenantID != nil {
		s.notify.publish(ctx, realtime.UserUpdated, *user.TenantID, nil, user.ID)
	}
	return user, nil
}

// Delete removes a user of the caller's tenant. Their tasks stay and become
// unassigned.
func (s *UserService) Delete(ctx context.Context, p Principal, userID uuid.UUID) error {
	if !p.IsTenantAdmin() {
		return forbiddenError("Only tenant admins can delete users")
	}
	if userID == p.UserID {
		return forbiddenError("Cannot delete yourself")
	}

	target, err := s.users.GetByID(ctx, repository.AllTenants(), userID)
	if err != nil {
		return err
	}
	if target == nil {
		return notFoundError("User not found")
	}
	if !sameTenant(p, target) {
		return forbiddenError("Not authorized to delete users of another tenant")
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("User not found")
		}
		return err
	}

	s.logger.Info("user deleted",
		zap.String("user_id", userID.String()),
		zap.String("tenant_id", p.TenantID.String()),
		zap.String("by", p.UserID.String()),
	)
	s.notify.publish(ctx, realtime.UserDeleted, p.TenantID, nil, userID)
	return nil
}

func assignableRole(r models.Role) bool {
	return r == models.RoleTenantAdmin || r == models.RoleUser
}

func sameTenant(p Principal, u *models.User) bool {
	return u.TenantID != nil && *u.TenantID == p.TenantID
}
