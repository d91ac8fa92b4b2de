package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/tasklane/internal/auth"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/lalith-99/tasklane/internal/observ"
	"github.com/lalith-99/tasklane/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultPlan       = "free"
	minPasswordLength = 8
	// maxPasswordBytes is bcrypt's input limit. It counts bytes, not
	// characters.
	maxPasswordBytes = 72
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// invalidCredentials is returned for both an unknown email and a wrong
// password, so callers cannot tell which emails are registered.
const invalidCredentials = "Invalid credentials"

// AuthService handles registration, login and the caller's own profile.
type AuthService struct {
	plans    repository.PlanRepository
	tenants  repository.TenantRepository
	users    repository.UserRepository
	issuer   *auth.Issuer
	hasher   *auth.Hasher
	denylist auth.Denylist
	logger   *zap.Logger
}

func NewAuthService(
	plans repository.PlanRepository,
	tenants repository.TenantRepository,
	users repository.UserRepository,
	issuer *auth.Issuer,
	hasher *auth.Hasher,
	denylist auth.Denylist,
	logger *zap.Logger,
) *AuthService {
	if denylist == nil {
		denylist = auth.NopDenylist{}
	}
	return &AuthService{
		plans:    plans,
		tenants:  tenants,
		users:    users,
		issuer:   issuer,
		hasher:   hasher,
		denylist: denylist,
		logger:   logger,
	}
}

type RegisterTenantInput struct {
	TenantName    string
	Subdomain     string
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

type RegisterResult struct {
	Token  string
	Tenant *models.Tenant
	User   *models.User
}

type LoginInput struct {
	Email     string
	Password  string
	Subdomain string
}

type LoginResult struct {
	Token string
	User  *models.User
}

// RegisterTenant creates a tenant on the free plan together with its first
// TENANT_ADMIN and returns a token for that admin.
func (s *AuthService) RegisterTenant(ctx context.Context, in RegisterTenantInput) (*RegisterResult, error) {
	tenantName := strings.TrimSpace(in.TenantName)
	subdomain := strings.ToLower(strings.TrimSpace(in.Subdomain))
	adminName := strings.TrimSpace(in.AdminName)
	adminEmail := normalizeEmail(in.AdminEmail)

	if tenantName == "" || subdomain == "" || adminName == "" || adminEmail == "" || in.AdminPassword == "" {
		return nil, validationError("Missing required fields")
	}
	if !subdomainPattern.MatchString(subdomain) {
		return nil, validationError("subdomain may only contain lowercase letters, digits and hyphens")
	}
	if !strings.Contains(adminEmail, "@") {
		return nil, validationError("adminEmail must be a valid email")
	}
	if len(in.AdminPassword) < minPasswordLength {
		return nil, validationError(fmt.Sprintf("adminPassword must be at least %d characters", minPasswordLength))
	}
	if len(in.AdminPassword) > maxPasswordBytes {
		return nil, validationError(fmt.Sprintf("adminPassword must be at most %d bytes", maxPasswordBytes))
	}

	if err := s.plans.EnsureDefaults(ctx); err != nil {
		return nil, fmt.Errorf("ensure plans: %w", err)
	}

	hash, err := s.hasher.Hash(in.AdminPassword)
	if err != nil {
		return nil, err
	}

	tenant, admin, err := s.tenants.Register(ctx, repository.RegisterParams{
		TenantName:        tenantName,
		Subdomain:         subdomain,
		PlanName:          defaultPlan,
		AdminName:         adminName,
		AdminEmail:        adminEmail,
		AdminPasswordHash: hash,
	})
	if err != nil {
		return nil, mapRepoError(err, "Tenant subdomain or email already exists")
	}

	token, _, err := s.issuer.Issue(admin)
	if err != nil {
		return nil, err
	}

	s.logger.Info("tenant registered",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("subdomain", tenant.Subdomain),
	)
	return &RegisterResult{Token: token, Tenant: tenant, User: admin}, nil
}

// Login authenticates against the tenant named by subdomain. An empty
// subdomain authenticates platform users, which belong to no tenant.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := normalizeEmail(in.Email)
	subdomain := strings.ToLower(strings.TrimSpace(in.Subdomain))
	if email == "" || in.Password == "" {
		return nil, validationError("Missing email or password")
	}

	var tenantID *uuid.UUID
	if subdomain != "" {
		tenant, err := s.tenants.GetBySubdomain(ctx, subdomain)
		if err != nil {
			return nil, err
		}
		if tenant == nil {
			observ.LoginsTotal.WithLabelValues("unknown_tenant").Inc()
			return nil, notFoundError("Tenant not found")
		}
		tenantID = &tenant.ID
	}

	user, err := s.users.GetByEmail(ctx, tenantID, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.hasher.CheckDummy(in.Password)
		observ.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, authError(invalidCredentials)
	}

	ok, err := s.hasher.Check(user.PasswordHash, in.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		observ.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, authError(invalidCredentials)
	}

	token, _, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}

	observ.LoginsTotal.WithLabelValues("success").Inc()
	return &LoginResult{Token: token, User: user}, nil
}

// Me returns the caller's profile. The user may have been deleted after the
// token was issued.
func (s *AuthService) Me(ctx context.Context, p Principal) (*models.Profile, error) {
	profile, err := s.users.GetProfile(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, notFoundError("User not found")
	}
	return profile, nil
}

// Logout revokes the presented token until it expires. Without a Redis
// denylist this is a no-op and the client simply discards the token.
func (s *AuthService) Logout(ctx context.Context, p Principal) error {
	if p.TokenID == "" {
		return nil
	}
	if err := s.denylist.Revoke(ctx, p.TokenID, p.ExpiresAt); err != nil {
		return err
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
