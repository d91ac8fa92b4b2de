package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/tasklane/internal/auth"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/lalith-99/tasklane/internal/realtime"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (r *recordingPublisher) Publish(_ context.Context, ev realtime.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) types() []realtime.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]realtime.EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (d *memDenylist) Revoke(_ context.Context, jti string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.revoked == nil {
		d.revoked = make(map[string]time.Time)
	}
	d.revoked[jti] = until
	return nil
}

func (d *memDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[jti]
	return ok, nil
}

type testEnv struct {
	db       *memDB
	events   *recordingPublisher
	denylist *memDenylist
	issuer   *auth.Issuer
	hasher   *auth.Hasher

	auth     *AuthService
	projects *ProjectService
	tasks    *TaskService
	tenants  *TenantService
	users    *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	db := newMemDB()
	plans := memPlans{db}
	require.NoError(t, plans.EnsureDefaults(context.Background()))

	env := &testEnv{
		db:       db,
		events:   &recordingPublisher{},
		denylist: &memDenylist{},
		issuer:   auth.NewIssuer("test-secret-test-secret-test-secret", time.Hour),
		hasher:   hasher,
	}
	logger := zap.NewNop()
	env.auth = NewAuthService(plans, memTenants{db}, memUsers{db}, env.issuer, hasher, env.denylist, logger)
	env.projects = NewProjectService(memProjects{db}, env.events, logger)
	env.tasks = NewTaskService(memTasks{db}, memProjects{db}, memUsers{db}, env.events, logger)
	env.tenants = NewTenantService(memTenants{db}, plans, logger)
	env.users = NewUserService(memUsers{db}, hasher, env.events, logger)
	return env
}

func principalOf(u *models.User) Principal {
	p := Principal{UserID: u.ID, Role: u.Role, Email: u.Email}
	if u.TenantID != nil {
		p.TenantID = *u.TenantID
	}
	return p
}

// registerTenant creates a tenant on the free plan and returns its admin.
func (e *testEnv) registerTenant(t *testing.T, subdomain string) (*models.Tenant, Principal) {
	t.Helper()
	res, err := e.auth.RegisterTenant(context.Background(), RegisterTenantInput{
		TenantName:    subdomain + " corp",
		Subdomain:     subdomain,
		AdminName:     "Admin " + subdomain,
		AdminEmail:    "admin@" + subdomain + ".test",
		AdminPassword: "Password123!",
	})
	require.NoError(t, err)
	return res.Tenant, principalOf(res.User)
}

func (e *testEnv) addUser(t *testing.T, admin Principal, email string, role models.Role) Principal {
	t.Helper()
	u, err := e.users.Add(context.Background(), admin, admin.TenantID, AddUserInput{
		Email:    email,
		Password: "Password123!",
		Name:     "User " + email,
		Role:     string(role),
	})
	require.NoError(t, err)
	return principalOf(u)
}

func (e *testEnv) createProject(t *testing.T, admin Principal, name string) *models.Project {
	t.Helper()
	p, err := e.projects.Create(context.Background(), admin, CreateProjectInput{Name: name})
	require.NoError(t, err)
	return p
}

func (e *testEnv) superAdmin(t *testing.T) Principal {
	t.Helper()
	hash, err := e.hasher.Hash("Admin123!")
	require.NoError(t, err)

	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	u := models.User{
		ID:           uuid.New(),
		Email:        "superadmin@system.com",
		Name:         "Super Admin",
		Role:         models.RoleSuperAdmin,
		PasswordHash: hash,
	}
	e.db.users[u.ID] = u
	return principalOf(&u)
}

func strPtr(s string) *string { return &s }

func (e *testEnv) upgradePlan(t *testing.T, tenantID uuid.UUID, planName string) {
	t.Helper()
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	plan, ok := e.db.planByName(planName)
	require.True(t, ok)
	tenant := e.db.tenants[tenantID]
	tenant.PlanID = plan.ID
	e.db.tenants[tenantID] = tenant
}
