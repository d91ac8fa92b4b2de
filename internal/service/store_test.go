package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/lalith-99/tasklane/internal/repository"
)

// memDB is an in-memory stand-in for Postgres that enforces the same
// scoping, plan limits and uniqueness rules as the real stores.
type memDB struct {
	mu       sync.Mutex
	clock    time.Time
	plans    map[uuid.UUID]models.Plan
	tenants  map[uuid.UUID]models.Tenant
	users    map[uuid.UUID]models.User
	projects map[uuid.UUID]models.Project
	tasks    map[uuid.UUID]models.Task
}

var testPlans = []models.Plan{
	{Name: "free", MaxUsers: 5, MaxProjects: 3},
	{Name: "pro", MaxUsers: 50, MaxProjects: 20},
	{Name: "enterprise", MaxUsers: 500, MaxProjects: 100},
}

func newMemDB() *memDB {
	return &memDB{
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		plans:    make(map[uuid.UUID]models.Plan),
		tenants:  make(map[uuid.UUID]models.Tenant),
		users:    make(map[uuid.UUID]models.User),
		projects: make(map[uuid.UUID]models.Project),
		tasks:    make(map[uuid.UUID]models.Task),
	}
}

// tick returns a strictly increasing timestamp so newest-first ordering is
// deterministic.
func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func (db *memDB) planByName(name string) (models.Plan, bool) {
	for _, p := range db.plans {
		if p.Name == name {
			return p, true
		}
	}
	return models.Plan{}, false
}

func (db *memDB) planOf(tenantID uuid.UUID) (models.Plan, bool) {
	t, ok := db.tenants[tenantID]
	if !ok {
		return models.Plan{}, false
	}
	p, ok := db.plans[t.PlanID]
	return p, ok
}

func visible(scope repository.Scope, tenantID uuid.UUID) bool {
	return scope.All || scope.TenantID == tenantID
}

func matches(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func window[T any](rows []T, page repository.Page) []T {
	if page.Offset >= len(rows) {
		return []T{}
	}
	end := len(rows)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return rows[page.Offset:end]
}

// ---- plans ----

type memPlans struct{ db *memDB }

func (s memPlans) EnsureDefaults(context.Context) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, p := range testPlans {
		if _, ok := s.db.planByName(p.Name); ok {
			continue
		}
		p.ID = uuid.New()
		s.db.plans[p.ID] = p
	}
	return nil
}

func (s memPlans) GetByID(_ context.Context, planID uuid.UUID) (*models.Plan, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.plans[planID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// ---- tenants ----

type memTenants struct{ db *memDB }

func (s memTenants) Register(_ context.Context, params repository.RegisterParams) (*models.Tenant, *models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	plan, ok := s.db.planByName(params.PlanName)
	if !ok {
		return nil, nil, repository.ErrPlanNotFound
	}
	for _, t := range s.db.tenants {
		if t.Subdomain == params.Subdomain {
			return nil, nil, repository.ErrConflict
		}
	}

	now := s.db.tick()
	tenant := models.Tenant{
		ID:        uuid.New(),
		Name:      params.TenantName,
		Subdomain: params.Subdomain,
		PlanID:    plan.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.db.tenants[tenant.ID] = tenant

	tenantID := tenant.ID
	admin := models.User{
		ID:           uuid.New(),
		TenantID:     &tenantID,
		Email:        params.AdminEmail,
		Name:         params.AdminName,
		Role:         models.RoleTenantAdmin,
		PasswordHash: params.AdminPasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.db.users[admin.ID] = admin
	return &tenant, &admin, nil
}

func (s memTenants) GetBySubdomain(_ context.Context, subdomain string) (*models.Tenant, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, t := range s.db.tenants {
		if t.Subdomain == subdomain {
			return &t, nil
		}
	}
	return nil, nil
}

func (s memTenants) detail(t models.Tenant, withTasks bool) models.TenantDetail {
	plan := s.db.plans[t.PlanID]
	d := models.TenantDetail{
		Tenant:      t,
		PlanName:    plan.Name,
		MaxUsers:    plan.MaxUsers,
		MaxProjects: plan.MaxProjects,
	}
	for _, u := range s.db.users {
		if u.TenantID != nil && *u.TenantID == t.ID {
			d.Stats.TotalUsers++
		}
	}
	for _, p := range s.db.projects {
		if p.TenantID == t.ID {
			d.Stats.TotalProjects++
		}
	}
	if withTasks {
		n := 0
		for _, task := range s.db.tasks {
			if task.TenantID == t.ID {
				n++
			}
		}
		d.Stats.TotalTasks = &n
	}
	return d
}

func (s memTenants) GetDetail(_ context.Context, tenantID uuid.UUID) (*models.TenantDetail, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tenants[tenantID]
	if !ok {
		return nil, nil
	}
	d := s.detail(t, true)
	return &d, nil
}

func (s memTenants) List(_ context.Context, page repository.Page) ([]models.TenantDetail, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rows := make([]models.TenantDetail, 0, len(s.db.tenants))
	for _, t := range s.db.tenants {
		rows = append(rows, s.detail(t, false))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return window(rows, page), len(rows), nil
}

func (s memTenants) Update(_ context.Context, tenantID uuid.UUID, params repository.UpdateTenantParams) (*models.Tenant, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tenants[tenantID]
	if !ok {
		return nil, nil
	}
	if params.Name != nil {
		t.Name = *params.Name
	}
	if params.PlanID != nil {
		t.PlanID = *params.PlanID
	}
	t.UpdatedAt = s.db.tick()
	s.db.tenants[tenantID] = t
	return &t, nil
}

// ---- users ----

type memUsers struct{ db *memDB }

func (s memUsers) Create(_ context.Context, params repository.CreateUserParams) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	plan, ok := s.db.planOf(params.TenantID)
	if !ok {
		return nil, repository.ErrPlanNotFound
	}
	count := 0
	for _, u := range s.db.users {
		if u.TenantID == nil || *u.TenantID != params.TenantID {
			continue
		}
		if u.Email == params.Email {
			return nil, repository.ErrConflict
		}
		count++
	}
	if count >= plan.MaxUsers {
		return nil, repository.ErrQuotaExceeded
	}

	now := s.db.tick()
	tenantID := params.TenantID
	u := models.User{
		ID:           uuid.New(),
		TenantID:     &tenantID,
		Email:        params.Email,
		Name:         params.Name,
		Role:         params.Role,
		PasswordHash: params.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.db.users[u.ID] = u
	return &u, nil
}

func (s memUsers) GetByID(_ context.Context, scope repository.Scope, userID uuid.UUID) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[userID]
	if !ok {
		return nil, nil
	}
	if !scope.All && (u.TenantID == nil || *u.TenantID != scope.TenantID) {
		return nil, nil
	}
	return &u, nil
}

func (s memUsers) GetByEmail(_ context.Context, tenantID *uuid.UUID, email string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email != email {
			continue
		}
		switch {
		case tenantID == nil && u.TenantID == nil:
			return &u, nil
		case tenantID != nil && u.TenantID != nil && *tenantID == *u.TenantID:
			return &u, nil
		}
	}
	return nil, nil
}

func (s memUsers) GetProfile(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[userID]
	if !ok {
		return nil, nil
	}
	p := &models.Profile{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, TenantID: u.TenantID}
	if u.TenantID != nil {
		t := s.db.tenants[*u.TenantID]
		plan := s.db.plans[t.PlanID]
		p.TenantName = &t.Name
		p.Subdomain = &t.Subdomain
		p.PlanID = &plan.ID
		p.PlanName = &plan.Name
	}
	return p, nil
}

func (s memUsers) List(_ context.Context, tenantID uuid.UUID, filter repository.UserFilter) ([]models.User, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var rows []models.User
	for _, u := range s.db.users {
		if u.TenantID == nil || *u.TenantID != tenantID {
			continue
		}
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if !matches(filter.Search, u.Name, u.Email) {
			continue
		}
		rows = append(rows, u)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return window(rows, filter.Page), len(rows), nil
}

func (s memUsers) Update(_ context.Context, userID uuid.UUID, params repository.UpdateUserParams) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[userID]
	if !ok {
		return nil, nil
	}
	if params.Name != nil {
		u.Name = *params.Name
	}
	if params.Role != nil {
		u.Role = *params.Role
	}
	u.UpdatedAt = s.db.tick()
	s.db.users[userID] = u
	return &u, nil
}

func (s memUsers) Delete(_ context.Context, userID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[userID]; !ok {
		return repository.ErrNotFound
	}
	for id, t := range s.db.tasks {
		if t.AssignedTo != nil && *t.AssignedTo == userID {
			t.AssignedTo = nil
			s.db.tasks[id] = t
		}
	}
	delete(s.db.users, userID)
	return nil
}

// ---- projects ----

type memProjects struct{ db *memDB }

func (s memProjects) Create(_ context.Context, params repository.CreateProjectParams) (*models.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	plan, ok := s.db.planOf(params.TenantID)
	if !ok {
		return nil, repository.ErrPlanNotFound
	}
	count := 0
	for _, p := range s.db.projects {
		if p.TenantID == params.TenantID {
			count++
		}
	}
	if count >= plan.MaxProjects {
		return nil, repository.ErrQuotaExceeded
	}

	now := s.db.tick()
	p := models.Project{
		ID:          uuid.New(),
		TenantID:    params.TenantID,
		Name:        params.Name,
		Description: params.Description,
		Status:      models.ProjectActive,
		CreatedBy:   params.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.db.projects[p.ID] = p
	return &p, nil
}

func (s memProjects) GetByID(_ context.Context, scope repository.Scope, projectID uuid.UUID) (*models.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.projects[projectID]
	if !ok || !visible(scope, p.TenantID) {
		return nil, nil
	}
	return &p, nil
}

func (s memProjects) List(_ context.Context, scope repository.Scope, filter repository.ProjectFilter) ([]models.Project, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var rows []models.Project
	for _, p := range s.db.projects {
		if !visible(scope, p.TenantID) {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		desc := ""
		if p.Description != nil {
			desc = *p.Description
		}
		if !matches(filter.Search, p.Name, desc) {
			continue
		}
		rows = append(rows, p)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return window(rows, filter.Page), len(rows), nil
}

func (s memProjects) Update(_ context.Context, scope repository.Scope, projectID uuid.UUID, params repository.UpdateProjectParams) (*models.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.projects[projectID]
	if !ok || !visible(scope, p.TenantID) {
		return nil, nil
	}
	if params.Name != nil {
		p.Name = *params.Name
	}
	switch {
	case params.ClearDescription:
		p.Description = nil
	case params.Description != nil:
		p.Description = params.Description
	}
	if params.Status != nil {
		p.Status = *params.Status
	}
	p.UpdatedAt = s.db.tick()
	s.db.projects[projectID] = p
	return &p, nil
}

func (s memProjects) Delete(_ context.Context, scope repository.Scope, projectID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.projects[projectID]
	if !ok || !visible(scope, p.TenantID) {
		return repository.ErrNotFound
	}
	for id, t := range s.db.tasks {
		if t.ProjectID == projectID {
			delete(s.db.tasks, id)
		}
	}
	delete(s.db.projects, projectID)
	return nil
}

// ---- tasks ----

type memTasks struct{ db *memDB }

func (s memTasks) Create(_ context.Context, params repository.CreateTaskParams) (*models.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.projects[params.ProjectID]
	if !ok || !visible(params.Scope, p.TenantID) {
		return nil, repository.ErrNotFound
	}

	now := s.db.tick()
	t := models.Task{
		ID:          uuid.New(),
		TenantID:    p.TenantID,
		ProjectID:   p.ID,
		Title:       params.Title,
		Description: params.Description,
		Status:      models.TaskTodo,
		Priority:    params.Priority,
		AssignedTo:  params.AssignedTo,
		DueDate:     params.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.db.tasks[t.ID] = t
	return &t, nil
}

func (s memTasks) GetByID(_ context.Context, scope repository.Scope, taskID uuid.UUID) (*models.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tasks[taskID]
	if !ok || !visible(scope, t.TenantID) {
		return nil, nil
	}
	return &t, nil
}

func (s memTasks) List(_ context.Context, scope repository.Scope, projectID uuid.UUID, filter repository.TaskFilter) ([]models.Task, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var rows []models.Task
	for _, t := range s.db.tasks {
		if t.ProjectID != projectID || !visible(scope, t.TenantID) {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *filter.AssignedTo) {
			continue
		}
		if !matches(filter.Search, t.Title) {
			continue
		}
		rows = append(rows, t)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return window(rows, filter.Page), len(rows), nil
}

func (s memTasks) Update(_ context.Context, scope repository.Scope, taskID uuid.UUID, params repository.UpdateTaskParams) (*models.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tasks[taskID]
	if !ok || !visible(scope, t.TenantID) {
		return nil, nil
	}
	if params.Title != nil {
		t.Title = *params.Title
	}
	switch {
	case params.ClearDescription:
		t.Description = nil
	case params.Description != nil:
		t.Description = params.Description
	}
	if params.Status != nil {
		t.Status = *params.Status
	}
	if params.Priority != nil {
		t.Priority = *params.Priority
	}
	switch {
	case params.ClearAssignee:
		t.AssignedTo = nil
	case params.AssignedTo != nil:
		t.AssignedTo = params.AssignedTo
	}
	switch {
	case params.ClearDueDate:
		t.DueDate = nil
	case params.DueDate != nil:
		t.DueDate = params.DueDate
	}
	t.UpdatedAt = s.db.tick()
	s.db.tasks[taskID] = t
	return &t, nil
}

func (s memTasks) Delete(_ context.Context, scope repository.Scope, taskID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tasks[taskID]
	if !ok || !visible(scope, t.TenantID) {
		return repository.ErrNotFound
	}
	delete(s.db.tasks, taskID)
	return nil
}

var (
	_ repository.PlanRepository    = memPlans{}
	_ repository.TenantRepository  = memTenants{}
	_ repository.UserRepository    = memUsers{}
	_ repository.ProjectRepository = memProjects{}
	_ repository.TaskRepository    = memTasks{}
)
