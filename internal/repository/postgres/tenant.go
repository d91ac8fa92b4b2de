package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/lalith-99/tasklane/internal/repository"
)

const tenantColumns = `id, name, subdomain, plan_id, created_at, updated_at`

type TenantStore struct {
	pool *pgxpool.Pool
}

func NewTenantStore(pool *pgxpool.Pool) *TenantStore {
	return &TenantStore{pool: pool}
}

func scanTenant(row scanner) (*models.Tenant, error) {
	var t models.Tenant
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Subdomain,
		&t.PlanID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Register creates the tenant on the named plan and its first
// TENANT_ADMIN. Either both rows are committed or neither is.
func (s *TenantStore) Register(ctx context.Context, params repository.RegisterParams) (*models.Tenant, *models.User, error) {
	var (
		tenant *models.Tenant
		admin  *models.User
	)
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var planID uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM plans WHERE name = $1`, params.PlanName).Scan(&planID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrPlanNotFound
			}
			return fmt.Errorf("get plan: %w", err)
		}

		tenant, err = scanTenant(tx.QueryRow(ctx, `
			INSERT INTO tenants (name, subdomain, plan_id, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
			RETURNING `+tenantColumns,
			params.TenantName, params.Subdomain, planID,
		))
		if err != nil {
			return wrapErr("insert tenant", err)
		}

		admin, err = scanUser(tx.QueryRow(ctx, `
			INSERT INTO users (tenant_id, email, name, role, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
			RETURNING `+userColumns,
			tenant.ID, params.AdminEmail, params.AdminName, models.RoleTenantAdmin, params.AdminPasswordHash,
		))
		if err != nil {
			return wrapErr("insert admin", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return tenant, admin, nil
}

func (s *TenantStore) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	t, err := scanTenant(s.pool.QueryRow(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE subdomain = $1`, subdomain))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant by subdomain: %w", err)
	}
	return t, nil
}

func (s *TenantStore) GetDetail(ctx context.Context, tenantID uuid.UUID) (*models.TenantDetail, error) {
	var (
		d          models.TenantDetail
		totalTasks int
	)
	err := s.pool.QueryRow(ctx, `
		SELECT t.id, t.name, t.subdomain, t.plan_id, t.created_at, t.updated_at,
		       p.name, p.max_users, p.max_projects,
		       (SELECT COUNT(*) FROM users WHERE tenant_id = t.id),
		       (SELECT COUNT(*) FROM projects WHERE tenant_id = t.id),
		       (SELECT COUNT(*) FROM tasks WHERE tenant_id = t.id)
		FROM tenants t
		JOIN plans p ON p.id = t.plan_id
		WHERE t.id = $1`, tenantID).Scan(
		&d.ID,
		&d.Name,
		&d.Subdomain,
		&d.PlanID,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.PlanName,
		&d.MaxUsers,
		&d.MaxProjects,
		&d.Stats.TotalUsers,
		&d.Stats.TotalProjects,
		&totalTasks,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant detail: %w", err)
	}
	d.Stats.TotalTasks = &totalTasks
	return &d, nil
}

// List returns tenants with per-tenant user and project counts.
func (s *TenantStore) List(ctx context.Context, page repository.Page) ([]models.TenantDetail, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tenants: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT t.id, t.name, t.subdomain, t.plan_id, t.created_at, t.updated_at,
		       p.name, p.max_users, p.max_projects,
		       (SELECT COUNT(*) FROM users WHERE tenant_id = t.id),
		       (SELECT COUNT(*) FROM projects WHERE tenant_id = t.id)
		FROM tenants t
		JOIN plans p ON p.id = t.plan_id
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $1 OFFSET $2`, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]models.TenantDetail, 0)
	for rows.Next() {
		var d models.TenantDetail
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.Subdomain,
			&d.PlanID,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.PlanName,
			&d.MaxUsers,
			&d.MaxProjects,
			&d.Stats.TotalUsers,
			&d.Stats.TotalProjects,
		); err != nil {
			return nil, 0, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate tenants: %w", err)
	}

	return tenants, total, nil
}

func (s *TenantStore) Update(ctx context.Context, tenantID uuid.UUID, params repository.UpdateTenantParams) (*models.Tenant, error) {
	t, err := scanTenant(s.pool.QueryRow(ctx, `
		UPDATE tenants
		SET name       = COALESCE($2, name),
		    plan_id    = COALESCE($3, plan_id),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+tenantColumns,
		tenantID, params.Name, params.PlanID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("update tenant", err)
	}
	return t, nil
}
