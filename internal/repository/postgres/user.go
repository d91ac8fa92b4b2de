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

const userColumns = `id, tenant_id, email, name, role, password_hash, created_at, updated_at`

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.TenantID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create enforces the plan's user limit, then the per-tenant email
// uniqueness, then inserts. The unique constraint on (tenant_id, email)
// still backs the explicit check.
func (s *UserStore) Create(ctx context.Context, params repository.CreateUserParams) (*models.User, error) {
	var created *models.User
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		maxUsers, _, err := lockPlanLimits(ctx, tx, params.TenantID)
		if err != nil {
			return err
		}
		count, err := countWhere(ctx, tx, "users", params.TenantID)
		if err != nil {
			return err
		}
		if count >= maxUsers {
			return repository.ErrQuotaExceeded
		}

		var taken bool
		err = tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM users WHERE tenant_id = $1 AND email = $2
			)`, params.TenantID, params.Email).Scan(&taken)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return fmt.Errorf("insert user: %w", repository.ErrConflict)
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO users (tenant_id, email, name, role, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
			RETURNING `+userColumns,
			params.TenantID, params.Email, params.Name, params.Role, params.PasswordHash,
		)
		created, err = scanUser(row)
		if err != nil {
			return wrapErr("insert user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *UserStore) GetByID(ctx context.Context, scope repository.Scope, userID uuid.UUID) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1 AND ($2::uuid IS NULL OR tenant_id = $2)`,
		userID, scope.Arg(),
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByEmail is used for login. IS NOT DISTINCT FROM lets a nil tenantID
// select platform users, whose tenant_id is NULL.
func (s *UserStore) GetByEmail(ctx context.Context, tenantID *uuid.UUID, email string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1 AND tenant_id IS NOT DISTINCT FROM $2::uuid`,
		email, tenantID,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := s.pool.QueryRow(ctx, `
		SELECT u.id, u.email, u.name, u.role, u.tenant_id,
		       t.name, t.subdomain, t.plan_id, pl.name
		FROM users u
		LEFT JOIN tenants t ON t.id = u.tenant_id
		LEFT JOIN plans pl ON pl.id = t.plan_id
		WHERE u.id = $1`, userID).Scan(
		&p.ID,
		&p.Email,
		&p.Name,
		&p.Role,
		&p.TenantID,
		&p.TenantName,
		&p.Subdomain,
		&p.PlanID,
		&p.PlanName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (s *UserStore) List(ctx context.Context, tenantID uuid.UUID, filter repository.UserFilter) ([]models.User, int, error) {
	var where whereClause
	where.add("tenant_id = $%d", tenantID)
	if filter.Role != nil {
		where.add("role = $%d", *filter.Role)
	}
	if filter.Search != "" {
		where.add("(LOWER(name) LIKE $%[1]d OR LOWER(email) LIKE $%[1]d)", containsPattern(filter.Search))
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users "+where.String(), where.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	limit, args := where.paged(filter.Page)
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users `+where.String()+`
		ORDER BY created_at DESC, id DESC `+limit,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}

	return users, total, nil
}

func (s *UserStore) Update(ctx context.Context, userID uuid.UUID, params repository.UpdateUserParams) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users
		SET name       = COALESCE($2, name),
		    role       = COALESCE($3, role),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		userID, params.Name, params.Role,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("update user", err)
	}
	return u, nil
}

// Delete clears assigned_to on the user's tasks before removing the user.
// Tasks are kept.
func (s *UserStore) Delete(ctx context.Context, userID uuid.UUID) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE tasks SET assigned_to = NULL, updated_at = now() WHERE assigned_to = $1`, userID); err != nil {
			return fmt.Errorf("unassign tasks: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}
