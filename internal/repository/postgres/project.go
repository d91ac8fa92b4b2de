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

const projectColumns = `id, tenant_id, name, description, status, created_by, created_at, updated_at`

type ProjectStore struct {
	pool *pgxpool.Pool
}

func NewProjectStore(pool *pgxpool.Pool) *ProjectStore {
	return &ProjectStore{pool: pool}
}

func scanProject(row scanner) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.Name,
		&p.Description,
		&p.Status,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProjectStore) Create(ctx context.Context, params repository.CreateProjectParams) (*models.Project, error) {
	var created *models.Project
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, maxProjects, err := lockPlanLimits(ctx, tx, params.TenantID)
		if err != nil {
			return err
		}
		count, err := countWhere(ctx, tx, "projects", params.TenantID)
		if err != nil {
			return err
		}
		if count >= maxProjects {
			return repository.ErrQuotaExceeded
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO projects (tenant_id, name, description, status, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
			RETURNING `+projectColumns,
			params.TenantID, params.Name, params.Description, models.ProjectActive, params.CreatedBy,
		)
		created, err = scanProject(row)
		if err != nil {
			return wrapErr("insert project", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *ProjectStore) GetByID(ctx context.Context, scope repository.Scope, projectID uuid.UUID) (*models.Project, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE id = $1 AND ($2::uuid IS NULL OR tenant_id = $2)`,
		projectID, scope.Arg(),
	)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *ProjectStore) List(ctx context.Context, scope repository.Scope, filter repository.ProjectFilter) ([]models.Project, int, error) {
	var where whereClause
	where.scope("tenant_id", scope)
	if filter.Status != nil {
		where.add("status = $%d", *filter.Status)
	}
	if filter.Search != "" {
		where.add("LOWER(name) LIKE $%d", containsPattern(filter.Search))
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM projects "+where.String(), where.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	limit, args := where.paged(filter.Page)
	rows, err := s.pool.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects `+where.String()+`
		ORDER BY created_at DESC, id DESC `+limit,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate projects: %w", err)
	}

	return projects, total, nil
}

func (s *ProjectStore) Update(ctx context.Context, scope repository.Scope, projectID uuid.UUID, params repository.UpdateProjectParams) (*models.Project, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE projects
		SET name        = COALESCE($3, name),
		    description = CASE WHEN $6::boolean THEN NULL ELSE COALESCE($4, description) END,
		    status      = COALESCE($5, status),
		    updated_at  = now()
		WHERE id = $1 AND ($2::uuid IS NULL OR tenant_id = $2)
		RETURNING `+projectColumns,
		projectID, scope.Arg(), params.Name, params.Description, params.Status, params.ClearDescription,
	)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("update project", err)
	}
	return p, nil
}

// Delete removes the project; its tasks go with it through ON DELETE CASCADE.
func (s *ProjectStore) Delete(ctx context.Context, scope repository.Scope, projectID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM projects
		WHERE id = $1 AND ($2::uuid IS NULL OR tenant_id = $2)`,
		projectID, scope.Arg(),
	)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
