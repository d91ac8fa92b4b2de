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

const taskColumns = `id, tenant_id, project_id, title, description, status, priority, assigned_to, due_date, created_at, updated_at`

type TaskStore struct {
	pool *pgxpool.Pool
}

func NewTaskStore(pool *pgxpool.Pool) *TaskStore {
	return &TaskStore{pool: pool}
}

func scanTask(row scanner) (*models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID,
		&t.TenantID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.AssignedTo,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a task whose tenant_id is read from the parent project in
// the same statement. If the project is outside the scope, the SELECT
// yields no row, nothing is inserted and ErrNotFound is returned.
func (s *TaskStore) Create(ctx context.Context, params repository.CreateTaskParams) (*models.Task, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO tasks (tenant_id, project_id, title, description, status, priority, assigned_to, due_date, created_at, updated_at)
		SELECT p.tenant_id, p.id, $3::text, $4::text, $5::text, $6::text, $7::uuid, $8::timestamptz, now(), now()
		FROM projects p
		WHERE p.id = $1 AND ($2::uuid IS NULL OR p.tenant_id = $2)
		RETURNING `+taskColumns,
		params.ProjectID, params.Scope.Arg(),
		params.Title, params.Description, models.TaskTodo, params.Priority, params.AssignedTo, params.DueDate,
	)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, wrapErr("insert task", err)
	}
	return t, nil
}

func (s *TaskStore) GetByID(ctx context.Context, scope repository.Scope, taskID uuid.UUID) (*models.Task, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND ($2::uuid IS NULL OR tenant_id = $2)`,
		taskID, scope.Arg(),
	)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List(ctx context.Context, scope repository.Scope, projectID uuid.UUID, filter repository.TaskFilter) ([]models.Task, int, error) {
	var where whereClause
	where.add("project_id = $%d", projectID)
	where.scope("tenant_id", scope)
	if filter.Status != nil {
		where.add("status = $%d", *filter.Status)
	}
	if filter.AssignedTo != nil {
		where.add("assigned_to = $%d", *filter.AssignedTo)
	}
	if filter.Search != "" {
		where.add("LOWER(title) LIKE $%d", containsPattern(filter.Search))
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM tasks "+where.String(), where.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	limit, args := where.paged(filter.Page)
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks `+where.String()+`
		ORDER BY created_at DESC, id DESC `+limit,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, total, nil
}

// Update applies a partial update. tenant_id and project_id are not
// updatable.
func (s *TaskStore) Update(ctx context.Context, scope repository.Scope, taskID uuid.UUID, params repository.UpdateTaskParams) (*models.Task, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title       = COALESCE($3, title),
		    description = CASE WHEN $10::boolean THEN NULL ELSE COALESCE($4, description) END,
		    status      = COALESCE($5, status),
		    priority    = COALESCE($6, priority),
		    assigned_to = CASE WHEN $8::boolean THEN NULL ELSE COALESCE($7, assigned_to) END,
		    due_date    = CASE WHEN $11::boolean THEN NULL ELSE COALESCE($9, due_date) END,
		    updated_at  = now()
		WHERE id = $1 AND ($2::uuid IS NULL OR tenant_id = $2)
		RETURNING `+taskColumns,
		taskID, scope.Arg(),
		params.Title, params.Description, params.Status, params.Priority,
		params.AssignedTo, params.ClearAssignee, params.DueDate,
		params.ClearDescription, params.ClearDueDate,
	)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("update task", err)
	}
	return t, nil
}

func (s *TaskStore) Delete(ctx context.Context, scope repository.Scope, taskID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM tasks
		WHERE id = $1 AND ($2::uuid IS NULL OR tenant_id = $2)`,
		taskID, scope.Arg(),
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
