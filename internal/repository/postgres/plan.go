package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/tasklane/internal/models"
)

// DefaultPlans are the plans every deployment starts with.
var DefaultPlans = []models.Plan{
	{Name: "free", MaxUsers: 5, MaxProjects: 3},
	{Name: "pro", MaxUsers: 50, MaxProjects: 20},
	{Name: "enterprise", MaxUsers: 500, MaxProjects: 100},
}

type PlanStore struct {
	pool *pgxpool.Pool
}

func NewPlanStore(pool *pgxpool.Pool) *PlanStore {
	return &PlanStore{pool: pool}
}

// EnsureDefaults inserts any missing default plan. Existing rows are left
// alone so operators can tune limits in the database.
func (s *PlanStore) EnsureDefaults(ctx context.Context) error {
	batch := &pgx.Batch{}
	for _, p := range DefaultPlans {
		batch.Queue(`
			INSERT INTO plans (name, max_users, max_projects)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO NOTHING`,
			p.Name, p.MaxUsers, p.MaxProjects,
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("ensure default plans: %w", err)
	}
	return nil
}

func (s *PlanStore) GetByID(ctx context.Context, planID uuid.UUID) (*models.Plan, error) {
	var p models.Plan
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, max_users, max_projects
		FROM plans
		WHERE id = $1`, planID).Scan(&p.ID, &p.Name, &p.MaxUsers, &p.MaxProjects)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return &p, nil
}
