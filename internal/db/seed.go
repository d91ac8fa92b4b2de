package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/lalith-99/tasklane/internal/repository"
	"go.uber.org/zap"
)

// SeedUser is one demo account. TenantSubdomain is empty for platform
// users.
type SeedUser struct {
	TenantSubdomain string
	Email           string
	Name            string
	Password        string
	Role            models.Role
}

// SeedTenant is one demo tenant.
type SeedTenant struct {
	Name      string
	Subdomain string
	Plan      string
}

var (
	DemoTenants = []SeedTenant{
		{Name: "Acme Inc", Subdomain: "acme", Plan: "pro"},
	}
	DemoUsers = []SeedUser{
		{TenantSubdomain: "acme", Email: "alice@acme.com", Name: "Alice Admin", Password: "Password123!", Role: models.RoleTenantAdmin},
		{TenantSubdomain: "acme", Email: "bob@acme.com", Name: "Bob User", Password: "Password123!", Role: models.RoleUser},
		{Email: "superadmin@system.com", Name: "Super Admin", Password: "Admin123!", Role: models.RoleSuperAdmin},
	}
)

// Seed creates the default plans and the demo accounts. Existing rows are
// never modified, so it is safe to run repeatedly.
func (db *DB) Seed(ctx context.Context, plans repository.PlanRepository, hash func(string) (string, error)) error {
	if err := plans.EnsureDefaults(ctx); err != nil {
		return err
	}

	// Hash outside the transaction; bcrypt is slow on purpose.
	hashes := make([]string, len(DemoUsers))
	for i, u := range DemoUsers {
		h, err := hash(u.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Email, err)
		}
		hashes[i] = h
	}

	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		tenantIDs := make(map[string]uuid.UUID, len(DemoTenants))
		for _, t := range DemoTenants {
			_, err := tx.Exec(ctx, `
				INSERT INTO tenants (name, subdomain, plan_id)
				SELECT $1, $2, id FROM plans WHERE name = $3
				ON CONFLICT (subdomain) DO NOTHING`,
				t.Name, t.Subdomain, t.Plan,
			)
			if err != nil {
				return fmt.Errorf("seed tenant %s: %w", t.Subdomain, err)
			}

			var id uuid.UUID
			if err := tx.QueryRow(ctx, `SELECT id FROM tenants WHERE subdomain = $1`, t.Subdomain).Scan(&id); err != nil {
				return fmt.Errorf("load tenant %s: %w", t.Subdomain, err)
			}
			tenantIDs[t.Subdomain] = id
		}

		for i, u := range DemoUsers {
			var tenantID *uuid.UUID
			if u.TenantSubdomain != "" {
				id, ok := tenantIDs[u.TenantSubdomain]
				if !ok {
					return fmt.Errorf("seed user %s: unknown tenant %q", u.Email, u.TenantSubdomain)
				}
				tenantID = &id
			}

			_, err := tx.Exec(ctx, `
				INSERT INTO users (tenant_id, email, name, role, password_hash)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT ON CONSTRAINT users_tenant_email_key DO NOTHING`,
				tenantID, u.Email, u.Name, u.Role, hashes[i],
			)
			if err != nil {
				return fmt.Errorf("seed user %s: %w", u.Email, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	db.logger.Info("seed data applied",
		zap.Int("tenants", len(DemoTenants)),
		zap.Int("users", len(DemoUsers)),
	)
	return nil
}
