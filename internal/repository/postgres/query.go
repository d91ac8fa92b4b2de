package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lalith-99/tasklane/internal/repository"
)

const uniqueViolation = "23505"

type scanner interface {
	Scan(dest ...any) error
}

// wrapErr annotates err with op and translates unique violations into
// repository.ErrConflict.
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w: %s", op, repository.ErrConflict, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// whereClause accumulates AND-ed predicates with positional arguments.
// Each predicate is a format string with a single %d for its placeholder.
type whereClause struct {
	preds []string
	args  []any
}

func (w *whereClause) add(pred string, arg any) {
	w.args = append(w.args, arg)
	w.preds = append(w.preds, fmt.Sprintf(pred, len(w.args)))
}

func (w *whereClause) scope(column string, s repository.Scope) {
	if s.All {
		return
	}
	w.add(column+" = $%d", s.TenantID)
}

func (w *whereClause) String() string {
	if len(w.preds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.preds, " AND ")
}

// paged returns the LIMIT/OFFSET suffix and the args extended with both.
func (w *whereClause) paged(p repository.Page) (string, []any) {
	args := append(append([]any{}, w.args...), p.Limit, p.Offset)
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

// containsPattern builds a case-insensitive LIKE pattern that matches s as
// a literal substring.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

// lockPlanLimits locks the tenant row for the rest of tx and returns the
// limits of its plan. Concurrent creations for the same tenant queue
// behind the lock, so count-then-insert cannot overshoot the limit.
func lockPlanLimits(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) (maxUsers, maxProjects int, err error) {
	err = tx.QueryRow(ctx, `
		SELECT p.max_users, p.max_projects
		FROM tenants t
		JOIN plans p ON p.id = t.plan_id
		WHERE t.id = $1
		FOR UPDATE OF t`, tenantID).Scan(&maxUsers, &maxProjects)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, repository.ErrPlanNotFound
		}
		return 0, 0, fmt.Errorf("lock tenant plan: %w", err)
	}
	return maxUsers, maxProjects, nil
}

func countWhere(ctx context.Context, q pgx.Tx, table string, tenantID uuid.UUID) (int, error) {
	var n int
	err := q.QueryRow(ctx, "SELECT COUNT(*) FROM "+table+" WHERE tenant_id = $1", tenantID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
