package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
)

// MenuConfigRepository implements port.MenuConfigRepository using PostgreSQL.
type MenuConfigRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewMenuConfigRepository wires a PostgreSQL-backed menu config repository.
func NewMenuConfigRepository(pool *pgxpool.Pool) *MenuConfigRepository {
	return &MenuConfigRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *MenuConfigRepository) WithTx(tx pgx.Tx) *MenuConfigRepository {
	if tx == nil {
		return r
	}
	return &MenuConfigRepository{pool: r.pool, exec: tx, builder: r.builder}
}

// ListByTargetRole returns every stored rule for a target role, across all
// owners. Merging by precedence happens in the domain layer.
func (r *MenuConfigRepository) ListByTargetRole(ctx context.Context, target domain.RoleKey) ([]domain.MenuConfigEntry, error) {
	stmt, args, err := r.builder.Select("owner_role", "target_role", "menu_key", "is_enabled", "updated_by").
		From("menu_configurations").
		Where(squirrel.Eq{"target_role": string(target)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list menu configs sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query menu configs: %w", err)
	}
	defer rows.Close()

	var entries []domain.MenuConfigEntry
	for rows.Next() {
		var (
			entry      domain.MenuConfigEntry
			ownerRole  string
			targetRole string
		)
		if err := rows.Scan(&ownerRole, &targetRole, &entry.MenuKey, &entry.IsEnabled, &entry.UpdatedBy); err != nil {
			return nil, fmt.Errorf("scan menu config: %w", err)
		}
		entry.OwnerRole = domain.RoleKey(ownerRole)
		entry.TargetRole = domain.RoleKey(targetRole)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu configs: %w", err)
	}
	return entries, nil
}

// Upsert writes one rule; last writer per (owner, target, key) wins.
func (r *MenuConfigRepository) Upsert(ctx context.Context, entry domain.MenuConfigEntry) error {
	stmt, args, err := r.builder.Insert("menu_configurations").
		Columns("owner_role", "target_role", "menu_key", "is_enabled", "updated_by").
		Values(string(entry.OwnerRole), string(entry.TargetRole), entry.MenuKey, entry.IsEnabled, entry.UpdatedBy).
		Suffix("ON CONFLICT (owner_role, target_role, menu_key) DO UPDATE SET is_enabled = EXCLUDED.is_enabled, updated_by = EXCLUDED.updated_by").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert menu config sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert menu config: %w", err)
	}
	return nil
}
