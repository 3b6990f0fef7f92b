package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/core/port"
	"github.com/hyeonbit/complex-admin/internal/repository"
)

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	if tx == nil {
		return r
	}
	return &UserRepository{pool: r.pool, exec: tx, builder: r.builder}
}

const userColumns = "id, role_id, complex_id, building_id, display_name, phone, metadata, created_at"

// Upsert inserts or replaces the profile row keyed by id. Scope columns are
// overwritten deliberately: assignment flows are the only writers.
func (r *UserRepository) Upsert(ctx context.Context, user domain.User) error {
	metadata, err := json.Marshal(user.Metadata)
	if err != nil {
		return fmt.Errorf("marshal user metadata: %w", err)
	}

	query := r.builder.Insert("users").
		Columns("id", "role_id", "complex_id", "building_id", "display_name", "phone", "metadata").
		Values(user.ID, string(user.RoleID), user.ComplexID, user.BuildingID, user.DisplayName, user.Phone, metadata).
		Suffix("ON CONFLICT (id) DO UPDATE SET role_id = EXCLUDED.role_id, complex_id = EXCLUDED.complex_id, building_id = EXCLUDED.building_id, display_name = EXCLUDED.display_name, phone = EXCLUDED.phone, metadata = EXCLUDED.metadata")

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetByID loads one profile row.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	stmt, args, err := r.builder.Select(userColumns).
		From("users").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	user, err := scanUser(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

// ListResidents returns resident profiles within the given scope, newest
// first. Search matches display name or phone.
func (r *UserRepository) ListResidents(ctx context.Context, query port.ResidentQuery) ([]domain.User, error) {
	sel := r.builder.Select(userColumns).
		From("users").
		Where(squirrel.Eq{"role_id": string(domain.RoleResident)}).
		OrderBy("created_at DESC")

	sel = applyScope(sel, query.Scope)

	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		sel = sel.Where(squirrel.Or{
			squirrel.ILike{"display_name": pattern},
			squirrel.ILike{"phone": pattern},
			squirrel.Expr("metadata->>'email' ILIKE ?", pattern),
			squirrel.Expr("metadata->>'unitLabel' ILIKE ?", pattern),
			squirrel.Expr("metadata->>'carNumber' ILIKE ?", pattern),
		})
	}

	if query.Limit > 0 {
		sel = sel.Limit(uint64(query.Limit))
	}

	stmt, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list residents sql: %w", err)
	}
	return r.queryUsers(ctx, stmt, args)
}

// ListByRoles returns profiles holding any of the given roles within scope.
func (r *UserRepository) ListByRoles(ctx context.Context, roles []domain.RoleKey, scope domain.ScopeFilter, limit int) ([]domain.User, error) {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}

	sel := r.builder.Select(userColumns).
		From("users").
		Where(squirrel.Eq{"role_id": names}).
		OrderBy("created_at DESC")

	sel = applyScope(sel, scope)
	if limit > 0 {
		sel = sel.Limit(uint64(limit))
	}

	stmt, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users sql: %w", err)
	}
	return r.queryUsers(ctx, stmt, args)
}

// CountByRole counts profiles with the role inside the scope.
func (r *UserRepository) CountByRole(ctx context.Context, role domain.RoleKey, scope domain.ScopeFilter) (int, error) {
	sel := r.builder.Select("COUNT(*)").
		From("users").
		Where(squirrel.Eq{"role_id": string(role)})
	sel = applyScope(sel, scope)

	stmt, args, err := sel.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count users sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, stmt string, args []any) ([]domain.User, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// applyScope narrows a users query to a resolved scope filter. The filter
// comes from the access resolver; an empty filter means SUPER.
func applyScope(sel squirrel.SelectBuilder, scope domain.ScopeFilter) squirrel.SelectBuilder {
	if scope.BuildingID != "" {
		return sel.Where(squirrel.Eq{"building_id": scope.BuildingID})
	}
	if scope.ComplexID != "" {
		return sel.Where(squirrel.Eq{"complex_id": scope.ComplexID})
	}
	return sel
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user     domain.User
		roleID   string
		metadata []byte
	)
	if err := row.Scan(&user.ID, &roleID, &user.ComplexID, &user.BuildingID, &user.DisplayName, &user.Phone, &metadata, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.RoleID = domain.RoleKey(roleID)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &user.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal user metadata: %w", err)
		}
	}
	return &user, nil
}
