package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/repository"
)

// ComplexRepository implements port.ComplexRepository using PostgreSQL.
type ComplexRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewComplexRepository wires a PostgreSQL-backed complex repository.
func NewComplexRepository(pool *pgxpool.Pool) *ComplexRepository {
	return &ComplexRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new complex.
func (r *ComplexRepository) Create(ctx context.Context, complex domain.Complex) error {
	stmt, args, err := r.builder.Insert("complexes").
		Columns("id", "name", "region").
		Values(complex.ID, complex.Name, complex.Region).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert complex sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert complex: %w", err)
	}
	return nil
}

// GetByID loads one complex.
func (r *ComplexRepository) GetByID(ctx context.Context, id string) (*domain.Complex, error) {
	stmt, args, err := r.builder.Select("id", "name", "region", "created_at").
		From("complexes").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select complex sql: %w", err)
	}

	var complex domain.Complex
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&complex.ID, &complex.Name, &complex.Region, &complex.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan complex: %w", err)
	}
	return &complex, nil
}

// List returns complexes newest first, optionally filtered by name.
func (r *ComplexRepository) List(ctx context.Context, search string, limit int) ([]domain.Complex, error) {
	sel := r.builder.Select("id", "name", "region", "created_at").
		From("complexes").
		OrderBy("created_at DESC")

	if search != "" {
		sel = sel.Where(squirrel.ILike{"name": "%" + search + "%"})
	}
	if limit > 0 {
		sel = sel.Limit(uint64(limit))
	}

	stmt, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list complexes sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query complexes: %w", err)
	}
	defer rows.Close()

	var complexes []domain.Complex
	for rows.Next() {
		var complex domain.Complex
		if err := rows.Scan(&complex.ID, &complex.Name, &complex.Region, &complex.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan complex: %w", err)
		}
		complexes = append(complexes, complex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate complexes: %w", err)
	}
	return complexes, nil
}

// BuildingRepository implements port.BuildingRepository using PostgreSQL.
type BuildingRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewBuildingRepository wires a PostgreSQL-backed building repository.
func NewBuildingRepository(pool *pgxpool.Pool) *BuildingRepository {
	return &BuildingRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new building.
func (r *BuildingRepository) Create(ctx context.Context, building domain.Building) error {
	stmt, args, err := r.builder.Insert("buildings").
		Columns("id", "complex_id", "name").
		Values(building.ID, building.ComplexID, building.Name).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert building sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert building: %w", err)
	}
	return nil
}

// GetByID loads one building.
func (r *BuildingRepository) GetByID(ctx context.Context, id string) (*domain.Building, error) {
	stmt, args, err := r.builder.Select("id", "complex_id", "name", "created_at").
		From("buildings").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select building sql: %w", err)
	}

	var building domain.Building
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&building.ID, &building.ComplexID, &building.Name, &building.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan building: %w", err)
	}
	return &building, nil
}

// ListByComplex returns the buildings of one complex, newest first.
func (r *BuildingRepository) ListByComplex(ctx context.Context, complexID, search string, limit int) ([]domain.Building, error) {
	sel := r.builder.Select("id", "complex_id", "name", "created_at").
		From("buildings").
		Where(squirrel.Eq{"complex_id": complexID}).
		OrderBy("created_at DESC")

	if search != "" {
		sel = sel.Where(squirrel.ILike{"name": "%" + search + "%"})
	}
	if limit > 0 {
		sel = sel.Limit(uint64(limit))
	}

	stmt, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list buildings sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query buildings: %w", err)
	}
	defer rows.Close()

	var buildings []domain.Building
	for rows.Next() {
		var building domain.Building
		if err := rows.Scan(&building.ID, &building.ComplexID, &building.Name, &building.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan building: %w", err)
		}
		buildings = append(buildings, building)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate buildings: %w", err)
	}
	return buildings, nil
}

// CountByComplex counts buildings inside a complex.
func (r *BuildingRepository) CountByComplex(ctx context.Context, complexID string) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("buildings").
		Where(squirrel.Eq{"complex_id": complexID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count buildings sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count buildings: %w", err)
	}
	return count, nil
}
