package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/repository"
)

// NewsRepository implements port.NewsRepository using PostgreSQL.
type NewsRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewNewsRepository wires a PostgreSQL-backed news repository.
func NewNewsRepository(pool *pgxpool.Pool) *NewsRepository {
	return &NewsRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a news post.
func (r *NewsRepository) Create(ctx context.Context, post domain.NewsPost) error {
	stmt, args, err := r.builder.Insert("news_posts").
		Columns("id", "complex_id", "title", "content", "created_by").
		Values(post.ID, post.ComplexID, post.Title, post.Content, post.CreatedBy).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert news sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert news: %w", err)
	}
	return nil
}

// List returns posts newest first, optionally narrowed by complex and search.
func (r *NewsRepository) List(ctx context.Context, complexID, search string, limit int) ([]domain.NewsPost, error) {
	sel := r.builder.Select("id", "complex_id", "title", "content", "created_by", "created_at", "updated_at").
		From("news_posts").
		OrderBy("created_at DESC")

	if complexID != "" {
		sel = sel.Where(squirrel.Eq{"complex_id": complexID})
	}
	if search != "" {
		pattern := "%" + search + "%"
		sel = sel.Where(squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"content": pattern},
		})
	}
	if limit > 0 {
		sel = sel.Limit(uint64(limit))
	}

	stmt, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list news sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer rows.Close()

	var posts []domain.NewsPost
	for rows.Next() {
		var post domain.NewsPost
		if err := rows.Scan(&post.ID, &post.ComplexID, &post.Title, &post.Content, &post.CreatedBy, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate news: %w", err)
	}
	return posts, nil
}

// AdRepository implements port.AdRepository using PostgreSQL.
type AdRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAdRepository wires a PostgreSQL-backed ad repository.
func NewAdRepository(pool *pgxpool.Pool) *AdRepository {
	return &AdRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts an ad item.
func (r *AdRepository) Create(ctx context.Context, item domain.AdItem) error {
	stmt, args, err := r.builder.Insert("ads_items").
		Columns("id", "complex_id", "title", "body", "image_url", "starts_at", "ends_at", "created_by").
		Values(item.ID, item.ComplexID, item.Title, item.Body, item.ImageURL, item.StartsAt, item.EndsAt, item.CreatedBy).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert ad sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert ad: %w", err)
	}
	return nil
}

// List returns ads newest first, optionally narrowed by complex and search.
func (r *AdRepository) List(ctx context.Context, complexID, search string, limit int) ([]domain.AdItem, error) {
	sel := r.builder.Select("id", "complex_id", "title", "body", "image_url", "starts_at", "ends_at", "created_by", "created_at").
		From("ads_items").
		OrderBy("created_at DESC")

	if complexID != "" {
		sel = sel.Where(squirrel.Eq{"complex_id": complexID})
	}
	if search != "" {
		sel = sel.Where(squirrel.ILike{"title": "%" + search + "%"})
	}
	if limit > 0 {
		sel = sel.Limit(uint64(limit))
	}

	stmt, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list ads sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query ads: %w", err)
	}
	defer rows.Close()

	var items []domain.AdItem
	for rows.Next() {
		var item domain.AdItem
		if err := rows.Scan(&item.ID, &item.ComplexID, &item.Title, &item.Body, &item.ImageURL, &item.StartsAt, &item.EndsAt, &item.CreatedBy, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ad: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ads: %w", err)
	}
	return items, nil
}

// CustomizationRepository implements port.CustomizationRepository using PostgreSQL.
type CustomizationRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCustomizationRepository wires a PostgreSQL-backed customization repository.
func NewCustomizationRepository(pool *pgxpool.Pool) *CustomizationRepository {
	return &CustomizationRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get loads the single global document.
func (r *CustomizationRepository) Get(ctx context.Context) (*domain.AdminCustomization, error) {
	stmt, args, err := r.builder.Select("id", "menus", "pages", "updated_at").
		From("admin_customizations").
		Where(squirrel.Eq{"id": domain.CustomizationID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select customization sql: %w", err)
	}

	var (
		doc   domain.AdminCustomization
		menus []byte
		pages []byte
	)
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&doc.ID, &menus, &pages, &doc.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan customization: %w", err)
	}

	if len(menus) > 0 {
		if err := json.Unmarshal(menus, &doc.Menus); err != nil {
			return nil, fmt.Errorf("unmarshal customization menus: %w", err)
		}
	}
	if len(pages) > 0 {
		if err := json.Unmarshal(pages, &doc.Pages); err != nil {
			return nil, fmt.Errorf("unmarshal customization pages: %w", err)
		}
	}
	return &doc, nil
}

// Upsert replaces the global document.
func (r *CustomizationRepository) Upsert(ctx context.Context, doc domain.AdminCustomization) error {
	menus, err := json.Marshal(doc.Menus)
	if err != nil {
		return fmt.Errorf("marshal customization menus: %w", err)
	}
	pages, err := json.Marshal(doc.Pages)
	if err != nil {
		return fmt.Errorf("marshal customization pages: %w", err)
	}

	stmt, args, err := r.builder.Insert("admin_customizations").
		Columns("id", "menus", "pages", "updated_at").
		Values(domain.CustomizationID, menus, pages, squirrel.Expr("NOW()")).
		Suffix("ON CONFLICT (id) DO UPDATE SET menus = EXCLUDED.menus, pages = EXCLUDED.pages, updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert customization sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert customization: %w", err)
	}
	return nil
}
