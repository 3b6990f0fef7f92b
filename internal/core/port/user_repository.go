package port

import (
	"context"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
)

// ResidentQuery narrows resident listings. Scope is mandatory for non-SUPER
// callers and produced by the access resolver, never by the client.
type ResidentQuery struct {
	Scope  domain.ScopeFilter
	Search string
	Limit  int
}

// UserRepository exposes persistence behavior for user profiles.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Upsert(ctx context.Context, user domain.User) error
	ListResidents(ctx context.Context, query ResidentQuery) ([]domain.User, error)
	ListByRoles(ctx context.Context, roles []domain.RoleKey, scope domain.ScopeFilter, limit int) ([]domain.User, error)
	CountByRole(ctx context.Context, role domain.RoleKey, scope domain.ScopeFilter) (int, error)
}
