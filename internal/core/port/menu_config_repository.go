package port

import (
	"context"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
)

// MenuConfigRepository exposes persistence behavior for menu enablement
// rules. Upsert overwrites on the (owner_role, target_role, menu_key) key.
type MenuConfigRepository interface {
	ListByTargetRole(ctx context.Context, target domain.RoleKey) ([]domain.MenuConfigEntry, error)
	Upsert(ctx context.Context, entry domain.MenuConfigEntry) error
}

// MenuConfigCache is an advisory read cache for merged effective configs.
// Misses and stale reads are harmless: authorization is always re-derived
// from the repository on writes.
type MenuConfigCache interface {
	GetEffective(ctx context.Context, target domain.RoleKey) (map[string]bool, bool, error)
	SetEffective(ctx context.Context, target domain.RoleKey, config map[string]bool) error
	Invalidate(ctx context.Context, target domain.RoleKey) error
}
