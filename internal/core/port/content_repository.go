package port

import (
	"context"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
)

// NewsRepository exposes persistence behavior for news posts.
type NewsRepository interface {
	Create(ctx context.Context, post domain.NewsPost) error
	List(ctx context.Context, complexID, search string, limit int) ([]domain.NewsPost, error)
}

// AdRepository exposes persistence behavior for ad items.
type AdRepository interface {
	Create(ctx context.Context, item domain.AdItem) error
	List(ctx context.Context, complexID, search string, limit int) ([]domain.AdItem, error)
}

// CustomizationRepository stores the single global customization document.
type CustomizationRepository interface {
	Get(ctx context.Context) (*domain.AdminCustomization, error)
	Upsert(ctx context.Context, doc domain.AdminCustomization) error
}
