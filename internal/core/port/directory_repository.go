package port

import (
	"context"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
)

// ComplexRepository exposes persistence behavior for complexes.
type ComplexRepository interface {
	Create(ctx context.Context, complex domain.Complex) error
	GetByID(ctx context.Context, id string) (*domain.Complex, error)
	List(ctx context.Context, search string, limit int) ([]domain.Complex, error)
}

// BuildingRepository exposes persistence behavior for buildings.
type BuildingRepository interface {
	Create(ctx context.Context, building domain.Building) error
	GetByID(ctx context.Context, id string) (*domain.Building, error)
	ListByComplex(ctx context.Context, complexID, search string, limit int) ([]domain.Building, error)
	CountByComplex(ctx context.Context, complexID string) (int, error)
}
