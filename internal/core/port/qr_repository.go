package port

import (
	"context"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
)

// QRRepository exposes persistence behavior for vehicle credentials.
type QRRepository interface {
	Insert(ctx context.Context, credential domain.QRCredential) error
	ActiveByOwner(ctx context.Context, ownerID, qrType string) (*domain.QRCredential, error)
	DeactivateActive(ctx context.Context, ownerID, qrType string) error
	LatestByOwners(ctx context.Context, ownerIDs []string) (map[string]domain.QRCredential, error)
}
