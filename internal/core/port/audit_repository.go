package port

import (
	"context"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
)

// AuditRepository persists activity-log records.
type AuditRepository interface {
	Insert(ctx context.Context, event domain.AuditEvent) error
	ListRecent(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}
