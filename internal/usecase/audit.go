package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/core/port"
)

// AuditService records activity-log entries. Recording is best effort: a
// failed insert is logged and never fails the originating request.
type AuditService struct {
	audit  port.AuditRepository
	logger *zap.Logger
}

// NewAuditService constructs an AuditService.
func NewAuditService(audit port.AuditRepository, logger *zap.Logger) *AuditService {
	return &AuditService{audit: audit, logger: logger}
}

// Record persists one activity entry attributed to the actor.
func (s *AuditService) Record(ctx context.Context, actorID, action, entity string, payload map[string]any) {
	var actor *string
	if actorID != "" {
		actor = &actorID
	}

	event := domain.AuditEvent{
		ID:      uuid.NewString(),
		ActorID: actor,
		Action:  action,
		Entity:  entity,
		Payload: payload,
	}

	if err := s.audit.Insert(ctx, event); err != nil {
		s.logger.Warn("audit insert failed",
			zap.String("action", action),
			zap.String("entity", entity),
			zap.Error(err),
		)
	}
}

// ListRecent returns the newest activity entries.
func (s *AuditService) ListRecent(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	return s.audit.ListRecent(ctx, limit)
}
