package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/core/port"
	"github.com/hyeonbit/complex-admin/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, subject string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("subject", subject),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAdminAssigned logs admin.assigned events.
func (p *StubPublisher) PublishAdminAssigned(_ context.Context, event domain.AdminAssignedEvent) error {
	payload := map[string]any{
		"user_id":     event.UserID,
		"email":       logger.MaskEmail(event.Email),
		"role":        event.Role,
		"complex_id":  event.ComplexID,
		"building_id": event.BuildingID,
		"assigned_by": event.AssignedBy,
		"assigned_at": event.AssignedAt,
	}
	p.logEvent("admin.assigned", event.UserID, event.AssignedAt, payload)
	return nil
}

// PublishResidentInvited logs resident.invited events.
func (p *StubPublisher) PublishResidentInvited(_ context.Context, event domain.ResidentInvitedEvent) error {
	payload := map[string]any{
		"user_id":     event.UserID,
		"email":       logger.MaskEmail(event.Email),
		"complex_id":  event.ComplexID,
		"building_id": event.BuildingID,
		"invited_by":  event.InvitedBy,
		"invited_at":  event.InvitedAt,
	}
	p.logEvent("resident.invited", event.UserID, event.InvitedAt, payload)
	return nil
}

// PublishQRIssued logs qr.issued events.
func (p *StubPublisher) PublishQRIssued(_ context.Context, event domain.QRIssuedEvent) error {
	payload := map[string]any{
		"owner_id":   event.OwnerID,
		"reissued":   event.Reissued,
		"issued_by":  event.IssuedBy,
		"issued_at":  event.IssuedAt,
		"expires_at": event.Expires,
	}
	p.logEvent("qr.issued", event.OwnerID, event.IssuedAt, payload)
	return nil
}

// PublishMenuToggled logs menu.toggled events.
func (p *StubPublisher) PublishMenuToggled(_ context.Context, event domain.MenuToggledEvent) error {
	payload := map[string]any{
		"owner_role":  event.OwnerRole,
		"target_role": event.TargetRole,
		"menu_key":    event.MenuKey,
		"enabled":     event.Enabled,
		"changed_by":  event.ChangedBy,
		"changed_at":  event.ChangedAt,
	}
	p.logEvent("menu.toggled", event.ChangedBy, event.ChangedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
