package port

import (
	"context"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
)

// EventPublisher emits audit events to the configured broker. Publishing is
// advisory: a failed publish never fails the originating request.
type EventPublisher interface {
	PublishAdminAssigned(ctx context.Context, event domain.AdminAssignedEvent) error
	PublishResidentInvited(ctx context.Context, event domain.ResidentInvitedEvent) error
	PublishQRIssued(ctx context.Context, event domain.QRIssuedEvent) error
	PublishMenuToggled(ctx context.Context, event domain.MenuToggledEvent) error
}
