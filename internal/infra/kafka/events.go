package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/core/port"
	"github.com/hyeonbit/complex-admin/internal/infra/config"
	"github.com/hyeonbit/complex-admin/internal/infra/logger"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	Subject   string           `json:"subject,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventType, subject string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Subject:   subject,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Key:   sarama.StringEncoder(subject),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAdminAssigned publishes admin.assigned events.
func (p *EventPublisher) PublishAdminAssigned(ctx context.Context, event domain.AdminAssignedEvent) error {
	payload := struct {
		UserID     string         `json:"user_id"`
		Email      string         `json:"email"`
		Role       domain.RoleKey `json:"role"`
		ComplexID  string         `json:"complex_id,omitempty"`
		BuildingID string         `json:"building_id,omitempty"`
		AssignedBy string         `json:"assigned_by"`
		AssignedAt time.Time      `json:"assigned_at"`
	}{
		UserID:     event.UserID,
		Email:      logger.MaskEmail(event.Email),
		Role:       event.Role,
		ComplexID:  event.ComplexID,
		BuildingID: event.BuildingID,
		AssignedBy: event.AssignedBy,
		AssignedAt: event.AssignedAt.UTC(),
	}

	return p.publish(ctx, "admin.assigned", event.UserID, event.AssignedAt, payload)
}

// PublishResidentInvited publishes resident.invited events.
func (p *EventPublisher) PublishResidentInvited(ctx context.Context, event domain.ResidentInvitedEvent) error {
	payload := struct {
		UserID     string    `json:"user_id"`
		Email      string    `json:"email"`
		ComplexID  string    `json:"complex_id,omitempty"`
		BuildingID string    `json:"building_id,omitempty"`
		InvitedBy  string    `json:"invited_by"`
		InvitedAt  time.Time `json:"invited_at"`
	}{
		UserID:     event.UserID,
		Email:      logger.MaskEmail(event.Email),
		ComplexID:  event.ComplexID,
		BuildingID: event.BuildingID,
		InvitedBy:  event.InvitedBy,
		InvitedAt:  event.InvitedAt.UTC(),
	}

	return p.publish(ctx, "resident.invited", event.UserID, event.InvitedAt, payload)
}

// PublishQRIssued publishes qr.issued events. The token itself never leaves
// the database, only its issuance window.
func (p *EventPublisher) PublishQRIssued(ctx context.Context, event domain.QRIssuedEvent) error {
	payload := struct {
		OwnerID  string    `json:"owner_id"`
		Reissued bool      `json:"reissued"`
		IssuedBy string    `json:"issued_by"`
		IssuedAt time.Time `json:"issued_at"`
		Expires  time.Time `json:"expires_at"`
	}{
		OwnerID:  event.OwnerID,
		Reissued: event.Reissued,
		IssuedBy: event.IssuedBy,
		IssuedAt: event.IssuedAt.UTC(),
		Expires:  event.Expires.UTC(),
	}

	return p.publish(ctx, "qr.issued", event.OwnerID, event.IssuedAt, payload)
}

// PublishMenuToggled publishes menu.toggled events.
func (p *EventPublisher) PublishMenuToggled(ctx context.Context, event domain.MenuToggledEvent) error {
	payload := struct {
		OwnerRole  domain.RoleKey `json:"owner_role"`
		TargetRole domain.RoleKey `json:"target_role"`
		MenuKey    string         `json:"menu_key"`
		Enabled    bool           `json:"enabled"`
		ChangedBy  string         `json:"changed_by"`
		ChangedAt  time.Time      `json:"changed_at"`
	}{
		OwnerRole:  event.OwnerRole,
		TargetRole: event.TargetRole,
		MenuKey:    event.MenuKey,
		Enabled:    event.Enabled,
		ChangedBy:  event.ChangedBy,
		ChangedAt:  event.ChangedAt.UTC(),
	}

	return p.publish(ctx, "menu.toggled", event.ChangedBy, event.ChangedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
