package domain

import "time"

// AuditEvent is the persisted activity-log record behind every published
// event.
type AuditEvent struct {
	ID        string
	ActorID   *string
	Action    string
	Entity    string
	Payload   map[string]any
	CreatedAt time.Time
}

// AdminAssignedEvent is emitted when an admin role is granted.
type AdminAssignedEvent struct {
	UserID     string
	Email      string
	Role       RoleKey
	ComplexID  string
	BuildingID string
	AssignedBy string
	AssignedAt time.Time
}

// ResidentInvitedEvent is emitted when a resident invitation is issued.
type ResidentInvitedEvent struct {
	UserID     string
	Email      string
	ComplexID  string
	BuildingID string
	InvitedBy  string
	InvitedAt  time.Time
}

// QRIssuedEvent is emitted on first issuance and on every reissue.
type QRIssuedEvent struct {
	OwnerID  string
	Token    string
	Reissued bool
	IssuedBy string
	IssuedAt time.Time
	Expires  time.Time
}

// MenuToggledEvent is emitted for each persisted menu configuration change.
type MenuToggledEvent struct {
	OwnerRole  RoleKey
	TargetRole RoleKey
	MenuKey    string
	Enabled    bool
	ChangedBy  string
	ChangedAt  time.Time
}
