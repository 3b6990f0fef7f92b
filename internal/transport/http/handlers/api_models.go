package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadyResponse reports dependency readiness.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ComplexPayload is the API view of a complex.
type ComplexPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Region    *string   `json:"region,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ComplexCreateRequest defines the payload for creating a complex.
type ComplexCreateRequest struct {
	Name   string  `json:"name" binding:"required"`
	Region *string `json:"region"`
}

// BuildingPayload is the API view of a building.
type BuildingPayload struct {
	ID        string    `json:"id"`
	ComplexID string    `json:"complex_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// BuildingCreateRequest defines the payload for creating a building.
type BuildingCreateRequest struct {
	ComplexID string `json:"complex_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
}

// AdminAssignRequest defines the payload for granting an admin role.
type AdminAssignRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Role        string `json:"role" binding:"required"`
	ComplexID   string `json:"complex_id"`
	BuildingID  string `json:"building_id"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
}

// AdminAssignResponse reports the assignment outcome.
type AdminAssignResponse struct {
	UserID        string `json:"user_id"`
	Role          string `json:"role"`
	ComplexID     string `json:"complex_id,omitempty"`
	BuildingID    string `json:"building_id,omitempty"`
	EmailSent     bool   `json:"email_sent"`
	EmailType     string `json:"email_type,omitempty"`
	AlreadyExists bool   `json:"already_exists"`
}

// AdminPayload is the API view of an admin profile.
type AdminPayload struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	ComplexID   *string   `json:"complex_id,omitempty"`
	BuildingID  *string   `json:"building_id,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ResidentInviteRequest defines one resident invitation.
type ResidentInviteRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	UnitLabel   string `json:"unit_label"`
	CarType     string `json:"car_type"`
	CarNumber   string `json:"car_number"`
	ComplexID   string `json:"complex_id"`
	BuildingID  string `json:"building_id" binding:"required"`
}

// ResidentInviteResponse reports the invitation outcome.
type ResidentInviteResponse struct {
	UserID        string `json:"user_id"`
	EmailSent     bool   `json:"email_sent"`
	EmailType     string `json:"email_type,omitempty"`
	AlreadyExists bool   `json:"already_exists"`
	QRIssued      bool   `json:"qr_issued"`
}

// BatchInviteRequest wraps up to 50 invitations.
type BatchInviteRequest struct {
	Items []ResidentInviteRequest `json:"items" binding:"required"`
}

// BatchInviteItemResult reports one batch item outcome.
type BatchInviteItemResult struct {
	Email         string `json:"email"`
	OK            bool   `json:"ok"`
	Error         string `json:"error,omitempty"`
	UserID        string `json:"user_id,omitempty"`
	EmailSent     bool   `json:"email_sent"`
	EmailType     string `json:"email_type,omitempty"`
	AlreadyExists bool   `json:"already_exists"`
}

// BatchInviteResponse aggregates the per-item outcomes.
type BatchInviteResponse struct {
	Results   []BatchInviteItemResult `json:"results"`
	Succeeded int                     `json:"succeeded"`
	Failed    int                     `json:"failed"`
}

// QRCredentialPayload is the API view of a vehicle credential.
type QRCredentialPayload struct {
	Payload   domain.QRPayload `json:"payload"`
	ExpiresAt time.Time        `json:"expires_at"`
	IsActive  bool             `json:"is_active"`
}

// ResidentPayload is the API view of a resident with its latest credential.
type ResidentPayload struct {
	ID          string               `json:"id"`
	DisplayName string               `json:"display_name,omitempty"`
	Phone       string               `json:"phone,omitempty"`
	ComplexID   *string              `json:"complex_id,omitempty"`
	BuildingID  *string              `json:"building_id,omitempty"`
	UnitLabel   string               `json:"unit_label,omitempty"`
	CarType     string               `json:"car_type,omitempty"`
	CarNumber   string               `json:"car_number,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	QR          *QRCredentialPayload `json:"qr,omitempty"`
}

// ReissueRequest identifies the resident whose credential rotates.
type ReissueRequest struct {
	ResidentID string `json:"resident_id" binding:"required"`
}

// OnboardingRequest defines the resident's self-service profile completion.
type OnboardingRequest struct {
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	UnitLabel   string `json:"unit_label"`
	HasCar      bool   `json:"has_car"`
	CarType     string `json:"car_type"`
	CarNumber   string `json:"car_number"`
}

// OnboardingResponse reports the completed profile. QR is absent for
// residents without a vehicle credential.
type OnboardingResponse struct {
	Resident ResidentPayload      `json:"resident"`
	QR       *QRCredentialPayload `json:"qr,omitempty"`
	Issued   bool                 `json:"issued"`
}

// MenuRowPayload is one flattened menu entry on the management board.
type MenuRowPayload struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Depth  int    `json:"depth"`
	Hidden bool   `json:"hidden,omitempty"`
}

// MenuBoardResponse is the management board view.
type MenuBoardResponse struct {
	Rows    []MenuRowPayload           `json:"rows"`
	Columns []string                   `json:"columns"`
	Configs map[string]map[string]bool `json:"configs"`
}

// MenuToggleRequest defines one board change.
type MenuToggleRequest struct {
	TargetRole string `json:"target_role" binding:"required"`
	MenuKey    string `json:"menu_key" binding:"required"`
	Enabled    *bool  `json:"enabled" binding:"required"`
}

// MenuTogglePayload is one persisted cascade entry.
type MenuTogglePayload struct {
	MenuKey string `json:"menu_key"`
	Enabled bool   `json:"enabled"`
}

// MenuToggleResponse lists the persisted cascade, toggled key first.
type MenuToggleResponse struct {
	Applied []MenuTogglePayload `json:"applied"`
}

// MenuBatchRequest wraps several board changes.
type MenuBatchRequest struct {
	Items []MenuToggleRequest `json:"items" binding:"required"`
}

// MenuBatchItemResult reports one batch change outcome.
type MenuBatchItemResult struct {
	TargetRole string              `json:"target_role"`
	MenuKey    string              `json:"menu_key"`
	OK         bool                `json:"ok"`
	Error      string              `json:"error,omitempty"`
	Applied    []MenuTogglePayload `json:"applied,omitempty"`
}

// MenuBatchResponse aggregates the per-item outcomes.
type MenuBatchResponse struct {
	Results []MenuBatchItemResult `json:"results"`
}

// EffectiveMenuResponse is the merged enablement map for one role.
type EffectiveMenuResponse struct {
	TargetRole string          `json:"target_role"`
	Config     map[string]bool `json:"config"`
}

// CustomizationPayload is the API view of the global customization document.
type CustomizationPayload struct {
	Menus     []domain.MenuNode                   `json:"menus"`
	Pages     map[string]domain.PageCustomization `json:"pages,omitempty"`
	UpdatedAt time.Time                           `json:"updated_at"`
}

// CustomizationUpdateRequest replaces the global document.
type CustomizationUpdateRequest struct {
	Menus []domain.MenuNode                   `json:"menus"`
	Pages map[string]domain.PageCustomization `json:"pages"`
}

// NewsCreateRequest defines the payload for publishing a news post.
type NewsCreateRequest struct {
	ComplexID string `json:"complex_id"`
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content"`
}

// NewsPayload is the API view of a news post.
type NewsPayload struct {
	ID        string    `json:"id"`
	ComplexID *string   `json:"complex_id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	CreatedBy *string   `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AdCreateRequest defines the payload for publishing an ad item.
type AdCreateRequest struct {
	ComplexID string `json:"complex_id"`
	Title     string `json:"title" binding:"required"`
	Body      string `json:"body"`
	ImageURL  string `json:"image_url"`
}

// AdPayload is the API view of an ad item.
type AdPayload struct {
	ID        string    `json:"id"`
	ComplexID *string   `json:"complex_id,omitempty"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedBy *string   `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SummaryResponse aggregates dashboard counts for a complex.
type SummaryResponse struct {
	ComplexID     string `json:"complex_id"`
	BuildingCount int    `json:"building_count"`
	ResidentCount int    `json:"resident_count"`
	GuardCount    int    `json:"guard_count"`
}

// AuditEventPayload is the API view of one activity-log entry.
type AuditEventPayload struct {
	ID        string         `json:"id"`
	ActorID   *string        `json:"actor_id,omitempty"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func metadataString(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	if value, ok := metadata[key].(string); ok {
		return value
	}
	return ""
}

func toResidentPayload(user domain.User, qr *domain.QRCredential) ResidentPayload {
	payload := ResidentPayload{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Phone:       user.Phone,
		ComplexID:   user.ComplexID,
		BuildingID:  user.BuildingID,
		UnitLabel:   metadataString(user.Metadata, "unitLabel"),
		CarType:     metadataString(user.Metadata, "carType"),
		CarNumber:   metadataString(user.Metadata, "carNumber"),
		CreatedAt:   user.CreatedAt,
	}
	if qr != nil {
		payload.QR = &QRCredentialPayload{
			Payload:   qr.Payload,
			ExpiresAt: qr.ExpiresAt,
			IsActive:  qr.IsActive,
		}
	}
	return payload
}

func toMenuToggles(toggles []domain.MenuToggle) []MenuTogglePayload {
	payload := make([]MenuTogglePayload, 0, len(toggles))
	for _, toggle := range toggles {
		payload = append(payload, MenuTogglePayload{MenuKey: toggle.MenuKey, Enabled: toggle.Enabled})
	}
	return payload
}
