package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hyeonbit/complex-admin/internal/usecase"
)

// AuditHandler serves the activity log.
type AuditHandler struct {
	audit *usecase.AuditService
}

// NewAuditHandler constructs an AuditHandler.
func NewAuditHandler(audit *usecase.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List handles GET /audit-events.
func (h *AuditHandler) List(c *gin.Context) {
	events, err := h.audit.ListRecent(c.Request.Context(), queryLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list audit events"))
		return
	}

	payload := make([]AuditEventPayload, 0, len(events))
	for _, event := range events {
		payload = append(payload, AuditEventPayload{
			ID:        event.ID,
			ActorID:   event.ActorID,
			Action:    event.Action,
			Entity:    event.Entity,
			Payload:   event.Payload,
			CreatedAt: event.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, payload)
}
