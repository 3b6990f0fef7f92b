package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/transport/http/middleware"
	"github.com/hyeonbit/complex-admin/internal/usecase"
)

// AdminHandler serves admin role assignment.
type AdminHandler struct {
	admins *usecase.AdminService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(admins *usecase.AdminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

func adminErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
		{Err: usecase.ErrRoleNotAssignable, Status: http.StatusBadRequest, Message: "role not assignable"},
		{Err: usecase.ErrEmailRequired, Status: http.StatusBadRequest, Message: "email is required"},
		{Err: usecase.ErrScopeConflict, Status: http.StatusConflict, Message: "complex does not match building"},
		{Err: usecase.ErrComplexNotFound, Status: http.StatusNotFound, Message: "complex not found"},
		{Err: usecase.ErrBuildingNotFound, Status: http.StatusNotFound, Message: "building not found"},
		{Err: usecase.ErrRateLimited, Status: http.StatusTooManyRequests, Message: "too many attempts"},
		{Err: domain.ErrScopeNotConfigured, Status: http.StatusBadRequest, Message: "scope required for role"},
		{Err: domain.ErrForeignComplex, Status: http.StatusForbidden, Message: "operation targets another complex"},
		{Err: domain.ErrForeignBuilding, Status: http.StatusForbidden, Message: "operation targets another building"},
	}
}

// Assign handles POST /admins/assign.
func (h *AdminHandler) Assign(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req AdminAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid assignment payload"))
		return
	}

	role, valid := domain.ParseRole(req.Role)
	if !valid {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown role"))
		return
	}

	result, err := h.admins.AssignAdmin(c.Request.Context(), actor, usecase.AssignAdminInput{
		Email:       req.Email,
		Role:        role,
		ComplexID:   req.ComplexID,
		BuildingID:  req.BuildingID,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
	})
	if err != nil {
		RespondWithMappedError(c, err, adminErrorCases(), http.StatusInternalServerError, "failed to assign admin")
		return
	}

	status := http.StatusCreated
	if result.AlreadyExists {
		status = http.StatusOK
	}

	c.JSON(status, AdminAssignResponse{
		UserID:        result.UserID,
		Role:          string(result.Role),
		ComplexID:     result.ComplexID,
		BuildingID:    result.BuildingID,
		EmailSent:     result.EmailSent,
		EmailType:     result.EmailType,
		AlreadyExists: result.AlreadyExists,
	})
}

// List handles GET /admins.
func (h *AdminHandler) List(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	filter := domain.ScopeFilter{ComplexID: c.Query("complex_id"), BuildingID: c.Query("building_id")}
	admins, err := h.admins.ListAdmins(c.Request.Context(), actor, filter, queryLimit(c))
	if err != nil {
		RespondWithMappedError(c, err, adminErrorCases(), http.StatusInternalServerError, "failed to list admins")
		return
	}

	payload := make([]AdminPayload, 0, len(admins))
	for _, admin := range admins {
		payload = append(payload, AdminPayload{
			ID:          admin.ID,
			Role:        string(admin.RoleID),
			ComplexID:   admin.ComplexID,
			BuildingID:  admin.BuildingID,
			DisplayName: admin.DisplayName,
			Phone:       admin.Phone,
			CreatedAt:   admin.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, payload)
}
