package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/transport/http/middleware"
	"github.com/hyeonbit/complex-admin/internal/usecase"
)

// ResidentHandler serves resident listings, invitations, credential reissue,
// and onboarding.
type ResidentHandler struct {
	residents *usecase.ResidentService
}

// NewResidentHandler constructs a ResidentHandler.
func NewResidentHandler(residents *usecase.ResidentService) *ResidentHandler {
	return &ResidentHandler{residents: residents}
}

func residentErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
		{Err: usecase.ErrEmailRequired, Status: http.StatusBadRequest, Message: "email is required"},
		{Err: usecase.ErrScopeConflict, Status: http.StatusConflict, Message: "complex does not match building"},
		{Err: usecase.ErrComplexNotFound, Status: http.StatusNotFound, Message: "complex not found"},
		{Err: usecase.ErrBuildingNotFound, Status: http.StatusNotFound, Message: "building not found"},
		{Err: usecase.ErrResidentNotFound, Status: http.StatusNotFound, Message: "resident not found"},
		{Err: usecase.ErrRateLimited, Status: http.StatusTooManyRequests, Message: "too many attempts"},
		{Err: usecase.ErrBatchTooLarge, Status: http.StatusBadRequest, Message: "batch exceeds maximum size"},
		{Err: domain.ErrScopeNotConfigured, Status: http.StatusForbidden, Message: "actor scope not configured"},
		{Err: domain.ErrForeignComplex, Status: http.StatusForbidden, Message: "operation targets another complex"},
		{Err: domain.ErrForeignBuilding, Status: http.StatusForbidden, Message: "operation targets another building"},
	}
}

// List handles GET /residents.
func (h *ResidentHandler) List(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	residents, err := h.residents.ListResidents(c.Request.Context(), actor, c.Query("search"), queryLimit(c))
	if err != nil {
		RespondWithMappedError(c, err, residentErrorCases(), http.StatusInternalServerError, "failed to list residents")
		return
	}

	payload := make([]ResidentPayload, 0, len(residents))
	for _, resident := range residents {
		payload = append(payload, toResidentPayload(resident.User, resident.QR))
	}
	c.JSON(http.StatusOK, payload)
}

func toInviteInput(req ResidentInviteRequest) usecase.InviteResidentInput {
	return usecase.InviteResidentInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		UnitLabel:   req.UnitLabel,
		CarType:     req.CarType,
		CarNumber:   req.CarNumber,
		ComplexID:   req.ComplexID,
		BuildingID:  req.BuildingID,
	}
}

// Invite handles POST /residents.
func (h *ResidentHandler) Invite(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req ResidentInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid invitation payload"))
		return
	}

	result, err := h.residents.InviteResident(c.Request.Context(), actor, toInviteInput(req))
	if err != nil {
		RespondWithMappedError(c, err, residentErrorCases(), http.StatusInternalServerError, "failed to invite resident")
		return
	}

	status := http.StatusCreated
	if result.AlreadyExists {
		status = http.StatusOK
	}

	c.JSON(status, ResidentInviteResponse{
		UserID:        result.UserID,
		EmailSent:     result.EmailSent,
		EmailType:     result.EmailType,
		AlreadyExists: result.AlreadyExists,
		QRIssued:      result.QRIssued,
	})
}

// BatchInvite handles POST /residents/batch.
func (h *ResidentHandler) BatchInvite(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req BatchInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid batch payload"))
		return
	}

	inputs := make([]usecase.InviteResidentInput, 0, len(req.Items))
	for _, item := range req.Items {
		inputs = append(inputs, toInviteInput(item))
	}

	results, err := h.residents.BatchInvite(c.Request.Context(), actor, inputs)
	if err != nil {
		RespondWithMappedError(c, err, residentErrorCases(), http.StatusInternalServerError, "failed to process batch")
		return
	}

	response := BatchInviteResponse{Results: make([]BatchInviteItemResult, 0, len(results))}
	for _, result := range results {
		item := BatchInviteItemResult{
			Email:         result.Email,
			OK:            result.Err == nil,
			UserID:        result.Result.UserID,
			EmailSent:     result.Result.EmailSent,
			EmailType:     result.Result.EmailType,
			AlreadyExists: result.Result.AlreadyExists,
		}
		if result.Err != nil {
			item.Error = result.Err.Error()
			response.Failed++
		} else {
			response.Succeeded++
		}
		response.Results = append(response.Results, item)
	}

	c.JSON(http.StatusOK, response)
}

// Reissue handles POST /residents/reissue.
func (h *ResidentHandler) Reissue(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req ReissueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reissue payload"))
		return
	}

	credential, err := h.residents.ReissueCredential(c.Request.Context(), actor, req.ResidentID)
	if err != nil {
		RespondWithMappedError(c, err, residentErrorCases(), http.StatusInternalServerError, "failed to reissue credential")
		return
	}

	c.JSON(http.StatusOK, QRCredentialPayload{
		Payload:   credential.Payload,
		ExpiresAt: credential.ExpiresAt,
		IsActive:  credential.IsActive,
	})
}

// CompleteOnboarding handles POST /onboarding/complete.
func (h *ResidentHandler) CompleteOnboarding(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req OnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid onboarding payload"))
		return
	}

	result, err := h.residents.CompleteOnboarding(c.Request.Context(), actor, usecase.OnboardingInput{
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		UnitLabel:   req.UnitLabel,
		HasCar:      req.HasCar,
		CarType:     req.CarType,
		CarNumber:   req.CarNumber,
	})
	if err != nil {
		RespondWithMappedError(c, err, residentErrorCases(), http.StatusInternalServerError, "failed to complete onboarding")
		return
	}

	response := OnboardingResponse{
		Resident: toResidentPayload(result.User, nil),
		Issued:   result.Issued,
	}
	if result.Credential != nil {
		response.QR = &QRCredentialPayload{
			Payload:   result.Credential.Payload,
			ExpiresAt: result.Credential.ExpiresAt,
			IsActive:  result.Credential.IsActive,
		}
	}
	c.JSON(http.StatusOK, response)
}
