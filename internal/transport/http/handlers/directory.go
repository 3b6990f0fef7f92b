package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/transport/http/middleware"
	"github.com/hyeonbit/complex-admin/internal/usecase"
)

// DirectoryHandler serves complexes, buildings, and the dashboard summary.
type DirectoryHandler struct {
	directory *usecase.DirectoryService
}

// NewDirectoryHandler constructs a DirectoryHandler.
func NewDirectoryHandler(directory *usecase.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return 0
	}
	return limit
}

func directoryErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
		{Err: usecase.ErrNameRequired, Status: http.StatusBadRequest, Message: "name is required"},
		{Err: usecase.ErrComplexNotFound, Status: http.StatusNotFound, Message: "complex not found"},
		{Err: usecase.ErrBuildingNotFound, Status: http.StatusNotFound, Message: "building not found"},
		{Err: domain.ErrScopeNotConfigured, Status: http.StatusForbidden, Message: "actor scope not configured"},
		{Err: domain.ErrForeignComplex, Status: http.StatusForbidden, Message: "operation targets another complex"},
		{Err: domain.ErrForeignBuilding, Status: http.StatusForbidden, Message: "operation targets another building"},
	}
}

// CreateComplex handles POST /complexes.
func (h *DirectoryHandler) CreateComplex(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req ComplexCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid complex payload"))
		return
	}

	complex, err := h.directory.CreateComplex(c.Request.Context(), actor, usecase.CreateComplexInput{
		Name:   req.Name,
		Region: req.Region,
	})
	if err != nil {
		RespondWithMappedError(c, err, directoryErrorCases(), http.StatusInternalServerError, "failed to create complex")
		return
	}

	c.JSON(http.StatusCreated, ComplexPayload{
		ID:        complex.ID,
		Name:      complex.Name,
		Region:    complex.Region,
		CreatedAt: complex.CreatedAt,
	})
}

// ListComplexes handles GET /complexes.
func (h *DirectoryHandler) ListComplexes(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	complexes, err := h.directory.ListComplexes(c.Request.Context(), actor, c.Query("search"), queryLimit(c))
	if err != nil {
		RespondWithMappedError(c, err, directoryErrorCases(), http.StatusInternalServerError, "failed to list complexes")
		return
	}

	payload := make([]ComplexPayload, 0, len(complexes))
	for _, complex := range complexes {
		payload = append(payload, ComplexPayload{
			ID:        complex.ID,
			Name:      complex.Name,
			Region:    complex.Region,
			CreatedAt: complex.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, payload)
}

// CreateBuilding handles POST /buildings.
func (h *DirectoryHandler) CreateBuilding(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req BuildingCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid building payload"))
		return
	}

	building, err := h.directory.CreateBuilding(c.Request.Context(), actor, usecase.CreateBuildingInput{
		ComplexID: req.ComplexID,
		Name:      req.Name,
	})
	if err != nil {
		RespondWithMappedError(c, err, directoryErrorCases(), http.StatusInternalServerError, "failed to create building")
		return
	}

	c.JSON(http.StatusCreated, BuildingPayload{
		ID:        building.ID,
		ComplexID: building.ComplexID,
		Name:      building.Name,
		CreatedAt: building.CreatedAt,
	})
}

// ListBuildings handles GET /buildings.
func (h *DirectoryHandler) ListBuildings(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	buildings, err := h.directory.ListBuildings(c.Request.Context(), actor, c.Query("complex_id"), c.Query("search"), queryLimit(c))
	if err != nil {
		RespondWithMappedError(c, err, directoryErrorCases(), http.StatusInternalServerError, "failed to list buildings")
		return
	}

	payload := make([]BuildingPayload, 0, len(buildings))
	for _, building := range buildings {
		payload = append(payload, BuildingPayload{
			ID:        building.ID,
			ComplexID: building.ComplexID,
			Name:      building.Name,
			CreatedAt: building.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, payload)
}

// Summary handles GET /dashboard/complex-summary.
func (h *DirectoryHandler) Summary(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	summary, err := h.directory.Summary(c.Request.Context(), actor, c.Query("complex_id"))
	if err != nil {
		RespondWithMappedError(c, err, directoryErrorCases(), http.StatusInternalServerError, "failed to load summary")
		return
	}

	c.JSON(http.StatusOK, SummaryResponse{
		ComplexID:     summary.ComplexID,
		BuildingCount: summary.BuildingCount,
		ResidentCount: summary.ResidentCount,
		GuardCount:    summary.GuardCount,
	})
}
