package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/transport/http/middleware"
	"github.com/hyeonbit/complex-admin/internal/usecase"
)

// CustomizationHandler serves the global customization document.
type CustomizationHandler struct {
	customizations *usecase.CustomizationService
}

// NewCustomizationHandler constructs a CustomizationHandler.
func NewCustomizationHandler(customizations *usecase.CustomizationService) *CustomizationHandler {
	return &CustomizationHandler{customizations: customizations}
}

func customizationErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
		{Err: usecase.ErrDuplicateMenuKey, Status: http.StatusBadRequest, Message: "duplicate menu key"},
		{Err: domain.ErrUnknownMenuKey, Status: http.StatusBadRequest, Message: "menu key is required"},
	}
}

// Get handles GET /admin/customization.
func (h *CustomizationHandler) Get(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	doc, err := h.customizations.Get(c.Request.Context(), actor)
	if err != nil {
		RespondWithMappedError(c, err, customizationErrorCases(), http.StatusInternalServerError, "failed to load customization")
		return
	}

	c.JSON(http.StatusOK, CustomizationPayload{
		Menus:     doc.MenuTree(),
		Pages:     doc.Pages,
		UpdatedAt: doc.UpdatedAt,
	})
}

// Update handles PUT /admin/customization.
func (h *CustomizationHandler) Update(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req CustomizationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid customization payload"))
		return
	}

	doc, err := h.customizations.Update(c.Request.Context(), actor, usecase.UpdateCustomizationInput{
		Menus: req.Menus,
		Pages: req.Pages,
	})
	if err != nil {
		RespondWithMappedError(c, err, customizationErrorCases(), http.StatusInternalServerError, "failed to update customization")
		return
	}

	c.JSON(http.StatusOK, CustomizationPayload{
		Menus:     doc.MenuTree(),
		Pages:     doc.Pages,
		UpdatedAt: doc.UpdatedAt,
	})
}
