package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/transport/http/middleware"
	"github.com/hyeonbit/complex-admin/internal/usecase"
)

// MenuConfigHandler serves the menu management board and toggles.
type MenuConfigHandler struct {
	menus *usecase.MenuConfigService
}

// NewMenuConfigHandler constructs a MenuConfigHandler.
func NewMenuConfigHandler(menus *usecase.MenuConfigService) *MenuConfigHandler {
	return &MenuConfigHandler{menus: menus}
}

func menuErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
		{Err: usecase.ErrTargetNotManageable, Status: http.StatusForbidden, Message: "target role not manageable"},
		{Err: domain.ErrUnknownMenuKey, Status: http.StatusBadRequest, Message: "unknown menu key"},
	}
}

// Board handles GET /menu-config.
func (h *MenuConfigHandler) Board(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	board, err := h.menus.Board(c.Request.Context(), actor)
	if err != nil {
		RespondWithMappedError(c, err, menuErrorCases(), http.StatusInternalServerError, "failed to load menu board")
		return
	}

	response := MenuBoardResponse{
		Rows:    make([]MenuRowPayload, 0, len(board.Rows)),
		Columns: make([]string, 0, len(board.Columns)),
		Configs: make(map[string]map[string]bool, len(board.Configs)),
	}
	for _, row := range board.Rows {
		response.Rows = append(response.Rows, MenuRowPayload{
			Key:    row.Key,
			Label:  row.Label,
			Depth:  row.Depth,
			Hidden: row.Hidden,
		})
	}
	for _, column := range board.Columns {
		response.Columns = append(response.Columns, string(column))
	}
	for target, config := range board.Configs {
		response.Configs[string(target)] = config
	}

	c.JSON(http.StatusOK, response)
}

// Effective handles GET /menu-config/effective.
func (h *MenuConfigHandler) Effective(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	target := actor.Role
	if raw := c.Query("target_role"); raw != "" {
		parsed, valid := domain.ParseRole(raw)
		if !valid {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown role"))
			return
		}
		if parsed != actor.Role && !domain.CanManage(actor.Role, parsed) {
			c.JSON(http.StatusForbidden, NewErrorResponse(c, "target role not manageable"))
			return
		}
		target = parsed
	}

	config, err := h.menus.EffectiveConfig(c.Request.Context(), target)
	if err != nil {
		RespondWithMappedError(c, err, menuErrorCases(), http.StatusInternalServerError, "failed to load menu config")
		return
	}

	c.JSON(http.StatusOK, EffectiveMenuResponse{TargetRole: string(target), Config: config})
}

func parseToggle(req MenuToggleRequest) (usecase.ToggleInput, bool) {
	role, valid := domain.ParseRole(req.TargetRole)
	if !valid || req.Enabled == nil {
		return usecase.ToggleInput{}, false
	}
	return usecase.ToggleInput{
		TargetRole: role,
		MenuKey:    req.MenuKey,
		Enabled:    *req.Enabled,
	}, true
}

// Toggle handles PUT /menu-config.
func (h *MenuConfigHandler) Toggle(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req MenuToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid toggle payload"))
		return
	}

	input, valid := parseToggle(req)
	if !valid {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown role"))
		return
	}

	applied, err := h.menus.Toggle(c.Request.Context(), actor, input)
	if err != nil {
		RespondWithMappedError(c, err, menuErrorCases(), http.StatusInternalServerError, "failed to apply toggle")
		return
	}

	c.JSON(http.StatusOK, MenuToggleResponse{Applied: toMenuToggles(applied)})
}

// BatchToggle handles PUT /menu-config/batch.
func (h *MenuConfigHandler) BatchToggle(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req MenuBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid batch payload"))
		return
	}

	inputs := make([]usecase.ToggleInput, 0, len(req.Items))
	for _, item := range req.Items {
		input, valid := parseToggle(item)
		if !valid {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown role"))
			return
		}
		inputs = append(inputs, input)
	}

	results, err := h.menus.BatchToggle(c.Request.Context(), actor, inputs)
	if err != nil {
		RespondWithMappedError(c, err, menuErrorCases(), http.StatusInternalServerError, "failed to process batch")
		return
	}

	response := MenuBatchResponse{Results: make([]MenuBatchItemResult, 0, len(results))}
	for _, result := range results {
		item := MenuBatchItemResult{
			TargetRole: string(result.TargetRole),
			MenuKey:    result.MenuKey,
			OK:         result.Err == nil,
			Applied:    toMenuToggles(result.Applied),
		}
		if result.Err != nil {
			item.Error = result.Err.Error()
		}
		response.Results = append(response.Results, item)
	}

	c.JSON(http.StatusOK, response)
}
