package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/transport/http/middleware"
	"github.com/hyeonbit/complex-admin/internal/usecase"
)

// ContentHandler serves news posts and ad items.
type ContentHandler struct {
	content *usecase.ContentService
}

// NewContentHandler constructs a ContentHandler.
func NewContentHandler(content *usecase.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

func contentErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
		{Err: usecase.ErrNameRequired, Status: http.StatusBadRequest, Message: "title is required"},
		{Err: domain.ErrScopeNotConfigured, Status: http.StatusForbidden, Message: "actor scope not configured"},
		{Err: domain.ErrForeignComplex, Status: http.StatusForbidden, Message: "operation targets another complex"},
	}
}

// CreateNews handles POST /news.
func (h *ContentHandler) CreateNews(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req NewsCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid news payload"))
		return
	}

	post, err := h.content.CreateNews(c.Request.Context(), actor, usecase.CreateNewsInput{
		ComplexID: req.ComplexID,
		Title:     req.Title,
		Content:   req.Content,
	})
	if err != nil {
		RespondWithMappedError(c, err, contentErrorCases(), http.StatusInternalServerError, "failed to create news")
		return
	}

	c.JSON(http.StatusCreated, NewsPayload{
		ID:        post.ID,
		ComplexID: post.ComplexID,
		Title:     post.Title,
		Content:   post.Content,
		CreatedBy: post.CreatedBy,
		CreatedAt: post.CreatedAt,
	})
}

// ListNews handles GET /news.
func (h *ContentHandler) ListNews(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	posts, err := h.content.ListNews(c.Request.Context(), actor, c.Query("complex_id"), c.Query("search"), queryLimit(c))
	if err != nil {
		RespondWithMappedError(c, err, contentErrorCases(), http.StatusInternalServerError, "failed to list news")
		return
	}

	payload := make([]NewsPayload, 0, len(posts))
	for _, post := range posts {
		payload = append(payload, NewsPayload{
			ID:        post.ID,
			ComplexID: post.ComplexID,
			Title:     post.Title,
			Content:   post.Content,
			CreatedBy: post.CreatedBy,
			CreatedAt: post.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, payload)
}

// CreateAd handles POST /ads-items.
func (h *ContentHandler) CreateAd(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req AdCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid ad payload"))
		return
	}

	item, err := h.content.CreateAd(c.Request.Context(), actor, usecase.CreateAdInput{
		ComplexID: req.ComplexID,
		Title:     req.Title,
		Body:      req.Body,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		RespondWithMappedError(c, err, contentErrorCases(), http.StatusInternalServerError, "failed to create ad")
		return
	}

	c.JSON(http.StatusCreated, AdPayload{
		ID:        item.ID,
		ComplexID: item.ComplexID,
		Title:     item.Title,
		Body:      item.Body,
		ImageURL:  item.ImageURL,
		CreatedBy: item.CreatedBy,
		CreatedAt: item.CreatedAt,
	})
}

// ListAds handles GET /ads-items.
func (h *ContentHandler) ListAds(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	items, err := h.content.ListAds(c.Request.Context(), actor, c.Query("complex_id"), c.Query("search"), queryLimit(c))
	if err != nil {
		RespondWithMappedError(c, err, contentErrorCases(), http.StatusInternalServerError, "failed to list ads")
		return
	}

	payload := make([]AdPayload, 0, len(items))
	for _, item := range items {
		payload = append(payload, AdPayload{
			ID:        item.ID,
			ComplexID: item.ComplexID,
			Title:     item.Title,
			Body:      item.Body,
			ImageURL:  item.ImageURL,
			CreatedBy: item.CreatedBy,
			CreatedAt: item.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, payload)
}
