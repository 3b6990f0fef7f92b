package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/core/port"
)

// CreateNewsInput captures one news post.
type CreateNewsInput struct {
	ComplexID string
	Title     string
	Content   string
}

// CreateAdInput captures one ad item.
type CreateAdInput struct {
	ComplexID string
	Title     string
	Body      string
	ImageURL  string
}

// ContentService manages news posts and ad items.
type ContentService struct {
	news   port.NewsRepository
	ads    port.AdRepository
	access *AccessService
	audit  *AuditService
	logger *zap.Logger
}

// NewContentService constructs a ContentService.
func NewContentService(news port.NewsRepository, ads port.AdRepository, access *AccessService, audit *AuditService, logger *zap.Logger) *ContentService {
	return &ContentService{news: news, ads: ads, access: access, audit: audit, logger: logger}
}

func (s *ContentService) assertComplex(ctx context.Context, actor domain.Actor, complexID string) error {
	if !actor.Role.IsAdmin() {
		return ErrPermissionDenied
	}
	if complexID == "" {
		// Global content is SUPER territory.
		if actor.Role != domain.RoleSuper {
			return ErrPermissionDenied
		}
		return nil
	}
	return s.access.AssertScope(ctx, actor, domain.ScopeInput{ComplexID: complexID})
}

// CreateNews publishes a news post in the actor's scope.
func (s *ContentService) CreateNews(ctx context.Context, actor domain.Actor, input CreateNewsInput) (*domain.NewsPost, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrNameRequired
	}

	complexID := strings.TrimSpace(input.ComplexID)
	if err := s.assertComplex(ctx, actor, complexID); err != nil {
		return nil, err
	}

	post := domain.NewsPost{
		ID:      uuid.NewString(),
		Title:   title,
		Content: strings.TrimSpace(input.Content),
	}
	if complexID != "" {
		post.ComplexID = &complexID
	}
	createdBy := actor.UserID
	post.CreatedBy = &createdBy

	if err := s.news.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create news: %w", err)
	}

	s.audit.Record(ctx, actor.UserID, "news.created", "news_posts", map[string]any{
		"news_id":    post.ID,
		"complex_id": complexID,
		"title":      post.Title,
	})

	return &post, nil
}

// ListNews returns news visible to the actor's complex.
func (s *ContentService) ListNews(ctx context.Context, actor domain.Actor, complexID, search string, limit int) ([]domain.NewsPost, error) {
	complexID = strings.TrimSpace(complexID)
	if complexID == "" && actor.Role != domain.RoleSuper {
		scope, err := s.access.ResolveScope(ctx, actor)
		if err != nil {
			return nil, err
		}
		complexID = scope.ComplexID
	}
	return s.news.List(ctx, complexID, search, limit)
}

// CreateAd publishes an ad item in the actor's scope.
func (s *ContentService) CreateAd(ctx context.Context, actor domain.Actor, input CreateAdInput) (*domain.AdItem, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrNameRequired
	}

	complexID := strings.TrimSpace(input.ComplexID)
	if err := s.assertComplex(ctx, actor, complexID); err != nil {
		return nil, err
	}

	item := domain.AdItem{
		ID:    uuid.NewString(),
		Title: title,
		Body:  strings.TrimSpace(input.Body),
	}
	if complexID != "" {
		item.ComplexID = &complexID
	}
	if imageURL := strings.TrimSpace(input.ImageURL); imageURL != "" {
		item.ImageURL = &imageURL
	}
	createdBy := actor.UserID
	item.CreatedBy = &createdBy

	if err := s.ads.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create ad: %w", err)
	}

	s.audit.Record(ctx, actor.UserID, "ad.created", "ads_items", map[string]any{
		"ad_id":      item.ID,
		"complex_id": complexID,
		"title":      item.Title,
	})

	return &item, nil
}

// ListAds returns ad items visible to the actor's complex.
func (s *ContentService) ListAds(ctx context.Context, actor domain.Actor, complexID, search string, limit int) ([]domain.AdItem, error) {
	complexID = strings.TrimSpace(complexID)
	if complexID == "" && actor.Role != domain.RoleSuper {
		scope, err := s.access.ResolveScope(ctx, actor)
		if err != nil {
			return nil, err
		}
		complexID = scope.ComplexID
	}
	return s.ads.List(ctx, complexID, search, limit)
}
