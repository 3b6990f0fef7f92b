package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/core/port"
	"github.com/hyeonbit/complex-admin/internal/repository"
)

// ErrDuplicateMenuKey indicates the submitted menu tree reuses a key.
var ErrDuplicateMenuKey = errors.New("duplicate menu key")

// UpdateCustomizationInput captures the SUPER-editable global document.
type UpdateCustomizationInput struct {
	Menus []domain.MenuNode
	Pages map[string]domain.PageCustomization
}

// CustomizationService owns the global customization document.
type CustomizationService struct {
	customizations port.CustomizationRepository
	audit          *AuditService
	logger         *zap.Logger
}

// NewCustomizationService constructs a CustomizationService.
func NewCustomizationService(customizations port.CustomizationRepository, audit *AuditService, logger *zap.Logger) *CustomizationService {
	return &CustomizationService{customizations: customizations, audit: audit, logger: logger}
}

// Get returns the stored document. The menu tree falls back to the built-in
// default when never customized.
func (s *CustomizationService) Get(ctx context.Context, actor domain.Actor) (*domain.AdminCustomization, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	doc, err := s.customizations.Get(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("load customization: %w", err)
		}
		doc = &domain.AdminCustomization{ID: domain.CustomizationID}
	}
	return doc, nil
}

func validateMenuKeys(nodes []domain.MenuNode, seen map[string]struct{}) error {
	for _, node := range nodes {
		if node.Key == "" {
			return domain.ErrUnknownMenuKey
		}
		if _, dup := seen[node.Key]; dup {
			return ErrDuplicateMenuKey
		}
		seen[node.Key] = struct{}{}
		if len(node.Children) > 0 {
			if err := validateMenuKeys(node.Children, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// Update replaces the global document. SUPER only.
func (s *CustomizationService) Update(ctx context.Context, actor domain.Actor, input UpdateCustomizationInput) (*domain.AdminCustomization, error) {
	if actor.Role != domain.RoleSuper {
		return nil, ErrPermissionDenied
	}

	if len(input.Menus) > 0 {
		if err := validateMenuKeys(input.Menus, make(map[string]struct{})); err != nil {
			return nil, err
		}
	}

	doc := domain.AdminCustomization{
		ID:    domain.CustomizationID,
		Menus: input.Menus,
		Pages: input.Pages,
	}
	if err := s.customizations.Upsert(ctx, doc); err != nil {
		return nil, fmt.Errorf("upsert customization: %w", err)
	}

	s.audit.Record(ctx, actor.UserID, "customization.updated", "admin_customizations", map[string]any{
		"menu_count": len(input.Menus),
		"page_count": len(input.Pages),
	})

	return &doc, nil
}
