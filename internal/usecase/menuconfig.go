package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/core/port"
	"github.com/hyeonbit/complex-admin/internal/repository"
)

// ErrTargetNotManageable indicates the actor may not configure the target role.
var ErrTargetNotManageable = errors.New("target role not manageable by actor")

// MenuBoard is the management view: every menu row plus the effective
// enablement per visible target column.
type MenuBoard struct {
	Rows    []domain.MenuRow
	Columns []domain.RoleKey
	Configs map[domain.RoleKey]map[string]bool
}

// ToggleInput is one requested change on the board.
type ToggleInput struct {
	TargetRole domain.RoleKey
	MenuKey    string
	Enabled    bool
}

// ToggleResult reports the outcome of one requested change. Applied lists the
// full cascade that was persisted, toggled key first.
type ToggleResult struct {
	TargetRole domain.RoleKey
	MenuKey    string
	Applied    []domain.MenuToggle
	Err        error
}

// MenuConfigService owns menu enablement: merged reads, cascading writes, and
// the management board.
type MenuConfigService struct {
	configs        port.MenuConfigRepository
	cache          port.MenuConfigCache
	customizations port.CustomizationRepository
	publisher      port.EventPublisher
	audit          *AuditService
	logger         *zap.Logger
}

// NewMenuConfigService constructs a MenuConfigService.
func NewMenuConfigService(
	configs port.MenuConfigRepository,
	cache port.MenuConfigCache,
	customizations port.CustomizationRepository,
	publisher port.EventPublisher,
	audit *AuditService,
	logger *zap.Logger,
) *MenuConfigService {
	return &MenuConfigService{
		configs:        configs,
		cache:          cache,
		customizations: customizations,
		publisher:      publisher,
		audit:          audit,
		logger:         logger,
	}
}

func (s *MenuConfigService) menuIndex(ctx context.Context) (*domain.MenuIndex, []domain.MenuNode, error) {
	doc, err := s.customizations.Get(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("load customization: %w", err)
		}
		doc = &domain.AdminCustomization{ID: domain.CustomizationID}
	}
	tree := doc.MenuTree()
	return domain.NewMenuIndex(tree), tree, nil
}

// EffectiveConfig returns the merged enablement map for a target role. Keys
// absent from the map are disabled. Served from cache when fresh.
func (s *MenuConfigService) EffectiveConfig(ctx context.Context, target domain.RoleKey) (map[string]bool, error) {
	if cached, hit, err := s.cache.GetEffective(ctx, target); err != nil {
		s.logger.Warn("menu config cache read failed", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	rows, err := s.configs.ListByTargetRole(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("list menu configs: %w", err)
	}

	effective := domain.MergeEffectiveConfig(rows)
	if err := s.cache.SetEffective(ctx, target, effective); err != nil {
		s.logger.Warn("menu config cache write failed", zap.Error(err))
	}
	return effective, nil
}

// Board assembles the management view for the actor: the flattened menu tree
// and the effective config for every role the actor may configure.
func (s *MenuConfigService) Board(ctx context.Context, actor domain.Actor) (MenuBoard, error) {
	var board MenuBoard

	if !actor.Role.IsAdmin() {
		return board, ErrPermissionDenied
	}

	_, tree, err := s.menuIndex(ctx)
	if err != nil {
		return board, err
	}

	board.Rows = domain.FlattenMenus(tree)
	board.Columns = domain.VisibleColumns(actor.Role)
	board.Configs = make(map[domain.RoleKey]map[string]bool, len(board.Columns))

	for _, target := range board.Columns {
		effective, err := s.EffectiveConfig(ctx, target)
		if err != nil {
			return board, err
		}
		board.Configs[target] = effective
	}
	return board, nil
}

// Toggle applies one change with its cascade: enabling a key enables its
// ancestors, disabling it disables its descendants. Every cascaded key is
// persisted as an independent rule owned by the actor's role.
func (s *MenuConfigService) Toggle(ctx context.Context, actor domain.Actor, input ToggleInput) ([]domain.MenuToggle, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if !domain.CanManage(actor.Role, input.TargetRole) {
		return nil, ErrTargetNotManageable
	}

	idx, _, err := s.menuIndex(ctx)
	if err != nil {
		return nil, err
	}

	toggles, err := idx.SetToggle(input.MenuKey, input.Enabled)
	if err != nil {
		return nil, err
	}

	updatedBy := actor.UserID
	for _, toggle := range toggles {
		entry := domain.MenuConfigEntry{
			OwnerRole:  actor.Role,
			TargetRole: input.TargetRole,
			MenuKey:    toggle.MenuKey,
			IsEnabled:  toggle.Enabled,
			UpdatedBy:  &updatedBy,
		}
		if err := s.configs.Upsert(ctx, entry); err != nil {
			return nil, fmt.Errorf("upsert menu config %s: %w", toggle.MenuKey, err)
		}
	}

	if err := s.cache.Invalidate(ctx, input.TargetRole); err != nil {
		s.logger.Warn("menu config cache invalidate failed", zap.Error(err))
	}

	now := time.Now().UTC()
	for _, toggle := range toggles {
		event := domain.MenuToggledEvent{
			OwnerRole:  actor.Role,
			TargetRole: input.TargetRole,
			MenuKey:    toggle.MenuKey,
			Enabled:    toggle.Enabled,
			ChangedBy:  actor.UserID,
			ChangedAt:  now,
		}
		if err := s.publisher.PublishMenuToggled(ctx, event); err != nil {
			s.logger.Warn("publish menu.toggled failed", zap.Error(err))
		}
	}

	s.audit.Record(ctx, actor.UserID, "menu.toggled", "menu_configurations", map[string]any{
		"owner_role":  actor.Role,
		"target_role": input.TargetRole,
		"menu_key":    input.MenuKey,
		"enabled":     input.Enabled,
		"cascade":     len(toggles) - 1,
	})

	return toggles, nil
}

// BatchToggle applies a set of changes independently: one invalid key never
// blocks the rest, and each result reports its own outcome.
func (s *MenuConfigService) BatchToggle(ctx context.Context, actor domain.Actor, inputs []ToggleInput) ([]ToggleResult, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	results := make([]ToggleResult, 0, len(inputs))
	for _, input := range inputs {
		applied, err := s.Toggle(ctx, actor, input)
		results = append(results, ToggleResult{
			TargetRole: input.TargetRole,
			MenuKey:    input.MenuKey,
			Applied:    applied,
			Err:        err,
		})
	}
	return results, nil
}
