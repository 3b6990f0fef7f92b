package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/core/port"
	"github.com/hyeonbit/complex-admin/internal/repository"
)

var (
	// ErrComplexNotFound indicates the referenced complex does not exist.
	ErrComplexNotFound = errors.New("complex not found")
	// ErrBuildingNotFound indicates the referenced building does not exist.
	ErrBuildingNotFound = errors.New("building not found")
	// ErrNameRequired indicates a directory entity was submitted without a name.
	ErrNameRequired = errors.New("name is required")
)

// CreateComplexInput captures the payload for creating a complex.
type CreateComplexInput struct {
	Name   string
	Region *string
}

// CreateBuildingInput captures the payload for creating a building.
type CreateBuildingInput struct {
	ComplexID string
	Name      string
}

// DirectoryService manages the complex and building directory.
type DirectoryService struct {
	complexes port.ComplexRepository
	buildings port.BuildingRepository
	users     port.UserRepository
	access    *AccessService
	audit     *AuditService
	logger    *zap.Logger
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(
	complexes port.ComplexRepository,
	buildings port.BuildingRepository,
	users port.UserRepository,
	access *AccessService,
	audit *AuditService,
	logger *zap.Logger,
) *DirectoryService {
	return &DirectoryService{
		complexes: complexes,
		buildings: buildings,
		users:     users,
		access:    access,
		audit:     audit,
		logger:    logger,
	}
}

// CreateComplex provisions a new complex. SUPER only.
func (s *DirectoryService) CreateComplex(ctx context.Context, actor domain.Actor, input CreateComplexInput) (*domain.Complex, error) {
	if actor.Role != domain.RoleSuper {
		return nil, ErrPermissionDenied
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	complex := domain.Complex{ID: uuid.NewString(), Name: name}
	if input.Region != nil {
		trimmed := strings.TrimSpace(*input.Region)
		if trimmed != "" {
			complex.Region = &trimmed
		}
	}

	if err := s.complexes.Create(ctx, complex); err != nil {
		return nil, fmt.Errorf("create complex: %w", err)
	}

	s.audit.Record(ctx, actor.UserID, "complex.created", "complexes", map[string]any{
		"complex_id": complex.ID,
		"name":       complex.Name,
	})

	return &complex, nil
}

// ListComplexes returns the complexes visible to the actor: SUPER sees all,
// every other admin sees only its own.
func (s *DirectoryService) ListComplexes(ctx context.Context, actor domain.Actor, search string, limit int) ([]domain.Complex, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	if actor.Role == domain.RoleSuper {
		return s.complexes.List(ctx, search, limit)
	}

	scope, err := s.access.ResolveScope(ctx, actor)
	if err != nil {
		return nil, err
	}
	if scope.ComplexID == "" {
		return nil, domain.ErrScopeNotConfigured
	}

	complex, err := s.complexes.GetByID(ctx, scope.ComplexID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []domain.Complex{}, nil
		}
		return nil, fmt.Errorf("load complex: %w", err)
	}
	return []domain.Complex{*complex}, nil
}

// CreateBuilding provisions a building inside a complex. SUPER may create
// anywhere, MAIN only within its own complex.
func (s *DirectoryService) CreateBuilding(ctx context.Context, actor domain.Actor, input CreateBuildingInput) (*domain.Building, error) {
	if actor.Role != domain.RoleSuper && actor.Role != domain.RoleMain {
		return nil, ErrPermissionDenied
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	complexID := strings.TrimSpace(input.ComplexID)
	if complexID == "" {
		return nil, ErrComplexNotFound
	}

	if err := s.access.AssertScope(ctx, actor, domain.ScopeInput{ComplexID: complexID}); err != nil {
		return nil, err
	}

	if _, err := s.complexes.GetByID(ctx, complexID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrComplexNotFound
		}
		return nil, fmt.Errorf("load complex: %w", err)
	}

	building := domain.Building{ID: uuid.NewString(), ComplexID: complexID, Name: name}
	if err := s.buildings.Create(ctx, building); err != nil {
		return nil, fmt.Errorf("create building: %w", err)
	}

	s.audit.Record(ctx, actor.UserID, "building.created", "buildings", map[string]any{
		"building_id": building.ID,
		"complex_id":  building.ComplexID,
		"name":        building.Name,
	})

	return &building, nil
}

// ListBuildings returns the buildings of a complex visible to the actor.
func (s *DirectoryService) ListBuildings(ctx context.Context, actor domain.Actor, complexID, search string, limit int) ([]domain.Building, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	complexID = strings.TrimSpace(complexID)
	if complexID == "" {
		if actor.Role == domain.RoleSuper {
			return nil, ErrComplexNotFound
		}
		scope, err := s.access.ResolveScope(ctx, actor)
		if err != nil {
			return nil, err
		}
		if scope.ComplexID == "" {
			return nil, domain.ErrScopeNotConfigured
		}
		complexID = scope.ComplexID
	}

	if err := s.access.AssertScope(ctx, actor, domain.ScopeInput{ComplexID: complexID}); err != nil {
		return nil, err
	}

	return s.buildings.ListByComplex(ctx, complexID, search, limit)
}

// ComplexSummary aggregates directory counts for the dashboard.
type ComplexSummary struct {
	ComplexID     string
	BuildingCount int
	ResidentCount int
	GuardCount    int
}

// Summary returns the dashboard counts for the actor's complex.
func (s *DirectoryService) Summary(ctx context.Context, actor domain.Actor, complexID string) (*ComplexSummary, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	complexID = strings.TrimSpace(complexID)
	if complexID == "" {
		scope, err := s.access.ResolveScope(ctx, actor)
		if err != nil {
			return nil, err
		}
		complexID = scope.ComplexID
	}
	if complexID == "" {
		return nil, ErrComplexNotFound
	}

	if err := s.access.AssertScope(ctx, actor, domain.ScopeInput{ComplexID: complexID}); err != nil {
		return nil, err
	}

	buildingCount, err := s.buildings.CountByComplex(ctx, complexID)
	if err != nil {
		return nil, fmt.Errorf("count buildings: %w", err)
	}

	filter := domain.ScopeFilter{ComplexID: complexID}
	residentCount, err := s.users.CountByRole(ctx, domain.RoleResident, filter)
	if err != nil {
		return nil, fmt.Errorf("count residents: %w", err)
	}
	guardCount, err := s.users.CountByRole(ctx, domain.RoleGuard, filter)
	if err != nil {
		return nil, fmt.Errorf("count guards: %w", err)
	}

	return &ComplexSummary{
		ComplexID:     complexID,
		BuildingCount: buildingCount,
		ResidentCount: residentCount,
		GuardCount:    guardCount,
	}, nil
}
