package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/core/port"
	"github.com/hyeonbit/complex-admin/internal/infra/logger"
	"github.com/hyeonbit/complex-admin/internal/repository"
)

var (
	// ErrRoleNotAssignable indicates the requested role cannot be granted here.
	ErrRoleNotAssignable = errors.New("role not assignable")
	// ErrEmailRequired indicates the invitation payload lacks an address.
	ErrEmailRequired = errors.New("email is required")
	// ErrScopeConflict indicates the submitted complex contradicts the
	// building's actual complex. Conflicts are rejected, never corrected.
	ErrScopeConflict = errors.New("complex does not match building")
	// ErrRateLimited indicates the actor exceeded the invitation window.
	ErrRateLimited = errors.New("too many attempts")
)

// AssignAdminInput captures the payload for granting an admin role.
type AssignAdminInput struct {
	Email       string
	Role        domain.RoleKey
	ComplexID   string
	BuildingID  string
	DisplayName string
	Phone       string
}

// AssignAdminResult reports how the assignment was fulfilled.
type AssignAdminResult struct {
	UserID        string
	Role          domain.RoleKey
	ComplexID     string
	BuildingID    string
	EmailSent     bool
	EmailType     string
	AlreadyExists bool
}

// AdminService grants the MAIN, SUB, and GUARD roles.
type AdminService struct {
	identity  port.IdentityProvider
	users     port.UserRepository
	buildings port.BuildingRepository
	complexes port.ComplexRepository
	limiter   port.RateLimitStore
	publisher port.EventPublisher
	access    *AccessService
	audit     *AuditService
	logger    *zap.Logger

	window      time.Duration
	maxAttempts int
	redirectTo  string
}

// NewAdminService constructs an AdminService.
func NewAdminService(
	identity port.IdentityProvider,
	users port.UserRepository,
	buildings port.BuildingRepository,
	complexes port.ComplexRepository,
	limiter port.RateLimitStore,
	publisher port.EventPublisher,
	access *AccessService,
	audit *AuditService,
	logger *zap.Logger,
	window time.Duration,
	maxAttempts int,
	redirectTo string,
) *AdminService {
	return &AdminService{
		identity:    identity,
		users:       users,
		buildings:   buildings,
		complexes:   complexes,
		limiter:     limiter,
		publisher:   publisher,
		access:      access,
		audit:       audit,
		logger:      logger,
		window:      window,
		maxAttempts: maxAttempts,
		redirectTo:  redirectTo,
	}
}

func (s *AdminService) checkRateLimit(ctx context.Context, key string) error {
	now := time.Now().UTC()
	if err := s.limiter.TrimWindow(ctx, key, s.window, now); err != nil {
		s.logger.Warn("rate limit trim failed", zap.Error(err))
	}
	count, err := s.limiter.CountAttempts(ctx, key, s.window, now)
	if err != nil {
		s.logger.Warn("rate limit count failed", zap.Error(err))
		return nil
	}
	if s.maxAttempts > 0 && count >= s.maxAttempts {
		return ErrRateLimited
	}
	if err := s.limiter.RecordAttempt(ctx, key, now); err != nil {
		s.logger.Warn("rate limit record failed", zap.Error(err))
	}
	return nil
}

// resolveAssignmentScope derives the effective complex/building pair for a
// role grant. A building always pins the complex; a contradicting submitted
// complex is an error.
func resolveAssignmentScope(
	ctx context.Context,
	buildings port.BuildingRepository,
	complexes port.ComplexRepository,
	role domain.RoleKey,
	complexID, buildingID string,
) (string, string, error) {
	complexID = strings.TrimSpace(complexID)
	buildingID = strings.TrimSpace(buildingID)

	if buildingID != "" {
		building, err := buildings.GetByID(ctx, buildingID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", "", ErrBuildingNotFound
			}
			return "", "", fmt.Errorf("load building: %w", err)
		}
		if complexID != "" && complexID != building.ComplexID {
			return "", "", ErrScopeConflict
		}
		complexID = building.ComplexID
	}

	switch role {
	case domain.RoleMain:
		if complexID == "" {
			return "", "", domain.ErrScopeNotConfigured
		}
	case domain.RoleSub, domain.RoleGuard, domain.RoleResident:
		if buildingID == "" {
			return "", "", domain.ErrScopeNotConfigured
		}
	}

	if complexID != "" {
		if _, err := complexes.GetByID(ctx, complexID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", "", ErrComplexNotFound
			}
			return "", "", fmt.Errorf("load complex: %w", err)
		}
	}

	return complexID, buildingID, nil
}

// AssignAdmin grants an admin role to an address, inviting the account when
// it does not exist yet and mailing a recovery link when it does. SUPER may
// grant any admin role anywhere; MAIN may grant SUB and GUARD inside its own
// complex. Repeating the same assignment is a no-op reported as such.
func (s *AdminService) AssignAdmin(ctx context.Context, actor domain.Actor, input AssignAdminInput) (AssignAdminResult, error) {
	var result AssignAdminResult

	if actor.Role != domain.RoleSuper && actor.Role != domain.RoleMain {
		return result, ErrPermissionDenied
	}
	if !input.Role.IsAssignable() {
		return result, ErrRoleNotAssignable
	}
	if !domain.CanManage(actor.Role, input.Role) {
		return result, ErrPermissionDenied
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return result, ErrEmailRequired
	}

	if err := s.checkRateLimit(ctx, "assign:"+actor.UserID); err != nil {
		return result, err
	}

	complexID, buildingID, err := resolveAssignmentScope(ctx, s.buildings, s.complexes, input.Role, input.ComplexID, input.BuildingID)
	if err != nil {
		return result, err
	}
	if err := s.access.AssertScope(ctx, actor, domain.ScopeInput{ComplexID: complexID, BuildingID: buildingID}); err != nil {
		return result, err
	}

	metadata := map[string]any{"role": string(input.Role)}
	if complexID != "" {
		metadata["complexId"] = complexID
	}
	if buildingID != "" {
		metadata["buildingId"] = buildingID
	}

	userID, err := s.identity.FindUserIDByEmail(ctx, email)
	switch {
	case err == nil:
		existing, lookupErr := s.users.GetByID(ctx, userID)
		if lookupErr != nil && !errors.Is(lookupErr, repository.ErrNotFound) {
			return result, fmt.Errorf("load profile: %w", lookupErr)
		}
		if existing != nil && existing.RoleID == input.Role {
			result.UserID = userID
			result.Role = input.Role
			result.ComplexID = complexID
			result.BuildingID = buildingID
			result.AlreadyExists = true
			return result, nil
		}

		if err := s.identity.UpdateUserMetadata(ctx, userID, metadata); err != nil {
			return result, fmt.Errorf("update metadata: %w", err)
		}
		if err := s.identity.SendRecovery(ctx, email, s.redirectTo); err != nil {
			return result, fmt.Errorf("send recovery: %w", err)
		}
		result.EmailSent = true
		result.EmailType = "recovery"

	case errors.Is(err, port.ErrIdentityUserNotFound):
		userID, err = s.identity.InviteByEmail(ctx, email, metadata, s.redirectTo)
		if err != nil {
			return result, fmt.Errorf("invite admin: %w", err)
		}
		result.EmailSent = true
		result.EmailType = "invite"

	default:
		return result, fmt.Errorf("find user by email: %w", err)
	}

	user := domain.User{
		ID:          userID,
		RoleID:      input.Role,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Phone:       strings.TrimSpace(input.Phone),
		Metadata:    map[string]any{"email": email},
	}
	if complexID != "" {
		user.ComplexID = &complexID
	}
	if buildingID != "" {
		user.BuildingID = &buildingID
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		return result, fmt.Errorf("upsert profile: %w", err)
	}

	now := time.Now().UTC()
	event := domain.AdminAssignedEvent{
		UserID:     userID,
		Email:      email,
		Role:       input.Role,
		ComplexID:  complexID,
		BuildingID: buildingID,
		AssignedBy: actor.UserID,
		AssignedAt: now,
	}
	if err := s.publisher.PublishAdminAssigned(ctx, event); err != nil {
		s.logger.Warn("publish admin.assigned failed", zap.Error(err))
	}

	s.audit.Record(ctx, actor.UserID, "admin.assigned", "users", map[string]any{
		"user_id":     userID,
		"email":       logger.MaskEmail(email),
		"role":        input.Role,
		"complex_id":  complexID,
		"building_id": buildingID,
		"email_type":  result.EmailType,
	})

	result.UserID = userID
	result.Role = input.Role
	result.ComplexID = complexID
	result.BuildingID = buildingID

	return result, nil
}

// ListAdmins returns admin profiles visible to the actor. SUPER may filter
// freely; MAIN is always pinned to its stored complex, and a caller-supplied
// filter pointing elsewhere is rejected rather than widened.
func (s *AdminService) ListAdmins(ctx context.Context, actor domain.Actor, scope domain.ScopeFilter, limit int) ([]domain.User, error) {
	switch actor.Role {
	case domain.RoleSuper:
	case domain.RoleMain:
		actorScope, err := s.access.ResolveScope(ctx, actor)
		if err != nil {
			return nil, err
		}
		if actorScope.ComplexID == "" {
			return nil, domain.ErrScopeNotConfigured
		}
		if scope.ComplexID != "" && scope.ComplexID != actorScope.ComplexID {
			return nil, domain.ErrForeignComplex
		}
		scope.ComplexID = actorScope.ComplexID
	default:
		return nil, ErrPermissionDenied
	}

	roles := []domain.RoleKey{domain.RoleMain, domain.RoleSub, domain.RoleGuard}
	return s.users.ListByRoles(ctx, roles, scope, limit)
}
