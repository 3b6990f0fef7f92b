package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/core/port"
	"github.com/hyeonbit/complex-admin/internal/repository"
)

var (
	// ErrPermissionDenied indicates the actor's role does not allow the operation.
	ErrPermissionDenied = errors.New("insufficient permissions")
	// ErrUnauthenticated indicates the access token could not be resolved to an account.
	ErrUnauthenticated = errors.New("authentication required")
)

// AccessService resolves the acting account's role and scope. Role resolution
// never trusts client-supplied claims directly: configured SUPER addresses win,
// then the identity provider's role metadata, then the stored profile row.
type AccessService struct {
	identity    port.IdentityProvider
	users       port.UserRepository
	superEmails map[string]struct{}
}

// NewAccessService constructs an AccessService.
func NewAccessService(identity port.IdentityProvider, users port.UserRepository, superAdminEmails []string) *AccessService {
	emails := make(map[string]struct{}, len(superAdminEmails))
	for _, email := range superAdminEmails {
		normalized := strings.ToLower(strings.TrimSpace(email))
		if normalized != "" {
			emails[normalized] = struct{}{}
		}
	}
	return &AccessService{identity: identity, users: users, superEmails: emails}
}

// Authenticate verifies the bearer token and resolves the actor behind it.
func (s *AccessService) Authenticate(ctx context.Context, token string) (domain.Actor, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Actor{}, ErrUnauthenticated
	}

	user, err := s.identity.VerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, port.ErrIdentityUserNotFound) {
			return domain.Actor{}, ErrUnauthenticated
		}
		return domain.Actor{}, fmt.Errorf("verify token: %w", err)
	}

	role, err := s.ResolveRole(ctx, user)
	if err != nil {
		return domain.Actor{}, err
	}

	return domain.Actor{UserID: user.ID, Email: user.Email, Role: role}, nil
}

// ResolveRole decides the effective role for an identity account. Precedence:
// configured super-admin address, provider role metadata, stored profile row.
// Unknown accounts default to RESIDENT.
func (s *AccessService) ResolveRole(ctx context.Context, user *port.IdentityUser) (domain.RoleKey, error) {
	if _, ok := s.superEmails[strings.ToLower(strings.TrimSpace(user.Email))]; ok {
		return domain.RoleSuper, nil
	}

	if raw, ok := user.RoleMetadata(); ok {
		if role, valid := domain.ParseRole(raw); valid {
			return role, nil
		}
	}

	profile, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.RoleResident, nil
		}
		return "", fmt.Errorf("load profile: %w", err)
	}
	if _, valid := domain.ParseRole(string(profile.RoleID)); valid {
		return profile.RoleID, nil
	}

	return domain.RoleResident, nil
}

// ResolveScope loads the actor's stored complex/building assignment. Accounts
// without a profile row have an empty scope.
func (s *AccessService) ResolveScope(ctx context.Context, actor domain.Actor) (domain.ActorScope, error) {
	if actor.Role == domain.RoleSuper {
		return domain.ActorScope{}, nil
	}

	profile, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ActorScope{}, nil
		}
		return domain.ActorScope{}, fmt.Errorf("load profile: %w", err)
	}
	return profile.Scope(), nil
}

// AssertScope validates a requested target scope against the actor's stored one.
func (s *AccessService) AssertScope(ctx context.Context, actor domain.Actor, input domain.ScopeInput) error {
	scope, err := s.ResolveScope(ctx, actor)
	if err != nil {
		return err
	}
	return domain.AssertScopeInput(actor.Role, scope, input)
}

// ResidentFilter produces the list filter for the actor's role and scope.
func (s *AccessService) ResidentFilter(ctx context.Context, actor domain.Actor) (domain.ScopeFilter, error) {
	scope, err := s.ResolveScope(ctx, actor)
	if err != nil {
		return domain.ScopeFilter{}, err
	}
	return domain.ResidentScopeFilter(actor.Role, scope)
}
