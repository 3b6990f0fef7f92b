package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/core/port"
)

func strPtr(s string) *string { return &s }

func TestAuthenticateResolvesActor(t *testing.T) {
	identity := &identityMock{
		tokens: map[string]port.IdentityUser{
			"token-1": {ID: "u1", Email: "main@example.com", Metadata: map[string]any{"role": "MAIN"}},
		},
	}
	users := &userRepoMock{}
	access := NewAccessService(identity, users, nil)

	actor, err := access.Authenticate(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if actor.UserID != "u1" || actor.Email != "main@example.com" || actor.Role != domain.RoleMain {
		t.Fatalf("unexpected actor %+v", actor)
	}
}

func TestAuthenticateRejectsEmptyAndUnknownTokens(t *testing.T) {
	access := NewAccessService(&identityMock{}, &userRepoMock{}, nil)

	if _, err := access.Authenticate(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for empty token, got %v", err)
	}
	if _, err := access.Authenticate(context.Background(), "bogus"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for unknown token, got %v", err)
	}
}

func TestResolveRoleSuperEmailWins(t *testing.T) {
	identity := &identityMock{}
	users := &userRepoMock{users: map[string]domain.User{
		"u1": {ID: "u1", RoleID: domain.RoleGuard},
	}}
	access := NewAccessService(identity, users, []string{" Root@Example.com "})

	// Allowlisted address overrides both metadata and the stored profile.
	role, err := access.ResolveRole(context.Background(), &port.IdentityUser{
		ID:       "u1",
		Email:    "root@example.com",
		Metadata: map[string]any{"role": "SUB"},
	})
	if err != nil {
		t.Fatalf("ResolveRole returned error: %v", err)
	}
	if role != domain.RoleSuper {
		t.Fatalf("expected SUPER, got %s", role)
	}
}

func TestResolveRoleMetadataBeforeProfile(t *testing.T) {
	users := &userRepoMock{users: map[string]domain.User{
		"u1": {ID: "u1", RoleID: domain.RoleGuard},
	}}
	access := NewAccessService(&identityMock{}, users, nil)

	role, err := access.ResolveRole(context.Background(), &port.IdentityUser{
		ID:       "u1",
		Email:    "sub@example.com",
		Metadata: map[string]any{"role": "SUB"},
	})
	if err != nil {
		t.Fatalf("ResolveRole returned error: %v", err)
	}
	if role != domain.RoleSub {
		t.Fatalf("expected metadata role SUB, got %s", role)
	}
}

func TestResolveRoleFallsBackToProfile(t *testing.T) {
	users := &userRepoMock{users: map[string]domain.User{
		"u1": {ID: "u1", RoleID: domain.RoleGuard},
	}}
	access := NewAccessService(&identityMock{}, users, nil)

	role, err := access.ResolveRole(context.Background(), &port.IdentityUser{
		ID:       "u1",
		Email:    "guard@example.com",
		Metadata: map[string]any{"role": "not-a-role"},
	})
	if err != nil {
		t.Fatalf("ResolveRole returned error: %v", err)
	}
	if role != domain.RoleGuard {
		t.Fatalf("expected profile role GUARD, got %s", role)
	}
}

func TestResolveRoleUnknownAccountDefaultsResident(t *testing.T) {
	access := NewAccessService(&identityMock{}, &userRepoMock{}, nil)

	role, err := access.ResolveRole(context.Background(), &port.IdentityUser{ID: "ghost", Email: "ghost@example.com"})
	if err != nil {
		t.Fatalf("ResolveRole returned error: %v", err)
	}
	if role != domain.RoleResident {
		t.Fatalf("expected RESIDENT fallback, got %s", role)
	}
}

func TestResolveScope(t *testing.T) {
	users := &userRepoMock{users: map[string]domain.User{
		"u1": {ID: "u1", RoleID: domain.RoleSub, ComplexID: strPtr("c1"), BuildingID: strPtr("b1")},
	}}
	access := NewAccessService(&identityMock{}, users, nil)

	scope, err := access.ResolveScope(context.Background(), domain.Actor{UserID: "u1", Role: domain.RoleSub})
	if err != nil {
		t.Fatalf("ResolveScope returned error: %v", err)
	}
	if scope.ComplexID != "c1" || scope.BuildingID != "b1" {
		t.Fatalf("unexpected scope %+v", scope)
	}

	// SUPER never consults the profile row.
	scope, err = access.ResolveScope(context.Background(), domain.Actor{UserID: "ghost", Role: domain.RoleSuper})
	if err != nil || scope.ComplexID != "" {
		t.Fatalf("expected empty scope for SUPER, got %+v %v", scope, err)
	}

	// Missing profile means unconfigured, not an error.
	scope, err = access.ResolveScope(context.Background(), domain.Actor{UserID: "ghost", Role: domain.RoleMain})
	if err != nil || scope.ComplexID != "" {
		t.Fatalf("expected empty scope for missing profile, got %+v %v", scope, err)
	}
}

func TestResidentFilter(t *testing.T) {
	users := &userRepoMock{users: map[string]domain.User{
		"main":  {ID: "main", RoleID: domain.RoleMain, ComplexID: strPtr("c1")},
		"guard": {ID: "guard", RoleID: domain.RoleGuard, ComplexID: strPtr("c1"), BuildingID: strPtr("b1")},
	}}
	access := NewAccessService(&identityMock{}, users, nil)

	filter, err := access.ResidentFilter(context.Background(), domain.Actor{UserID: "main", Role: domain.RoleMain})
	if err != nil {
		t.Fatalf("ResidentFilter returned error: %v", err)
	}
	if filter.ComplexID != "c1" || filter.BuildingID != "" {
		t.Fatalf("unexpected MAIN filter %+v", filter)
	}

	filter, err = access.ResidentFilter(context.Background(), domain.Actor{UserID: "guard", Role: domain.RoleGuard})
	if err != nil {
		t.Fatalf("ResidentFilter returned error: %v", err)
	}
	if filter.BuildingID != "b1" {
		t.Fatalf("unexpected GUARD filter %+v", filter)
	}

	if _, err = access.ResidentFilter(context.Background(), domain.Actor{UserID: "ghost", Role: domain.RoleMain}); !errors.Is(err, domain.ErrScopeNotConfigured) {
		t.Fatalf("expected ErrScopeNotConfigured, got %v", err)
	}
}
