package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
)

type directoryTestEnv struct {
	service   *DirectoryService
	complexes *complexRepoMock
	buildings *buildingRepoMock
	users     *userRepoMock
	auditRepo *auditRepoMock
}

func newDirectoryTestEnv() *directoryTestEnv {
	env := &directoryTestEnv{
		complexes: &complexRepoMock{complexes: map[string]domain.Complex{
			"c1": {ID: "c1", Name: "Sunrise"},
			"c2": {ID: "c2", Name: "Moonlight"},
		}},
		buildings: &buildingRepoMock{buildings: map[string]domain.Building{
			"b1": {ID: "b1", ComplexID: "c1", Name: "Tower A"},
			"b2": {ID: "b2", ComplexID: "c1", Name: "Tower B"},
			"b3": {ID: "b3", ComplexID: "c2", Name: "Annex"},
		}},
		users:     &userRepoMock{},
		auditRepo: &auditRepoMock{},
	}
	access := NewAccessService(&identityMock{}, env.users, nil)
	env.service = NewDirectoryService(
		env.complexes, env.buildings, env.users, access,
		NewAuditService(env.auditRepo, zap.NewNop()), zap.NewNop(),
	)
	return env
}

func (env *directoryTestEnv) addProfile(id string, role domain.RoleKey, complexID, buildingID string) {
	user := domain.User{ID: id, RoleID: role}
	if complexID != "" {
		user.ComplexID = &complexID
	}
	if buildingID != "" {
		user.BuildingID = &buildingID
	}
	if env.users.users == nil {
		env.users.users = make(map[string]domain.User)
	}
	env.users.users[id] = user
}

func TestCreateComplex(t *testing.T) {
	env := newDirectoryTestEnv()

	region := "  Seoul  "
	complex, err := env.service.CreateComplex(context.Background(), superActor, CreateComplexInput{
		Name:   "  Riverside  ",
		Region: &region,
	})
	if err != nil {
		t.Fatalf("CreateComplex returned error: %v", err)
	}
	if complex.Name != "Riverside" || complex.Region == nil || *complex.Region != "Seoul" {
		t.Fatalf("expected trimmed fields, got %+v", complex)
	}
	if _, ok := env.complexes.complexes[complex.ID]; !ok {
		t.Fatalf("expected complex persisted")
	}
	if len(env.auditRepo.events) != 1 {
		t.Fatalf("expected audit record")
	}

	if _, err := env.service.CreateComplex(context.Background(), superActor, CreateComplexInput{Name: "  "}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := env.service.CreateComplex(context.Background(), domain.Actor{UserID: "m1", Role: domain.RoleMain}, CreateComplexInput{Name: "X"}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for MAIN, got %v", err)
	}
}

func TestListComplexesScoped(t *testing.T) {
	env := newDirectoryTestEnv()
	env.addProfile("main-1", domain.RoleMain, "c1", "")

	all, err := env.service.ListComplexes(context.Background(), superActor, "", 0)
	if err != nil {
		t.Fatalf("ListComplexes returned error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected SUPER to see both complexes, got %d", len(all))
	}

	own, err := env.service.ListComplexes(context.Background(), domain.Actor{UserID: "main-1", Role: domain.RoleMain}, "", 0)
	if err != nil {
		t.Fatalf("ListComplexes returned error: %v", err)
	}
	if len(own) != 1 || own[0].ID != "c1" {
		t.Fatalf("expected MAIN to see only its own complex, got %+v", own)
	}

	if _, err := env.service.ListComplexes(context.Background(), domain.Actor{UserID: "ghost", Role: domain.RoleMain}, "", 0); !errors.Is(err, domain.ErrScopeNotConfigured) {
		t.Fatalf("expected unassigned MAIN to fail, got %v", err)
	}
}

func TestCreateBuilding(t *testing.T) {
	env := newDirectoryTestEnv()
	env.addProfile("main-1", domain.RoleMain, "c1", "")
	mainActor := domain.Actor{UserID: "main-1", Role: domain.RoleMain}

	building, err := env.service.CreateBuilding(context.Background(), mainActor, CreateBuildingInput{
		ComplexID: "c1",
		Name:      "Tower C",
	})
	if err != nil {
		t.Fatalf("CreateBuilding returned error: %v", err)
	}
	if building.ComplexID != "c1" {
		t.Fatalf("unexpected building %+v", building)
	}

	if _, err := env.service.CreateBuilding(context.Background(), mainActor, CreateBuildingInput{ComplexID: "c2", Name: "X"}); !errors.Is(err, domain.ErrForeignComplex) {
		t.Fatalf("expected ErrForeignComplex, got %v", err)
	}
	if _, err := env.service.CreateBuilding(context.Background(), superActor, CreateBuildingInput{ComplexID: "missing", Name: "X"}); !errors.Is(err, ErrComplexNotFound) {
		t.Fatalf("expected ErrComplexNotFound, got %v", err)
	}
	if _, err := env.service.CreateBuilding(context.Background(), domain.Actor{UserID: "s1", Role: domain.RoleSub}, CreateBuildingInput{ComplexID: "c1", Name: "X"}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for SUB, got %v", err)
	}
}

func TestListBuildingsDefaultsToActorComplex(t *testing.T) {
	env := newDirectoryTestEnv()
	env.addProfile("main-1", domain.RoleMain, "c1", "")

	buildings, err := env.service.ListBuildings(context.Background(), domain.Actor{UserID: "main-1", Role: domain.RoleMain}, "", "", 0)
	if err != nil {
		t.Fatalf("ListBuildings returned error: %v", err)
	}
	if len(buildings) != 2 {
		t.Fatalf("expected the two c1 buildings, got %d", len(buildings))
	}

	// SUPER must name a complex explicitly.
	if _, err := env.service.ListBuildings(context.Background(), superActor, "", "", 0); !errors.Is(err, ErrComplexNotFound) {
		t.Fatalf("expected ErrComplexNotFound for SUPER without complex, got %v", err)
	}

	if _, err := env.service.ListBuildings(context.Background(), domain.Actor{UserID: "main-1", Role: domain.RoleMain}, "c2", "", 0); !errors.Is(err, domain.ErrForeignComplex) {
		t.Fatalf("expected ErrForeignComplex, got %v", err)
	}
}

func TestSummaryCounts(t *testing.T) {
	env := newDirectoryTestEnv()
	env.addProfile("main-1", domain.RoleMain, "c1", "")
	env.addProfile("res-1", domain.RoleResident, "c1", "b1")
	env.addProfile("res-2", domain.RoleResident, "c1", "b2")
	env.addProfile("res-other", domain.RoleResident, "c2", "b3")
	env.addProfile("guard-1", domain.RoleGuard, "c1", "b1")

	summary, err := env.service.Summary(context.Background(), domain.Actor{UserID: "main-1", Role: domain.RoleMain}, "")
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}

	if summary.ComplexID != "c1" {
		t.Fatalf("expected complex defaulted from scope, got %s", summary.ComplexID)
	}
	if summary.BuildingCount != 2 || summary.ResidentCount != 2 || summary.GuardCount != 1 {
		t.Fatalf("unexpected counts %+v", summary)
	}

	if _, err := env.service.Summary(context.Background(), domain.Actor{UserID: "g1", Role: domain.RoleGuard}, "c1"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for GUARD, got %v", err)
	}
}
