package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
)

type residentTestEnv struct {
	service   *ResidentService
	identity  *identityMock
	users     *userRepoMock
	buildings *buildingRepoMock
	complexes *complexRepoMock
	qr        *qrRepoMock
	limiter   *limiterMock
	publisher *publisherMock
	auditRepo *auditRepoMock
}

func newResidentTestEnv(maxAttempts int) *residentTestEnv {
	env := &residentTestEnv{
		identity: &identityMock{},
		users:    &userRepoMock{},
		buildings: &buildingRepoMock{buildings: map[string]domain.Building{
			"b1": {ID: "b1", ComplexID: "c1", Name: "Tower A"},
			"b2": {ID: "b2", ComplexID: "c1", Name: "Tower B"},
		}},
		complexes: &complexRepoMock{complexes: map[string]domain.Complex{
			"c1": {ID: "c1", Name: "Sunrise"},
		}},
		qr:        &qrRepoMock{},
		limiter:   &limiterMock{},
		publisher: &publisherMock{},
		auditRepo: &auditRepoMock{},
	}
	access := NewAccessService(env.identity, env.users, nil)
	env.service = NewResidentService(
		env.identity, env.users, env.buildings, env.complexes, env.qr,
		env.limiter, env.publisher, access, NewAuditService(env.auditRepo, zap.NewNop()), zap.NewNop(),
		time.Minute, maxAttempts, "https://admin.example.com/onboarding",
	)
	return env
}

func (env *residentTestEnv) addProfile(id string, role domain.RoleKey, complexID, buildingID string) {
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

func TestInviteResidentNewAccount(t *testing.T) {
	env := newResidentTestEnv(10)

	result, err := env.service.InviteResident(context.Background(), superActor, InviteResidentInput{
		Email:      "Resident@Example.com",
		BuildingID: "b1",
		UnitLabel:  "101-1203",
		CarType:    "EV",
		CarNumber:  "12가3456",
	})
	if err != nil {
		t.Fatalf("InviteResident returned error: %v", err)
	}

	if !result.EmailSent || result.EmailType != "invite" {
		t.Fatalf("expected invitation mail, got %+v", result)
	}

	profile, ok := env.users.users[result.UserID]
	if !ok {
		t.Fatalf("expected profile upserted")
	}
	if profile.RoleID != domain.RoleResident {
		t.Fatalf("expected RESIDENT role, got %s", profile.RoleID)
	}
	if profile.ComplexID == nil || *profile.ComplexID != "c1" || profile.BuildingID == nil || *profile.BuildingID != "b1" {
		t.Fatalf("expected scope derived from building, got %+v", profile)
	}
	if profile.Metadata["unitLabel"] != "101-1203" || profile.Metadata["carType"] != "EV" {
		t.Fatalf("expected vehicle metadata stored, got %v", profile.Metadata)
	}

	if len(env.publisher.residentInvited) != 1 {
		t.Fatalf("expected invitation event, got %d", len(env.publisher.residentInvited))
	}

	// A car in the invitation issues the vehicle credential right away.
	if !result.QRIssued || len(env.qr.credentials) != 1 {
		t.Fatalf("expected credential issued with car, got issued=%v count=%d", result.QRIssued, len(env.qr.credentials))
	}
	if env.qr.credentials[0].Payload.CarNumber != "12가3456" {
		t.Fatalf("expected plate carried into credential, got %+v", env.qr.credentials[0].Payload)
	}
}

func TestInviteResidentWithoutCarSkipsCredential(t *testing.T) {
	env := newResidentTestEnv(10)

	result, err := env.service.InviteResident(context.Background(), superActor, InviteResidentInput{
		Email:      "walker@example.com",
		BuildingID: "b1",
	})
	if err != nil {
		t.Fatalf("InviteResident returned error: %v", err)
	}
	if result.QRIssued || len(env.qr.credentials) != 0 {
		t.Fatalf("expected no credential without a car, got %d", len(env.qr.credentials))
	}
}

func TestInviteResidentIdempotent(t *testing.T) {
	env := newResidentTestEnv(10)
	env.identity.register("resident@example.com", "u-res")
	env.addProfile("u-res", domain.RoleResident, "c1", "b1")

	result, err := env.service.InviteResident(context.Background(), superActor, InviteResidentInput{
		Email:      "resident@example.com",
		BuildingID: "b1",
	})
	if err != nil {
		t.Fatalf("InviteResident returned error: %v", err)
	}

	if !result.AlreadyExists || result.EmailSent {
		t.Fatalf("expected no-op for existing resident, got %+v", result)
	}
	if len(env.identity.invited) != 0 || len(env.identity.recoveries) != 0 {
		t.Fatalf("expected no mail side effects")
	}
	if len(env.publisher.residentInvited) != 0 {
		t.Fatalf("expected no event for no-op")
	}
}

func TestInviteResidentRequiresBuilding(t *testing.T) {
	env := newResidentTestEnv(10)

	_, err := env.service.InviteResident(context.Background(), superActor, InviteResidentInput{
		Email:     "resident@example.com",
		ComplexID: "c1",
	})
	if !errors.Is(err, domain.ErrScopeNotConfigured) {
		t.Fatalf("expected missing building to fail, got %v", err)
	}
}

func TestInviteResidentForeignBuilding(t *testing.T) {
	env := newResidentTestEnv(10)
	env.addProfile("sub-1", domain.RoleSub, "c1", "b1")
	actor := domain.Actor{UserID: "sub-1", Role: domain.RoleSub}

	_, err := env.service.InviteResident(context.Background(), actor, InviteResidentInput{
		Email:      "resident@example.com",
		BuildingID: "b2",
	})
	if !errors.Is(err, domain.ErrForeignBuilding) {
		t.Fatalf("expected ErrForeignBuilding, got %v", err)
	}
}

func TestInviteResidentPermission(t *testing.T) {
	env := newResidentTestEnv(10)

	for _, role := range []domain.RoleKey{domain.RoleGuard, domain.RoleResident} {
		_, err := env.service.InviteResident(context.Background(), domain.Actor{UserID: "u1", Role: role}, InviteResidentInput{
			Email:      "x@example.com",
			BuildingID: "b1",
		})
		if !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("expected ErrPermissionDenied for %s, got %v", role, err)
		}
	}
}

func TestBatchInviteTooLarge(t *testing.T) {
	env := newResidentTestEnv(10)

	inputs := make([]InviteResidentInput, maxBatchInvites+1)
	if _, err := env.service.BatchInvite(context.Background(), superActor, inputs); !errors.Is(err, ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}
}

func TestBatchInviteStopsWhenRateLimited(t *testing.T) {
	env := newResidentTestEnv(1)

	results, err := env.service.BatchInvite(context.Background(), superActor, []InviteResidentInput{
		{Email: "a@example.com", BuildingID: "b1"},
		{Email: "b@example.com", BuildingID: "b1"},
		{Email: "c@example.com", BuildingID: "b1"},
	})
	if err != nil {
		t.Fatalf("BatchInvite returned error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected processing to stop after rate limit, got %d results", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("expected first invitation to succeed, got %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, ErrRateLimited) {
		t.Fatalf("expected second invitation rate limited, got %v", results[1].Err)
	}
}

func TestBatchInviteReportsPerItemErrors(t *testing.T) {
	env := newResidentTestEnv(10)

	results, err := env.service.BatchInvite(context.Background(), superActor, []InviteResidentInput{
		{Email: "", BuildingID: "b1"},
		{Email: "ok@example.com", BuildingID: "b1"},
	})
	if err != nil {
		t.Fatalf("BatchInvite returned error: %v", err)
	}

	if !errors.Is(results[0].Err, ErrEmailRequired) {
		t.Fatalf("expected first item to fail, got %v", results[0].Err)
	}
	if results[1].Err != nil {
		t.Fatalf("expected second item to succeed, got %v", results[1].Err)
	}
}

func TestEnsureCredentialIdempotent(t *testing.T) {
	env := newResidentTestEnv(10)

	first, issued, err := env.service.EnsureCredential(context.Background(), "u-res", domain.CarTypeEV, "12가3456", "u-res")
	if err != nil {
		t.Fatalf("EnsureCredential returned error: %v", err)
	}
	if !issued {
		t.Fatalf("expected first call to issue")
	}
	if first.Type != domain.QRTypeResidentCar || !first.IsActive {
		t.Fatalf("unexpected credential %+v", first)
	}
	wantExpiry := first.Payload.IssuedAt.Add(domain.QRCredentialTTL)
	if !first.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expected 30 day expiry, got %v", first.ExpiresAt)
	}

	second, issued, err := env.service.EnsureCredential(context.Background(), "u-res", domain.CarTypeEV, "12가3456", "u-res")
	if err != nil {
		t.Fatalf("EnsureCredential returned error: %v", err)
	}
	if issued {
		t.Fatalf("expected second call to reuse the active credential")
	}
	if second.ID != first.ID {
		t.Fatalf("expected same credential, got %s and %s", first.ID, second.ID)
	}
	if len(env.qr.credentials) != 1 {
		t.Fatalf("expected one stored credential, got %d", len(env.qr.credentials))
	}
	if len(env.publisher.qrIssued) != 1 {
		t.Fatalf("expected one issuance event, got %d", len(env.publisher.qrIssued))
	}
}

func TestReissueCredentialSupersedes(t *testing.T) {
	env := newResidentTestEnv(10)
	env.addProfile("u-res", domain.RoleResident, "c1", "b1")
	resident := env.users.users["u-res"]
	resident.Metadata = map[string]any{"carType": "ICE", "carNumber": "34나5678"}
	env.users.users["u-res"] = resident

	original, _, err := env.service.EnsureCredential(context.Background(), "u-res", domain.CarTypeICE, "34나5678", "u-res")
	if err != nil {
		t.Fatalf("EnsureCredential returned error: %v", err)
	}

	reissued, err := env.service.ReissueCredential(context.Background(), superActor, "u-res")
	if err != nil {
		t.Fatalf("ReissueCredential returned error: %v", err)
	}

	if reissued.ID == original.ID || reissued.Payload.Token == original.Payload.Token {
		t.Fatalf("expected a fresh credential")
	}
	if !reissued.IsActive {
		t.Fatalf("expected new credential active")
	}
	if reissued.Payload.CarType != domain.CarTypeICE || reissued.Payload.CarNumber != "34나5678" {
		t.Fatalf("expected vehicle details carried over, got %+v", reissued.Payload)
	}

	// The old row survives, deactivated.
	if len(env.qr.credentials) != 2 {
		t.Fatalf("expected superseded row kept, got %d", len(env.qr.credentials))
	}
	if env.qr.credentials[0].IsActive {
		t.Fatalf("expected original credential deactivated")
	}

	if len(env.publisher.qrIssued) != 2 {
		t.Fatalf("expected two issuance events, got %d", len(env.publisher.qrIssued))
	}
	if !env.publisher.qrIssued[1].Reissued {
		t.Fatalf("expected reissue flagged in event")
	}
}

func TestReissueCredentialGates(t *testing.T) {
	env := newResidentTestEnv(10)
	env.addProfile("u-main", domain.RoleMain, "c1", "")
	env.addProfile("u-res", domain.RoleResident, "c1", "b1")
	env.addProfile("guard-b2", domain.RoleGuard, "c1", "b2")

	if _, err := env.service.ReissueCredential(context.Background(), domain.Actor{UserID: "r1", Role: domain.RoleResident}, "u-res"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for resident actor, got %v", err)
	}

	if _, err := env.service.ReissueCredential(context.Background(), superActor, "missing"); !errors.Is(err, ErrResidentNotFound) {
		t.Fatalf("expected ErrResidentNotFound for missing profile, got %v", err)
	}

	if _, err := env.service.ReissueCredential(context.Background(), superActor, "u-main"); !errors.Is(err, ErrResidentNotFound) {
		t.Fatalf("expected non-resident target rejected, got %v", err)
	}

	guard := domain.Actor{UserID: "guard-b2", Role: domain.RoleGuard}
	if _, err := env.service.ReissueCredential(context.Background(), guard, "u-res"); !errors.Is(err, domain.ErrForeignBuilding) {
		t.Fatalf("expected foreign-building guard rejected, got %v", err)
	}
}

func TestCompleteOnboarding(t *testing.T) {
	env := newResidentTestEnv(10)
	env.addProfile("u-res", domain.RoleResident, "c1", "b1")
	actor := domain.Actor{UserID: "u-res", Role: domain.RoleResident}

	result, err := env.service.CompleteOnboarding(context.Background(), actor, OnboardingInput{
		DisplayName: "Lee",
		Phone:       "010-1234-5678",
		UnitLabel:   "101-1203",
		HasCar:      true,
		CarType:     "EV",
		CarNumber:   "12가3456",
	})
	if err != nil {
		t.Fatalf("CompleteOnboarding returned error: %v", err)
	}

	if !result.Issued || result.Credential == nil {
		t.Fatalf("expected credential issued, got %+v", result)
	}
	if result.User.DisplayName != "Lee" || result.User.Metadata["carNumber"] != "12가3456" {
		t.Fatalf("expected profile updated, got %+v", result.User)
	}

	// Running onboarding again keeps the same credential.
	again, err := env.service.CompleteOnboarding(context.Background(), actor, OnboardingInput{})
	if err != nil {
		t.Fatalf("CompleteOnboarding returned error: %v", err)
	}
	if again.Issued {
		t.Fatalf("expected no new credential on repeat")
	}
	if again.Credential.ID != result.Credential.ID {
		t.Fatalf("expected same credential across runs")
	}
	if again.User.DisplayName != "Lee" {
		t.Fatalf("expected empty fields to leave the profile untouched")
	}
	if len(env.qr.credentials) != 1 {
		t.Fatalf("expected one stored credential, got %d", len(env.qr.credentials))
	}
}

func TestCompleteOnboardingWithoutCar(t *testing.T) {
	env := newResidentTestEnv(10)
	env.addProfile("u-res", domain.RoleResident, "c1", "b1")
	actor := domain.Actor{UserID: "u-res", Role: domain.RoleResident}

	result, err := env.service.CompleteOnboarding(context.Background(), actor, OnboardingInput{
		DisplayName: "Park",
	})
	if err != nil {
		t.Fatalf("CompleteOnboarding returned error: %v", err)
	}

	if result.Issued || result.Credential != nil {
		t.Fatalf("expected no credential for a car-less resident, got %+v", result)
	}
	if len(env.qr.credentials) != 0 {
		t.Fatalf("expected no stored credential, got %d", len(env.qr.credentials))
	}

	// A plate number alone does not issue either; the resident must declare
	// the car.
	result, err = env.service.CompleteOnboarding(context.Background(), actor, OnboardingInput{
		CarNumber: "12가3456",
	})
	if err != nil {
		t.Fatalf("CompleteOnboarding returned error: %v", err)
	}
	if result.Issued || len(env.qr.credentials) != 0 {
		t.Fatalf("expected no credential without has-car, got %+v", result)
	}
}

func TestCompleteOnboardingMissingScope(t *testing.T) {
	env := newResidentTestEnv(10)
	env.addProfile("u-res", domain.RoleResident, "c1", "")
	actor := domain.Actor{UserID: "u-res", Role: domain.RoleResident}

	_, err := env.service.CompleteOnboarding(context.Background(), actor, OnboardingInput{HasCar: true, CarNumber: "12가3456"})
	if !errors.Is(err, domain.ErrScopeNotConfigured) {
		t.Fatalf("expected ErrScopeNotConfigured without a building, got %v", err)
	}
	if len(env.qr.credentials) != 0 {
		t.Fatalf("expected no credential issued, got %d", len(env.qr.credentials))
	}
}

func TestCompleteOnboardingNonResident(t *testing.T) {
	env := newResidentTestEnv(10)
	env.addProfile("u-main", domain.RoleMain, "c1", "")

	_, err := env.service.CompleteOnboarding(context.Background(), domain.Actor{UserID: "u-main", Role: domain.RoleMain}, OnboardingInput{})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	if _, err := env.service.CompleteOnboarding(context.Background(), domain.Actor{UserID: "ghost", Role: domain.RoleResident}, OnboardingInput{}); !errors.Is(err, ErrResidentNotFound) {
		t.Fatalf("expected ErrResidentNotFound for missing profile, got %v", err)
	}
}

func TestListResidentsScoped(t *testing.T) {
	env := newResidentTestEnv(10)
	env.addProfile("guard-1", domain.RoleGuard, "c1", "b1")
	env.addProfile("res-1", domain.RoleResident, "c1", "b1")
	env.addProfile("res-2", domain.RoleResident, "c1", "b2")

	credential, _, err := env.service.EnsureCredential(context.Background(), "res-1", domain.CarTypeEV, "12가3456", "res-1")
	if err != nil {
		t.Fatalf("EnsureCredential returned error: %v", err)
	}

	guard := domain.Actor{UserID: "guard-1", Role: domain.RoleGuard}
	residents, err := env.service.ListResidents(context.Background(), guard, "", 0)
	if err != nil {
		t.Fatalf("ListResidents returned error: %v", err)
	}

	if len(residents) != 1 || residents[0].User.ID != "res-1" {
		t.Fatalf("expected only same-building resident, got %+v", residents)
	}
	if residents[0].QR == nil || residents[0].QR.ID != credential.ID {
		t.Fatalf("expected credential joined, got %+v", residents[0].QR)
	}

	if _, err := env.service.ListResidents(context.Background(), domain.Actor{UserID: "res-1", Role: domain.RoleResident}, "", 0); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for resident actor, got %v", err)
	}
}
