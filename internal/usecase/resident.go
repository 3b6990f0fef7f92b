package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/core/port"
	"github.com/hyeonbit/complex-admin/internal/infra/logger"
	"github.com/hyeonbit/complex-admin/internal/repository"
)

// maxBatchInvites bounds one batch invitation request.
const maxBatchInvites = 50

var (
	// ErrBatchTooLarge indicates a batch invitation exceeded the per-request cap.
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")
	// ErrResidentNotFound indicates the referenced resident profile is missing.
	ErrResidentNotFound = errors.New("resident not found")
)

// InviteResidentInput captures one resident invitation.
type InviteResidentInput struct {
	Email       string
	DisplayName string
	Phone       string
	UnitLabel   string
	CarType     string
	CarNumber   string
	ComplexID   string
	BuildingID  string
}

// InviteResidentResult reports how one invitation was fulfilled.
type InviteResidentResult struct {
	UserID        string
	EmailSent     bool
	EmailType     string
	AlreadyExists bool
	QRIssued      bool
}

// BatchInviteResult pairs one batch item with its outcome.
type BatchInviteResult struct {
	Email  string
	Result InviteResidentResult
	Err    error
}

// ResidentWithQR joins a resident profile with its latest vehicle credential.
type ResidentWithQR struct {
	User domain.User
	QR   *domain.QRCredential
}

// ResidentService manages resident profiles and their vehicle credentials.
type ResidentService struct {
	identity  port.IdentityProvider
	users     port.UserRepository
	buildings port.BuildingRepository
	complexes port.ComplexRepository
	qr        port.QRRepository
	limiter   port.RateLimitStore
	publisher port.EventPublisher
	access    *AccessService
	audit     *AuditService
	logger    *zap.Logger

	window      time.Duration
	maxAttempts int
	redirectTo  string
}

// NewResidentService constructs a ResidentService.
func NewResidentService(
	identity port.IdentityProvider,
	users port.UserRepository,
	buildings port.BuildingRepository,
	complexes port.ComplexRepository,
	qr port.QRRepository,
	limiter port.RateLimitStore,
	publisher port.EventPublisher,
	access *AccessService,
	audit *AuditService,
	logger *zap.Logger,
	window time.Duration,
	maxAttempts int,
	redirectTo string,
) *ResidentService {
	return &ResidentService{
		identity:    identity,
		users:       users,
		buildings:   buildings,
		complexes:   complexes,
		qr:          qr,
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

// ListResidents returns residents within the actor's scope, each joined with
// its latest vehicle credential.
func (s *ResidentService) ListResidents(ctx context.Context, actor domain.Actor, search string, limit int) ([]ResidentWithQR, error) {
	if !actor.Role.IsAdmin() && actor.Role != domain.RoleGuard {
		return nil, ErrPermissionDenied
	}

	filter, err := s.access.ResidentFilter(ctx, actor)
	if err != nil {
		return nil, err
	}

	residents, err := s.users.ListResidents(ctx, port.ResidentQuery{
		Scope:  filter,
		Search: strings.TrimSpace(search),
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list residents: %w", err)
	}

	ownerIDs := make([]string, 0, len(residents))
	for _, resident := range residents {
		ownerIDs = append(ownerIDs, resident.ID)
	}

	credentials := map[string]domain.QRCredential{}
	if len(ownerIDs) > 0 {
		credentials, err = s.qr.LatestByOwners(ctx, ownerIDs)
		if err != nil {
			return nil, fmt.Errorf("load credentials: %w", err)
		}
	}

	joined := make([]ResidentWithQR, 0, len(residents))
	for _, resident := range residents {
		entry := ResidentWithQR{User: resident}
		if credential, ok := credentials[resident.ID]; ok {
			c := credential
			entry.QR = &c
		}
		joined = append(joined, entry)
	}
	return joined, nil
}

func (s *ResidentService) rateLimit(ctx context.Context, actor domain.Actor) error {
	key := "invite:" + actor.UserID
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

func residentMetadata(input InviteResidentInput, complexID, buildingID string) map[string]any {
	metadata := map[string]any{"role": string(domain.RoleResident)}
	if complexID != "" {
		metadata["complexId"] = complexID
	}
	if buildingID != "" {
		metadata["buildingId"] = buildingID
	}
	if unit := strings.TrimSpace(input.UnitLabel); unit != "" {
		metadata["unitLabel"] = unit
	}
	if carType := domain.NormalizeCarType(input.CarType); carType != "" {
		metadata["carType"] = string(carType)
	}
	if carNumber := strings.TrimSpace(input.CarNumber); carNumber != "" {
		metadata["carNumber"] = carNumber
	}
	return metadata
}

// InviteResident provisions a resident account: invitation mail for new
// addresses, recovery mail for existing ones. Repeating the same invitation
// returns the existing account without sending anything.
func (s *ResidentService) InviteResident(ctx context.Context, actor domain.Actor, input InviteResidentInput) (InviteResidentResult, error) {
	var result InviteResidentResult

	if !actor.Role.IsAdmin() {
		return result, ErrPermissionDenied
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return result, ErrEmailRequired
	}

	complexID, buildingID, err := resolveAssignmentScope(ctx, s.buildings, s.complexes, domain.RoleResident, input.ComplexID, input.BuildingID)
	if err != nil {
		return result, err
	}
	if err := s.access.AssertScope(ctx, actor, domain.ScopeInput{ComplexID: complexID, BuildingID: buildingID}); err != nil {
		return result, err
	}
	if err := s.rateLimit(ctx, actor); err != nil {
		return result, err
	}

	metadata := residentMetadata(input, complexID, buildingID)

	userID, err := s.identity.FindUserIDByEmail(ctx, email)
	switch {
	case err == nil:
		existing, lookupErr := s.users.GetByID(ctx, userID)
		if lookupErr != nil && !errors.Is(lookupErr, repository.ErrNotFound) {
			return result, fmt.Errorf("load profile: %w", lookupErr)
		}
		if existing != nil && existing.RoleID == domain.RoleResident {
			result.UserID = userID
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
			return result, fmt.Errorf("invite resident: %w", err)
		}
		result.EmailSent = true
		result.EmailType = "invite"

	default:
		return result, fmt.Errorf("find user by email: %w", err)
	}

	profileMetadata := map[string]any{"email": email}
	for key, value := range metadata {
		if key == "role" || key == "complexId" || key == "buildingId" {
			continue
		}
		profileMetadata[key] = value
	}

	user := domain.User{
		ID:          userID,
		RoleID:      domain.RoleResident,
		ComplexID:   &complexID,
		BuildingID:  &buildingID,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Phone:       strings.TrimSpace(input.Phone),
		Metadata:    profileMetadata,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return result, fmt.Errorf("upsert profile: %w", err)
	}

	if carNumber := strings.TrimSpace(input.CarNumber); carNumber != "" {
		carType := domain.NormalizeCarType(input.CarType)
		_, issued, credErr := s.EnsureCredential(ctx, userID, carType, carNumber, actor.UserID)
		if credErr != nil {
			return result, credErr
		}
		result.QRIssued = issued
	}

	now := time.Now().UTC()
	event := domain.ResidentInvitedEvent{
		UserID:     userID,
		Email:      email,
		ComplexID:  complexID,
		BuildingID: buildingID,
		InvitedBy:  actor.UserID,
		InvitedAt:  now,
	}
	if err := s.publisher.PublishResidentInvited(ctx, event); err != nil {
		s.logger.Warn("publish resident.invited failed", zap.Error(err))
	}

	s.audit.Record(ctx, actor.UserID, "resident.invited", "users", map[string]any{
		"user_id":     userID,
		"email":       logger.MaskEmail(email),
		"complex_id":  complexID,
		"building_id": buildingID,
		"email_type":  result.EmailType,
	})

	result.UserID = userID
	return result, nil
}

// BatchInvite processes up to maxBatchInvites invitations independently and
// reports a per-item outcome. One bad row never aborts the rest.
func (s *ResidentService) BatchInvite(ctx context.Context, actor domain.Actor, inputs []InviteResidentInput) ([]BatchInviteResult, error) {
	if !actor.Role.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if len(inputs) > maxBatchInvites {
		return nil, ErrBatchTooLarge
	}

	results := make([]BatchInviteResult, 0, len(inputs))
	for _, input := range inputs {
		outcome, err := s.InviteResident(ctx, actor, input)
		results = append(results, BatchInviteResult{
			Email:  strings.ToLower(strings.TrimSpace(input.Email)),
			Result: outcome,
			Err:    err,
		})
		if errors.Is(err, ErrRateLimited) {
			break
		}
	}
	return results, nil
}

func (s *ResidentService) issueCredential(ctx context.Context, ownerID string, carType domain.CarType, carNumber string, reissued bool, issuedBy string) (*domain.QRCredential, error) {
	now := time.Now().UTC()
	expires := now.Add(domain.QRCredentialTTL)

	credential := domain.QRCredential{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Type:    domain.QRTypeResidentCar,
		Payload: domain.QRPayload{
			Token:     uuid.NewString(),
			IssuedAt:  now,
			ExpiresAt: expires,
			CarType:   carType,
			CarNumber: carNumber,
		},
		ExpiresAt: expires,
		IsActive:  true,
	}

	if err := s.qr.Insert(ctx, credential); err != nil {
		return nil, fmt.Errorf("insert credential: %w", err)
	}

	event := domain.QRIssuedEvent{
		OwnerID:  ownerID,
		Token:    credential.Payload.Token,
		Reissued: reissued,
		IssuedBy: issuedBy,
		IssuedAt: now,
		Expires:  expires,
	}
	if err := s.publisher.PublishQRIssued(ctx, event); err != nil {
		s.logger.Warn("publish qr.issued failed", zap.Error(err))
	}

	return &credential, nil
}

// EnsureCredential issues a vehicle credential only when no active one
// exists. Re-running onboarding never duplicates or rotates a credential.
func (s *ResidentService) EnsureCredential(ctx context.Context, ownerID string, carType domain.CarType, carNumber string, issuedBy string) (*domain.QRCredential, bool, error) {
	active, err := s.qr.ActiveByOwner(ctx, ownerID, domain.QRTypeResidentCar)
	if err == nil {
		return active, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("load active credential: %w", err)
	}

	credential, err := s.issueCredential(ctx, ownerID, carType, carNumber, false, issuedBy)
	if err != nil {
		return nil, false, err
	}
	return credential, true, nil
}

// ReissueCredential supersedes the resident's active credential: the old row
// is deactivated, never deleted, and a fresh token takes its place.
func (s *ResidentService) ReissueCredential(ctx context.Context, actor domain.Actor, residentID string) (*domain.QRCredential, error) {
	if !actor.Role.IsAdmin() && actor.Role != domain.RoleGuard {
		return nil, ErrPermissionDenied
	}

	resident, err := s.users.GetByID(ctx, residentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResidentNotFound
		}
		return nil, fmt.Errorf("load resident: %w", err)
	}
	if resident.RoleID != domain.RoleResident {
		return nil, ErrResidentNotFound
	}

	scope := resident.Scope()
	if err := s.access.AssertScope(ctx, actor, domain.ScopeInput{ComplexID: scope.ComplexID, BuildingID: scope.BuildingID}); err != nil {
		return nil, err
	}

	var (
		carType   domain.CarType
		carNumber string
	)
	if resident.Metadata != nil {
		if raw, ok := resident.Metadata["carType"].(string); ok {
			carType = domain.NormalizeCarType(raw)
		}
		if raw, ok := resident.Metadata["carNumber"].(string); ok {
			carNumber = raw
		}
	}

	if err := s.qr.DeactivateActive(ctx, residentID, domain.QRTypeResidentCar); err != nil {
		return nil, fmt.Errorf("deactivate credential: %w", err)
	}

	credential, err := s.issueCredential(ctx, residentID, carType, carNumber, true, actor.UserID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, "qr.reissued", "qr_codes", map[string]any{
		"owner_id":   residentID,
		"expires_at": credential.ExpiresAt,
	})

	return credential, nil
}

// OnboardingInput captures the resident's self-service profile completion.
type OnboardingInput struct {
	DisplayName string
	Phone       string
	UnitLabel   string
	HasCar      bool
	CarType     string
	CarNumber   string
}

// OnboardingResult reports the completed profile. Credential is nil when the
// resident has no car and none was issued before.
type OnboardingResult struct {
	User       domain.User
	Credential *domain.QRCredential
	Issued     bool
}

// CompleteOnboarding finalizes a resident's own profile. A vehicle credential
// is issued only for residents with a car and a plate number; car-less
// residents never receive one. Safe to call repeatedly.
func (s *ResidentService) CompleteOnboarding(ctx context.Context, actor domain.Actor, input OnboardingInput) (OnboardingResult, error) {
	var result OnboardingResult

	profile, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return result, ErrResidentNotFound
		}
		return result, fmt.Errorf("load profile: %w", err)
	}
	if profile.RoleID != domain.RoleResident {
		return result, ErrPermissionDenied
	}

	// The invitation locks the resident to a complex and building; a profile
	// without them cannot finish onboarding.
	scope := profile.Scope()
	if scope.ComplexID == "" || scope.BuildingID == "" {
		return result, domain.ErrScopeNotConfigured
	}

	if profile.Metadata == nil {
		profile.Metadata = map[string]any{}
	}
	if name := strings.TrimSpace(input.DisplayName); name != "" {
		profile.DisplayName = name
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		profile.Phone = phone
	}
	if unit := strings.TrimSpace(input.UnitLabel); unit != "" {
		profile.Metadata["unitLabel"] = unit
	}

	if carType := domain.NormalizeCarType(input.CarType); carType != "" {
		profile.Metadata["carType"] = string(carType)
	}
	if carNumber := strings.TrimSpace(input.CarNumber); carNumber != "" {
		profile.Metadata["carNumber"] = carNumber
	}

	if err := s.users.Upsert(ctx, *profile); err != nil {
		return result, fmt.Errorf("upsert profile: %w", err)
	}

	var (
		carType   domain.CarType
		carNumber string
	)
	if raw, ok := profile.Metadata["carType"].(string); ok {
		carType = domain.NormalizeCarType(raw)
	}
	if raw, ok := profile.Metadata["carNumber"].(string); ok {
		carNumber = raw
	}

	var (
		credential *domain.QRCredential
		issued     bool
	)
	if input.HasCar && carNumber != "" {
		credential, issued, err = s.EnsureCredential(ctx, actor.UserID, carType, carNumber, actor.UserID)
		if err != nil {
			return result, err
		}
	} else {
		credential, err = s.qr.ActiveByOwner(ctx, actor.UserID, domain.QRTypeResidentCar)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return result, fmt.Errorf("load active credential: %w", err)
			}
			credential = nil
		}
	}

	if issued {
		s.audit.Record(ctx, actor.UserID, "qr.issued", "qr_codes", map[string]any{
			"owner_id":   actor.UserID,
			"expires_at": credential.ExpiresAt,
		})
	}

	result.User = *profile
	result.Credential = credential
	result.Issued = issued
	return result, nil
}
