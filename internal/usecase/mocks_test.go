package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/core/port"
	"github.com/hyeonbit/complex-admin/internal/repository"
)

type identityMock struct {
	tokens     map[string]port.IdentityUser
	idsByEmail map[string]string
	verifyErr  error
	findErr    error
	inviteErr  error
	updateErr  error

	invited         []string
	recoveries      []string
	metadataUpdates map[string]map[string]any
}

func (m *identityMock) VerifyToken(_ context.Context, token string) (*port.IdentityUser, error) {
	if m.verifyErr != nil {
		return nil, m.verifyErr
	}
	if user, ok := m.tokens[token]; ok {
		u := user
		return &u, nil
	}
	return nil, port.ErrIdentityUserNotFound
}

func (m *identityMock) FindUserIDByEmail(_ context.Context, email string) (string, error) {
	if m.findErr != nil {
		return "", m.findErr
	}
	if id, ok := m.idsByEmail[strings.ToLower(email)]; ok {
		return id, nil
	}
	return "", port.ErrIdentityUserNotFound
}

func (m *identityMock) CreateUser(_ context.Context, email, _ string, metadata map[string]any) (string, error) {
	id := "created-" + strings.ToLower(email)
	m.register(email, id)
	m.recordMetadata(id, metadata)
	return id, nil
}

func (m *identityMock) InviteByEmail(_ context.Context, email string, metadata map[string]any, _ string) (string, error) {
	if m.inviteErr != nil {
		return "", m.inviteErr
	}
	id := "invited-" + strings.ToLower(email)
	m.register(email, id)
	m.invited = append(m.invited, strings.ToLower(email))
	m.recordMetadata(id, metadata)
	return id, nil
}

func (m *identityMock) SendRecovery(_ context.Context, email, _ string) error {
	m.recoveries = append(m.recoveries, strings.ToLower(email))
	return nil
}

func (m *identityMock) UpdateUserMetadata(_ context.Context, userID string, metadata map[string]any) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.recordMetadata(userID, metadata)
	return nil
}

func (m *identityMock) register(email, id string) {
	if m.idsByEmail == nil {
		m.idsByEmail = make(map[string]string)
	}
	m.idsByEmail[strings.ToLower(email)] = id
}

func (m *identityMock) recordMetadata(id string, metadata map[string]any) {
	if m.metadataUpdates == nil {
		m.metadataUpdates = make(map[string]map[string]any)
	}
	m.metadataUpdates[id] = metadata
}

type userRepoMock struct {
	users     map[string]domain.User
	getErr    error
	upsertErr error
}

func (m *userRepoMock) GetByID(_ context.Context, id string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if user, ok := m.users[id]; ok {
		u := user
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) Upsert(_ context.Context, user domain.User) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.users == nil {
		m.users = make(map[string]domain.User)
	}
	m.users[user.ID] = user
	return nil
}

func (m *userRepoMock) ListResidents(_ context.Context, query port.ResidentQuery) ([]domain.User, error) {
	out := make([]domain.User, 0)
	for _, user := range m.users {
		if user.RoleID != domain.RoleResident {
			continue
		}
		if !scopeMatches(user, query.Scope) {
			continue
		}
		out = append(out, user)
	}
	return out, nil
}

func (m *userRepoMock) ListByRoles(_ context.Context, roles []domain.RoleKey, scope domain.ScopeFilter, _ int) ([]domain.User, error) {
	out := make([]domain.User, 0)
	for _, user := range m.users {
		for _, role := range roles {
			if user.RoleID == role && scopeMatches(user, scope) {
				out = append(out, user)
				break
			}
		}
	}
	return out, nil
}

func (m *userRepoMock) CountByRole(_ context.Context, role domain.RoleKey, scope domain.ScopeFilter) (int, error) {
	count := 0
	for _, user := range m.users {
		if user.RoleID == role && scopeMatches(user, scope) {
			count++
		}
	}
	return count, nil
}

func scopeMatches(user domain.User, scope domain.ScopeFilter) bool {
	if scope.BuildingID != "" {
		return user.BuildingID != nil && *user.BuildingID == scope.BuildingID
	}
	if scope.ComplexID != "" {
		return user.ComplexID != nil && *user.ComplexID == scope.ComplexID
	}
	return true
}

type complexRepoMock struct {
	complexes map[string]domain.Complex
	createErr error
}

func (m *complexRepoMock) Create(_ context.Context, complex domain.Complex) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.complexes == nil {
		m.complexes = make(map[string]domain.Complex)
	}
	m.complexes[complex.ID] = complex
	return nil
}

func (m *complexRepoMock) GetByID(_ context.Context, id string) (*domain.Complex, error) {
	if complex, ok := m.complexes[id]; ok {
		c := complex
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func (m *complexRepoMock) List(_ context.Context, _ string, _ int) ([]domain.Complex, error) {
	out := make([]domain.Complex, 0, len(m.complexes))
	for _, complex := range m.complexes {
		out = append(out, complex)
	}
	return out, nil
}

type buildingRepoMock struct {
	buildings map[string]domain.Building
	createErr error
}

func (m *buildingRepoMock) Create(_ context.Context, building domain.Building) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.buildings == nil {
		m.buildings = make(map[string]domain.Building)
	}
	m.buildings[building.ID] = building
	return nil
}

func (m *buildingRepoMock) GetByID(_ context.Context, id string) (*domain.Building, error) {
	if building, ok := m.buildings[id]; ok {
		b := building
		return &b, nil
	}
	return nil, repository.ErrNotFound
}

func (m *buildingRepoMock) ListByComplex(_ context.Context, complexID, _ string, _ int) ([]domain.Building, error) {
	out := make([]domain.Building, 0)
	for _, building := range m.buildings {
		if building.ComplexID == complexID {
			out = append(out, building)
		}
	}
	return out, nil
}

func (m *buildingRepoMock) CountByComplex(_ context.Context, complexID string) (int, error) {
	count := 0
	for _, building := range m.buildings {
		if building.ComplexID == complexID {
			count++
		}
	}
	return count, nil
}

type qrRepoMock struct {
	credentials   []domain.QRCredential
	insertErr     error
	deactivateErr error
}

func (m *qrRepoMock) Insert(_ context.Context, credential domain.QRCredential) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.credentials = append(m.credentials, credential)
	return nil
}

func (m *qrRepoMock) ActiveByOwner(_ context.Context, ownerID, qrType string) (*domain.QRCredential, error) {
	for i := len(m.credentials) - 1; i >= 0; i-- {
		credential := m.credentials[i]
		if credential.OwnerID == ownerID && credential.Type == qrType && credential.IsActive {
			c := credential
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *qrRepoMock) DeactivateActive(_ context.Context, ownerID, qrType string) error {
	if m.deactivateErr != nil {
		return m.deactivateErr
	}
	for i := range m.credentials {
		if m.credentials[i].OwnerID == ownerID && m.credentials[i].Type == qrType {
			m.credentials[i].IsActive = false
		}
	}
	return nil
}

func (m *qrRepoMock) LatestByOwners(_ context.Context, ownerIDs []string) (map[string]domain.QRCredential, error) {
	latest := make(map[string]domain.QRCredential)
	for _, id := range ownerIDs {
		for _, credential := range m.credentials {
			if credential.OwnerID == id {
				latest[id] = credential
			}
		}
	}
	return latest, nil
}

type limiterMock struct {
	attempts  map[string][]time.Time
	countErr  error
	recordErr error
	trimErr   error
}

func (m *limiterMock) RecordAttempt(_ context.Context, identifier string, at time.Time) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	if m.attempts == nil {
		m.attempts = make(map[string][]time.Time)
	}
	m.attempts[identifier] = append(m.attempts[identifier], at)
	return nil
}

func (m *limiterMock) CountAttempts(_ context.Context, identifier string, window time.Duration, reference time.Time) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	count := 0
	for _, at := range m.attempts[identifier] {
		if !at.Before(reference.Add(-window)) {
			count++
		}
	}
	return count, nil
}

func (m *limiterMock) TrimWindow(_ context.Context, identifier string, window time.Duration, reference time.Time) error {
	if m.trimErr != nil {
		return m.trimErr
	}
	kept := m.attempts[identifier][:0]
	for _, at := range m.attempts[identifier] {
		if !at.Before(reference.Add(-window)) {
			kept = append(kept, at)
		}
	}
	if m.attempts != nil {
		m.attempts[identifier] = kept
	}
	return nil
}

type publisherMock struct {
	adminAssigned   []domain.AdminAssignedEvent
	residentInvited []domain.ResidentInvitedEvent
	qrIssued        []domain.QRIssuedEvent
	menuToggled     []domain.MenuToggledEvent
	publishErr      error
}

func (m *publisherMock) PublishAdminAssigned(_ context.Context, event domain.AdminAssignedEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.adminAssigned = append(m.adminAssigned, event)
	return nil
}

func (m *publisherMock) PublishResidentInvited(_ context.Context, event domain.ResidentInvitedEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.residentInvited = append(m.residentInvited, event)
	return nil
}

func (m *publisherMock) PublishQRIssued(_ context.Context, event domain.QRIssuedEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.qrIssued = append(m.qrIssued, event)
	return nil
}

func (m *publisherMock) PublishMenuToggled(_ context.Context, event domain.MenuToggledEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.menuToggled = append(m.menuToggled, event)
	return nil
}

type auditRepoMock struct {
	events    []domain.AuditEvent
	insertErr error
}

func (m *auditRepoMock) Insert(_ context.Context, event domain.AuditEvent) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.events = append(m.events, event)
	return nil
}

func (m *auditRepoMock) ListRecent(_ context.Context, limit int) ([]domain.AuditEvent, error) {
	if limit > 0 && limit < len(m.events) {
		return m.events[len(m.events)-limit:], nil
	}
	return m.events, nil
}

type menuConfigRepoMock struct {
	entries   map[string]domain.MenuConfigEntry
	upsertErr error
	listErr   error
}

func configKey(entry domain.MenuConfigEntry) string {
	return string(entry.OwnerRole) + "|" + string(entry.TargetRole) + "|" + entry.MenuKey
}

func (m *menuConfigRepoMock) ListByTargetRole(_ context.Context, target domain.RoleKey) ([]domain.MenuConfigEntry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.MenuConfigEntry, 0)
	for _, entry := range m.entries {
		if entry.TargetRole == target {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *menuConfigRepoMock) Upsert(_ context.Context, entry domain.MenuConfigEntry) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.entries == nil {
		m.entries = make(map[string]domain.MenuConfigEntry)
	}
	m.entries[configKey(entry)] = entry
	return nil
}

type menuCacheMock struct {
	store  map[domain.RoleKey]map[string]bool
	getErr error
	setErr error
	delErr error

	hits          int
	invalidations []domain.RoleKey
}

func (m *menuCacheMock) GetEffective(_ context.Context, target domain.RoleKey) (map[string]bool, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	if config, ok := m.store[target]; ok {
		m.hits++
		return config, true, nil
	}
	return nil, false, nil
}

func (m *menuCacheMock) SetEffective(_ context.Context, target domain.RoleKey, config map[string]bool) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.store == nil {
		m.store = make(map[domain.RoleKey]map[string]bool)
	}
	m.store[target] = config
	return nil
}

func (m *menuCacheMock) Invalidate(_ context.Context, target domain.RoleKey) error {
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.store, target)
	m.invalidations = append(m.invalidations, target)
	return nil
}

type customizationRepoMock struct {
	doc       *domain.AdminCustomization
	getErr    error
	upsertErr error
}

func (m *customizationRepoMock) Get(_ context.Context) (*domain.AdminCustomization, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.doc == nil {
		return nil, repository.ErrNotFound
	}
	doc := *m.doc
	return &doc, nil
}

func (m *customizationRepoMock) Upsert(_ context.Context, doc domain.AdminCustomization) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.doc = &doc
	return nil
}

type newsRepoMock struct {
	posts     []domain.NewsPost
	createErr error
}

func (m *newsRepoMock) Create(_ context.Context, post domain.NewsPost) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.posts = append(m.posts, post)
	return nil
}

func (m *newsRepoMock) List(_ context.Context, complexID, _ string, _ int) ([]domain.NewsPost, error) {
	out := make([]domain.NewsPost, 0)
	for _, post := range m.posts {
		if complexID == "" || (post.ComplexID != nil && *post.ComplexID == complexID) {
			out = append(out, post)
		}
	}
	return out, nil
}

type adRepoMock struct {
	items     []domain.AdItem
	createErr error
}

func (m *adRepoMock) Create(_ context.Context, item domain.AdItem) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items = append(m.items, item)
	return nil
}

func (m *adRepoMock) List(_ context.Context, complexID, _ string, _ int) ([]domain.AdItem, error) {
	out := make([]domain.AdItem, 0)
	for _, item := range m.items {
		if complexID == "" || (item.ComplexID != nil && *item.ComplexID == complexID) {
			out = append(out, item)
		}
	}
	return out, nil
}
