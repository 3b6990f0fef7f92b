package domain

import "time"

// Complex is the top-level tenant unit. Created only by SUPER.
type Complex struct {
	ID        string
	Name      string
	Region    *string
	CreatedAt time.Time
}

// Building belongs to exactly one complex.
type Building struct {
	ID        string
	ComplexID string
	Name      string
	CreatedAt time.Time
}

// User mirrors the persisted profile row. Role and scope are assigned by a
// higher-level admin at invitation time and locked afterwards.
type User struct {
	ID          string
	RoleID      RoleKey
	ComplexID   *string
	BuildingID  *string
	DisplayName string
	Phone       string
	Metadata    map[string]any
	CreatedAt   time.Time
}

// Scope returns the user's stored assignment as an ActorScope.
func (u User) Scope() ActorScope {
	scope := ActorScope{}
	if u.ComplexID != nil {
		scope.ComplexID = *u.ComplexID
	}
	if u.BuildingID != nil {
		scope.BuildingID = *u.BuildingID
	}
	return scope
}

// Actor is the authenticated party making a request.
type Actor struct {
	UserID string
	Email  string
	Role   RoleKey
}
