package domain

import "errors"

var (
	// ErrScopeNotConfigured indicates the actor is missing the complex or
	// building assignment its role requires.
	ErrScopeNotConfigured = errors.New("actor scope not configured")
	// ErrForeignComplex indicates the target complex differs from the actor's.
	ErrForeignComplex = errors.New("operation targets another complex")
	// ErrForeignBuilding indicates the target building differs from the actor's.
	ErrForeignBuilding = errors.New("operation targets another building")
)

// ActorScope is the stored complex/building assignment of an actor.
// Empty fields mean unrestricted for SUPER and unconfigured for everyone else.
type ActorScope struct {
	ComplexID  string
	BuildingID string
}

// ScopeInput is the target scope of a requested operation, validated against
// the actor's stored scope before the operation proceeds.
type ScopeInput struct {
	ComplexID  string
	BuildingID string
}

// ScopeFilter restricts list queries to the actor's allowed scope. Zero
// value means no restriction.
type ScopeFilter struct {
	ComplexID  string
	BuildingID string
}

// AssertScopeInput decides whether an actor may operate on the given target
// scope. Complex-level admins act anywhere within their complex; building
// admins and guards are pinned to exactly one building. There is no lateral
// access between peers at any level.
func AssertScopeInput(role RoleKey, actor ActorScope, input ScopeInput) error {
	if role == RoleSuper {
		return nil
	}

	if actor.ComplexID == "" {
		return ErrScopeNotConfigured
	}

	if role == RoleMain {
		if input.ComplexID != actor.ComplexID {
			return ErrForeignComplex
		}
		return nil
	}

	if actor.BuildingID == "" {
		return ErrScopeNotConfigured
	}
	if input.ComplexID != actor.ComplexID {
		return ErrForeignComplex
	}
	if input.BuildingID != "" && input.BuildingID != actor.BuildingID {
		return ErrForeignBuilding
	}
	return nil
}

// ResidentScopeFilter produces the list filter for the actor: SUPER sees
// everything, MAIN is limited to its complex, SUB/GUARD to their building.
func ResidentScopeFilter(role RoleKey, actor ActorScope) (ScopeFilter, error) {
	switch role {
	case RoleSuper:
		return ScopeFilter{}, nil
	case RoleMain:
		if actor.ComplexID == "" {
			return ScopeFilter{}, ErrScopeNotConfigured
		}
		return ScopeFilter{ComplexID: actor.ComplexID}, nil
	default:
		if actor.BuildingID == "" {
			return ScopeFilter{}, ErrScopeNotConfigured
		}
		return ScopeFilter{BuildingID: actor.BuildingID}, nil
	}
}
