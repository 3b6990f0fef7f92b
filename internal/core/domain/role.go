package domain

// RoleKey identifies one of the fixed management roles.
type RoleKey string

const (
	RoleSuper    RoleKey = "SUPER"
	RoleMain     RoleKey = "MAIN"
	RoleSub      RoleKey = "SUB"
	RoleGuard    RoleKey = "GUARD"
	RoleResident RoleKey = "RESIDENT"
)

// roleRanks orders roles from most to least privileged. GUARD and RESIDENT
// share the bottom rank: neither manages the other.
var roleRanks = map[RoleKey]int{
	RoleSuper:    0,
	RoleMain:     1,
	RoleSub:      2,
	RoleGuard:    3,
	RoleResident: 3,
}

// ownerPrecedence orders configuration owners; lower wins when several
// owners configured the same menu key.
var ownerPrecedence = map[RoleKey]int{
	RoleSuper: 0,
	RoleMain:  1,
	RoleSub:   2,
}

// ParseRole validates a raw role string.
func ParseRole(value string) (RoleKey, bool) {
	switch RoleKey(value) {
	case RoleSuper, RoleMain, RoleSub, RoleGuard, RoleResident:
		return RoleKey(value), true
	}
	return "", false
}

// Rank returns the hierarchy rank of the role (lower is more privileged).
// Unknown roles rank below everything.
func (r RoleKey) Rank() int {
	if rank, ok := roleRanks[r]; ok {
		return rank
	}
	return 99
}

// IsAdmin reports whether the role may use the management surface at all.
func (r RoleKey) IsAdmin() bool {
	return r == RoleSuper || r == RoleMain || r == RoleSub
}

// IsAssignable reports whether the role can be granted through the admin
// assignment flow. SUPER is provisioned out of band, RESIDENT through the
// resident invitation flow.
func (r RoleKey) IsAssignable() bool {
	return r == RoleMain || r == RoleSub || r == RoleGuard
}

// CanManage reports whether current may configure target. A role manages
// strictly lower ranks only, never peers or superiors.
func CanManage(current, target RoleKey) bool {
	return target.Rank() > current.Rank()
}

// VisibleColumns lists, in hierarchy order, the target roles current is
// allowed to configure on the menu management surface.
func VisibleColumns(current RoleKey) []RoleKey {
	all := []RoleKey{RoleMain, RoleSub, RoleGuard, RoleResident}
	columns := make([]RoleKey, 0, len(all))
	for _, target := range all {
		if CanManage(current, target) {
			columns = append(columns, target)
		}
	}
	return columns
}

// OwnerPrecedence returns the merge precedence of a configuration owner;
// lower values win. Roles that cannot own configuration sort last.
func OwnerPrecedence(owner RoleKey) int {
	if p, ok := ownerPrecedence[owner]; ok {
		return p
	}
	return 99
}
