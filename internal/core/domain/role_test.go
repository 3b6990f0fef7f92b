package domain

import "testing"

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"SUPER", "MAIN", "SUB", "GUARD", "RESIDENT"} {
		role, ok := ParseRole(valid)
		if !ok {
			t.Fatalf("expected %s to parse", valid)
		}
		if string(role) != valid {
			t.Fatalf("expected role %s, got %s", valid, role)
		}
	}

	for _, invalid := range []string{"", "super", "ADMIN", "Main "} {
		if _, ok := ParseRole(invalid); ok {
			t.Fatalf("expected %q to be rejected", invalid)
		}
	}
}

func TestCanManage(t *testing.T) {
	cases := []struct {
		current RoleKey
		target  RoleKey
		want    bool
	}{
		{RoleSuper, RoleMain, true},
		{RoleSuper, RoleResident, true},
		{RoleMain, RoleSub, true},
		{RoleMain, RoleGuard, true},
		{RoleSub, RoleGuard, true},
		{RoleSub, RoleResident, true},
		{RoleSuper, RoleSuper, false},
		{RoleMain, RoleMain, false},
		{RoleSub, RoleSub, false},
		{RoleMain, RoleSuper, false},
		{RoleSub, RoleMain, false},
		{RoleGuard, RoleResident, false},
		{RoleResident, RoleGuard, false},
		{RoleResident, RoleResident, false},
	}

	for _, tc := range cases {
		if got := CanManage(tc.current, tc.target); got != tc.want {
			t.Fatalf("CanManage(%s, %s) = %v, want %v", tc.current, tc.target, got, tc.want)
		}
	}
}

func TestVisibleColumns(t *testing.T) {
	superCols := VisibleColumns(RoleSuper)
	if len(superCols) != 4 {
		t.Fatalf("expected SUPER to see 4 columns, got %v", superCols)
	}
	if superCols[0] != RoleMain || superCols[3] != RoleResident {
		t.Fatalf("expected hierarchy order, got %v", superCols)
	}

	mainCols := VisibleColumns(RoleMain)
	if len(mainCols) != 3 || mainCols[0] != RoleSub {
		t.Fatalf("expected MAIN to see SUB, GUARD, RESIDENT, got %v", mainCols)
	}

	subCols := VisibleColumns(RoleSub)
	if len(subCols) != 2 || subCols[0] != RoleGuard || subCols[1] != RoleResident {
		t.Fatalf("expected SUB to see GUARD and RESIDENT, got %v", subCols)
	}

	if cols := VisibleColumns(RoleGuard); len(cols) != 0 {
		t.Fatalf("expected GUARD to see no columns, got %v", cols)
	}
	if cols := VisibleColumns(RoleResident); len(cols) != 0 {
		t.Fatalf("expected RESIDENT to see no columns, got %v", cols)
	}
}

func TestIsAdminAndAssignable(t *testing.T) {
	for _, role := range []RoleKey{RoleSuper, RoleMain, RoleSub} {
		if !role.IsAdmin() {
			t.Fatalf("expected %s to be admin", role)
		}
	}
	for _, role := range []RoleKey{RoleGuard, RoleResident} {
		if role.IsAdmin() {
			t.Fatalf("expected %s not to be admin", role)
		}
	}

	for _, role := range []RoleKey{RoleMain, RoleSub, RoleGuard} {
		if !role.IsAssignable() {
			t.Fatalf("expected %s to be assignable", role)
		}
	}
	for _, role := range []RoleKey{RoleSuper, RoleResident} {
		if role.IsAssignable() {
			t.Fatalf("expected %s not to be assignable", role)
		}
	}
}

func TestOwnerPrecedence(t *testing.T) {
	if OwnerPrecedence(RoleSuper) >= OwnerPrecedence(RoleMain) {
		t.Fatalf("expected SUPER to outrank MAIN")
	}
	if OwnerPrecedence(RoleMain) >= OwnerPrecedence(RoleSub) {
		t.Fatalf("expected MAIN to outrank SUB")
	}
	if OwnerPrecedence(RoleGuard) <= OwnerPrecedence(RoleSub) {
		t.Fatalf("expected non-owner roles to sort last")
	}
}
