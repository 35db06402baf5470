package domain

import "testing"

func TestRoleIsValid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleAdmin, true},
		{RoleUser, true},
		{Role("superuser"), false},
		{Role(""), false},
	}

	for _, tt := range tests {
		if got := tt.role.IsValid(); got != tt.want {
			t.Errorf("Role(%q).IsValid() = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestRolePrivileges(t *testing.T) {
	if !RoleAdmin.CanReverse() || !RoleAdmin.CanViewAll() {
		t.Fatalf("admin must hold both reverse and view-all privileges")
	}
	if RoleUser.CanReverse() {
		t.Fatalf("regular user must not reverse transactions")
	}
	if RoleUser.CanViewAll() {
		t.Fatalf("regular user must not list other wallets")
	}
}
